package db

import (
	"gorm.io/gorm"
)

// DeviceStore is the gorm-backed persistence for device registrations.
type DeviceStore struct {
	db *gorm.DB
}

func NewDeviceStore(db *gorm.DB) *DeviceStore {
	return &DeviceStore{db: db}
}

// Lookup returns the stored token hash for a device id. An unknown
// device is reported via found=false, not an error.
func (s *DeviceStore) Lookup(deviceID string) (tokenHash string, found bool, err error) {
	var device Device
	if err := s.db.Where("device_id = ?", deviceID).First(&device).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return device.TokenHash, true, nil
}

// Insert registers a device. The row is immutable afterwards.
func (s *DeviceStore) Insert(deviceID, tokenHash string, registeredAt int64) error {
	device := &Device{
		DeviceID:     deviceID,
		TokenHash:    tokenHash,
		RegisteredAt: registeredAt,
	}
	return s.db.Create(device).Error
}

// List returns registrations, newest first.
func (s *DeviceStore) List() ([]Device, error) {
	var devices []Device
	if err := s.db.Order("registered_at DESC").Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}
