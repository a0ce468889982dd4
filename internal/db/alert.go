package db

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AlertStore is the gorm-backed persistence for ingestion alerts.
type AlertStore struct {
	db *gorm.DB
}

func NewAlertStore(db *gorm.DB) *AlertStore {
	return &AlertStore{db: db}
}

// Insert appends an alert record.
func (s *AlertStore) Insert(deviceID, alertType, description string, details map[string]any, ts int64) error {
	attrs := datatypes.JSONMap{}
	for k, v := range details {
		attrs[k] = v
	}

	alert := &Alert{
		DeviceID:    deviceID,
		AlertType:   alertType,
		Description: description,
		Details:     attrs,
		TS:          ts,
	}
	return s.db.Create(alert).Error
}

// Recent returns alerts across all devices, newest first.
func (s *AlertStore) Recent(limit int) ([]Alert, error) {
	var alerts []Alert
	err := s.db.Order("ts DESC, id DESC").Limit(limit).Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}
