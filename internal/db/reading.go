package db

import (
	"gorm.io/gorm"
)

// ReadingStore is the gorm-backed persistence for telemetry samples.
type ReadingStore struct {
	db *gorm.DB
}

func NewReadingStore(db *gorm.DB) *ReadingStore {
	return &ReadingStore{db: db}
}

// Insert appends a reading and returns its row id so the caller can
// exclude it from the history query it runs next.
func (s *ReadingStore) Insert(deviceID string, temperature, humidity float64, ts int64) (uint, error) {
	reading := &Reading{
		DeviceID:    deviceID,
		Temperature: temperature,
		Humidity:    humidity,
		TS:          ts,
	}
	if err := s.db.Create(reading).Error; err != nil {
		return 0, err
	}
	return reading.ID, nil
}

// Recent returns the temperatures of the most recent readings for a
// device, newest first, skipping excludeID. Timestamps tie within a
// second under load, so ordering falls back to insertion order via id.
func (s *ReadingStore) Recent(deviceID string, excludeID uint, limit int) ([]float64, error) {
	var temps []float64
	err := s.db.Model(&Reading{}).
		Where("device_id = ? AND id <> ?", deviceID, excludeID).
		Order("ts DESC, id DESC").
		Limit(limit).
		Pluck("temperature", &temps).Error
	if err != nil {
		return nil, err
	}
	return temps, nil
}

// Latest returns full rows for the operator endpoint, newest first.
func (s *ReadingStore) Latest(deviceID string, limit int) ([]Reading, error) {
	var readings []Reading
	err := s.db.Where("device_id = ?", deviceID).
		Order("ts DESC, id DESC").
		Limit(limit).
		Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}
