package db

import (
	"time"

	"gorm.io/datatypes"
)

// Device is a registered telemetry source. Rows are created by the
// register endpoint and never mutated afterwards; the token hash is the
// only credential material the server keeps.
type Device struct {
	ID uint `gorm:"primaryKey"`

	// DeviceID is the external identifier presented by the device.
	DeviceID string `gorm:"uniqueIndex;size:128;not null"`

	// TokenHash is sha256(device_id + ":" + token), hex encoded.
	TokenHash string `gorm:"size:64;not null"`

	// RegisteredAt is a unix timestamp assigned at registration.
	RegisteredAt int64 `gorm:"not null"`
}

// Reading is one telemetry sample. Append-only; TS is server-assigned
// at ingestion and is the ordering key for history queries.
type Reading struct {
	ID uint `gorm:"primaryKey"`

	DeviceID    string  `gorm:"index;size:128;not null"`
	Temperature float64 `gorm:"not null"`
	Humidity    float64 `gorm:"not null"`
	TS          int64   `gorm:"index;not null"`
}

// Alert records an exceptional ingestion event. Append-only, written
// exclusively by the pipeline as a side effect of rejecting or
// flagging a reading.
type Alert struct {
	ID uint `gorm:"primaryKey"`

	DeviceID    string `gorm:"index;size:128;not null"`
	AlertType   string `gorm:"index;size:32;not null"`
	Description string `gorm:"type:text"`

	// Details holds structured context for the alert (e.g. candidate
	// temperature and baseline mean for anomalies) without schema
	// changes per alert type.
	Details datatypes.JSONMap `gorm:"type:json"`

	TS int64 `gorm:"index;not null"`
}

// ReadingRollup stores pre-aggregated hourly stats per device for the
// operator stats endpoint. Filled by the aggregation worker.
type ReadingRollup struct {
	ID uint `gorm:"primaryKey"`

	DeviceID    string    `gorm:"uniqueIndex:idx_reading_rollup_unique,priority:1;not null"`
	BucketStart time.Time `gorm:"uniqueIndex:idx_reading_rollup_unique,priority:2;not null"` // start of the hour (UTC)

	Count       int64   `gorm:"not null"`
	TempMin     float64 `gorm:"not null"`
	TempAvg     float64 `gorm:"not null"`
	TempMax     float64 `gorm:"not null"`
	HumidityAvg float64 `gorm:"not null"`
}

// User is an operator account for the listing endpoints. The bootstrap
// admin (from env) is created as a row on startup.
type User struct {
	ID uint `gorm:"primaryKey"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Username     string `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string `gorm:"size:255;not null"`

	IsAdmin bool `gorm:"default:false"`
}
