package db

import (
	"log"
	"time"

	"gorm.io/gorm"
)

// runRetentionOnce performs a single pass of retention cleanup,
// deleting readings and alerts older than the retention horizon.
func runRetentionOnce(db *gorm.DB, retentionDays int) error {
	cutoff := time.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour).Unix()
	if err := db.Where("ts < ?", cutoff).Delete(&Reading{}).Error; err != nil {
		return err
	}
	if err := db.Where("ts < ?", cutoff).Delete(&Alert{}).Error; err != nil {
		return err
	}
	return nil
}

// StartRetentionWorker launches a background goroutine that runs the
// retention cleanup once at startup and then once per day. A zero
// retentionDays disables the worker.
func StartRetentionWorker(db *gorm.DB, retentionDays int) {
	if retentionDays <= 0 {
		return
	}

	go func() {
		if err := runRetentionOnce(db, retentionDays); err != nil {
			log.Printf("retention cleanup error (startup): %v", err)
		}

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := runRetentionOnce(db, retentionDays); err != nil {
				log.Printf("retention cleanup error: %v", err)
			}
		}
	}()
}
