package db

import (
	"log"
	"time"

	"gorm.io/gorm"
)

// runAggregationOnce rolls up readings for the given hour (bucketStart to
// bucketStart+1h) into ReadingRollup rows. Call with bucketStart = time
// in UTC truncated to hour.
func runAggregationOnce(db *gorm.DB, bucketStart time.Time) error {
	bucketEnd := bucketStart.Add(time.Hour)

	var readings []Reading
	if err := db.Where("ts >= ? AND ts < ?", bucketStart.Unix(), bucketEnd.Unix()).
		Select("device_id", "temperature", "humidity").
		Find(&readings).Error; err != nil {
		return err
	}

	groups := make(map[string][]Reading)
	for _, r := range readings {
		groups[r.DeviceID] = append(groups[r.DeviceID], r)
	}

	for deviceID, list := range groups {
		row := ReadingRollup{
			DeviceID:    deviceID,
			BucketStart: bucketStart,
			Count:       int64(len(list)),
			TempMin:     list[0].Temperature,
			TempMax:     list[0].Temperature,
		}
		var tempSum, humSum float64
		for _, r := range list {
			if r.Temperature < row.TempMin {
				row.TempMin = r.Temperature
			}
			if r.Temperature > row.TempMax {
				row.TempMax = r.Temperature
			}
			tempSum += r.Temperature
			humSum += r.Humidity
		}
		row.TempAvg = tempSum / float64(len(list))
		row.HumidityAvg = humSum / float64(len(list))

		var existing ReadingRollup
		err := db.Where("device_id = ? AND bucket_start = ?", deviceID, bucketStart).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			err = db.Create(&row).Error
		} else if err == nil {
			err = db.Model(&existing).Updates(map[string]interface{}{
				"count":        row.Count,
				"temp_min":     row.TempMin,
				"temp_avg":     row.TempAvg,
				"temp_max":     row.TempMax,
				"humidity_avg": row.HumidityAvg,
			}).Error
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// StartAggregationWorker runs the rollup for the last 24 completed hours
// at startup, then once per hour for the previous hour. Buckets are in UTC.
func StartAggregationWorker(db *gorm.DB) {
	go func() {
		now := time.Now().UTC()
		for i := 1; i <= 24; i++ {
			bucketStart := now.Truncate(time.Hour).Add(-time.Duration(i) * time.Hour)
			if err := runAggregationOnce(db, bucketStart); err != nil {
				log.Printf("aggregation error (startup) for %s: %v", bucketStart.Format(time.RFC3339), err)
			}
		}

		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for t := range ticker.C {
			bucketStart := t.UTC().Truncate(time.Hour).Add(-time.Hour)
			if err := runAggregationOnce(db, bucketStart); err != nil {
				log.Printf("aggregation error for %s: %v", bucketStart.Format(time.RFC3339), err)
			}
		}
	}()
}

// RollupsFor returns hourly rollups for a device, newest first.
func RollupsFor(db *gorm.DB, deviceID string, limit int) ([]ReadingRollup, error) {
	var rollups []ReadingRollup
	err := db.Where("device_id = ?", deviceID).
		Order("bucket_start DESC").
		Limit(limit).
		Find(&rollups).Error
	if err != nil {
		return nil, err
	}
	return rollups, nil
}
