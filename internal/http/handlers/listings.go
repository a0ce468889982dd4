package handlers

import (
	"time"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	dbpkg "iotsentinel/internal/db"
)

// Health reports liveness plus the server clock devices are stamped with.
func Health() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		jsonResponse(ctx, fasthttp.StatusOK, map[string]any{
			"ok":        true,
			"timestamp": time.Now().Unix(),
		})
	}
}

// ListDevices returns registrations, newest first.
func ListDevices(devices *dbpkg.DeviceStore) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		rows, err := devices.List()
		if err != nil {
			jsonError(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}

		out := make([]map[string]any, 0, len(rows))
		for _, d := range rows {
			out = append(out, map[string]any{
				"device_id":     d.DeviceID,
				"registered_at": d.RegisteredAt,
			})
		}
		jsonResponse(ctx, fasthttp.StatusOK, out)
	}
}

// ListAlerts returns recent alerts across all devices, newest first.
func ListAlerts(alerts *dbpkg.AlertStore) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		limit := queryLimit(ctx, 200, 1000)

		rows, err := alerts.Recent(limit)
		if err != nil {
			jsonError(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}

		out := make([]map[string]any, 0, len(rows))
		for _, a := range rows {
			out = append(out, map[string]any{
				"device_id": a.DeviceID,
				"type":      a.AlertType,
				"desc":      a.Description,
				"details":   a.Details,
				"ts":        a.TS,
			})
		}
		jsonResponse(ctx, fasthttp.StatusOK, out)
	}
}

// LatestReadings returns the most recent readings for one device.
func LatestReadings(readings *dbpkg.ReadingStore) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		deviceID, _ := ctx.UserValue("device_id").(string)
		if deviceID == "" {
			jsonError(ctx, fasthttp.StatusBadRequest, "device_id required")
			return
		}
		limit := queryLimit(ctx, 100, 1000)

		rows, err := readings.Latest(deviceID, limit)
		if err != nil {
			jsonError(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}

		out := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			out = append(out, map[string]any{
				"temperature": r.Temperature,
				"humidity":    r.Humidity,
				"ts":          r.TS,
			})
		}
		jsonResponse(ctx, fasthttp.StatusOK, out)
	}
}

// DeviceStats returns hourly rollups for one device, newest first.
func DeviceStats(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		deviceID, _ := ctx.UserValue("device_id").(string)
		if deviceID == "" {
			jsonError(ctx, fasthttp.StatusBadRequest, "device_id required")
			return
		}
		limit := queryLimit(ctx, 24, 168)

		rows, err := dbpkg.RollupsFor(db, deviceID, limit)
		if err != nil {
			jsonError(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}

		out := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			out = append(out, map[string]any{
				"bucket_start": r.BucketStart.UTC().Format(time.RFC3339),
				"count":        r.Count,
				"temp_min":     r.TempMin,
				"temp_avg":     r.TempAvg,
				"temp_max":     r.TempMax,
				"humidity_avg": r.HumidityAvg,
			})
		}
		jsonResponse(ctx, fasthttp.StatusOK, out)
	}
}
