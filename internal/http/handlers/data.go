package handlers

import (
	"encoding/json"

	"github.com/valyala/fasthttp"

	"iotsentinel/internal/ingest"
)

type dataRequest struct {
	DeviceID    string   `json:"device_id"`
	Token       string   `json:"token"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

// IngestData runs one reading through the ingestion pipeline and maps
// its terminal outcome to an HTTP status.
func IngestData(pipe *ingest.Pipeline) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var req dataRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			jsonError(ctx, fasthttp.StatusBadRequest, "temperature and humidity numeric required")
			return
		}
		if req.Temperature == nil || req.Humidity == nil {
			jsonError(ctx, fasthttp.StatusBadRequest, "temperature and humidity numeric required")
			return
		}
		if req.DeviceID == "" || req.Token == "" {
			jsonError(ctx, fasthttp.StatusUnauthorized, "auth required")
			return
		}

		result, err := pipe.Process(req.DeviceID, req.Token, *req.Temperature, *req.Humidity)
		if err != nil {
			readingsTotal.WithLabelValues("error").Inc()
			jsonError(ctx, fasthttp.StatusInternalServerError, "failed to process reading")
			return
		}

		readingsTotal.WithLabelValues(result.Outcome.String()).Inc()

		switch result.Outcome {
		case ingest.OutcomeThrottled:
			alertsTotal.WithLabelValues(ingest.AlertRateLimit).Inc()
			jsonError(ctx, fasthttp.StatusTooManyRequests, "rate limit exceeded")
		case ingest.OutcomeUnauthorized:
			alertsTotal.WithLabelValues(ingest.AlertAuthFail).Inc()
			jsonError(ctx, fasthttp.StatusForbidden, "unauthorized")
		default:
			if result.Anomalous {
				alertsTotal.WithLabelValues(ingest.AlertAnomaly).Inc()
			}
			jsonResponse(ctx, fasthttp.StatusOK, map[string]any{
				"ok":      true,
				"anomaly": result.Anomalous,
				"desc":    result.Description,
			})
		}
	}
}
