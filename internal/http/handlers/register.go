package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"iotsentinel/internal/chain"
	"iotsentinel/internal/ingest"
)

// DeviceRegistry is the persistence the register handler needs.
// *db.DeviceStore implements it.
type DeviceRegistry interface {
	Lookup(deviceID string) (tokenHash string, found bool, err error)
	Insert(deviceID, tokenHash string, registeredAt int64) error
}

type registerRequest struct {
	DeviceID string `json:"device_id"`
	Token    string `json:"token"`
}

// Register creates a device registration. The presented token is never
// stored, only its hash. When the on-chain oracle is configured it must
// confirm the registration; when unconfigured it is skipped entirely.
func Register(devices DeviceRegistry, oracle *chain.Oracle) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var req registerRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			jsonError(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.DeviceID == "" || req.Token == "" {
			jsonError(ctx, fasthttp.StatusBadRequest, "device_id and token required")
			return
		}

		tokenHash := ingest.ComputeTokenHash(req.DeviceID, req.Token)

		if !oracle.Verify(req.DeviceID, tokenHash) {
			jsonError(ctx, fasthttp.StatusForbidden, "device not registered on-chain")
			return
		}

		_, found, err := devices.Lookup(req.DeviceID)
		if err != nil {
			jsonError(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}
		if found {
			jsonError(ctx, fasthttp.StatusConflict, "device already registered")
			return
		}

		// The lookup above is only a fast path; concurrent registrations
		// of the same device id are decided by the unique index.
		if err := devices.Insert(req.DeviceID, tokenHash, time.Now().Unix()); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				jsonError(ctx, fasthttp.StatusConflict, "device already registered")
				return
			}
			jsonError(ctx, fasthttp.StatusInternalServerError, "failed to register device")
			return
		}

		jsonResponse(ctx, fasthttp.StatusCreated, map[string]any{
			"registered": true,
			"device_id":  req.DeviceID,
		})
	}
}
