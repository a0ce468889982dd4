package ingest

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// DeviceStore is the lookup side of device persistence the
// authenticator needs. An unknown device is reported via found=false,
// never as an error.
type DeviceStore interface {
	Lookup(deviceID string) (tokenHash string, found bool, err error)
}

// ComputeTokenHash derives the stored credential for a device:
// sha256 over "deviceID:secret", hex encoded. Deterministic so that
// verification can recompute and compare against the registered value.
func ComputeTokenHash(deviceID, secret string) string {
	sum := sha256.Sum256([]byte(deviceID + ":" + secret))
	return hex.EncodeToString(sum[:])
}

// Authenticator verifies a device's presented secret against its
// registered token hash.
type Authenticator struct {
	devices DeviceStore
}

func NewAuthenticator(devices DeviceStore) *Authenticator {
	return &Authenticator{devices: devices}
}

// Verify recomputes the token hash for the presented secret and
// compares it to the stored one. An unregistered device or a hash
// mismatch is a negative result, not an error; errors are reserved for
// store failures.
func (a *Authenticator) Verify(deviceID, secret string) (bool, error) {
	stored, found, err := a.devices.Lookup(deviceID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	presented := ComputeTokenHash(deviceID, secret)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) == 1, nil
}
