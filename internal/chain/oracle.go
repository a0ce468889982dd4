// Package chain implements the optional on-chain registration oracle.
// The registry protocol is opaque to this service: the oracle answers a
// single yes/no question about a (device id, token hash) pair.
package chain

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Oracle consults an external device registry at registration time.
// An unconfigured oracle always answers yes so development can proceed
// without a chain deployment; a configured oracle answers no on any
// transport or decode error.
type Oracle struct {
	rpcURL   string
	contract string
	client   *http.Client
}

func NewOracle(rpcURL, contract string) *Oracle {
	return &Oracle{
		rpcURL:   rpcURL,
		contract: contract,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Configured reports whether an RPC endpoint is set.
func (o *Oracle) Configured() bool {
	return o.rpcURL != ""
}

type verifyRequest struct {
	Contract  string `json:"contract,omitempty"`
	DeviceID  string `json:"device_id"`
	TokenHash string `json:"token_hash"`
}

type verifyResponse struct {
	Verified bool `json:"verified"`
}

// Verify asks the registry whether the device is registered on-chain
// with the given token hash.
func (o *Oracle) Verify(deviceID, tokenHash string) bool {
	if !o.Configured() {
		return true
	}

	body, err := json.Marshal(verifyRequest{
		Contract:  o.contract,
		DeviceID:  deviceID,
		TokenHash: tokenHash,
	})
	if err != nil {
		log.Printf("chain verify error for %s: %v", deviceID, err)
		return false
	}

	resp, err := o.client.Post(o.rpcURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("chain verify error for %s: %v", deviceID, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("chain verify for %s: registry returned %d", deviceID, resp.StatusCode)
		return false
	}

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Printf("chain verify decode error for %s: %v", deviceID, err)
		return false
	}

	return out.Verified
}
