package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"iotsentinel/internal/ingest"
)

func TestMain(m *testing.M) {
	InitPrometheusMetrics()
	m.Run()
}

type memDevices struct {
	hashes map[string]string
}

func (m *memDevices) Lookup(deviceID string) (string, bool, error) {
	h, ok := m.hashes[deviceID]
	return h, ok, nil
}

type memReadings struct {
	temps  []float64
	nextID uint
}

func (m *memReadings) Insert(deviceID string, temperature, humidity float64, ts int64) (uint, error) {
	m.temps = append(m.temps, temperature)
	m.nextID++
	return m.nextID, nil
}

func (m *memReadings) Recent(deviceID string, excludeID uint, limit int) ([]float64, error) {
	var out []float64
	for i := len(m.temps) - 1; i >= 0 && len(out) < limit; i-- {
		if uint(i+1) == excludeID {
			continue
		}
		out = append(out, m.temps[i])
	}
	return out, nil
}

type memAlerts struct{}

func (m *memAlerts) Insert(deviceID, alertType, description string, details map[string]any, ts int64) error {
	return nil
}

func newHandlerPipeline(max int) *ingest.Pipeline {
	devices := &memDevices{hashes: map[string]string{
		"d1": ingest.ComputeTokenHash("d1", "secret"),
	}}
	limiter := ingest.NewRateLimiter(60*time.Second, max)
	return ingest.NewPipeline(limiter, ingest.NewAuthenticator(devices), ingest.NewDetector(10, 8.0), &memReadings{}, &memAlerts{}, nil)
}

func postData(handler fasthttp.RequestHandler, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetRequestURI("/data")
	ctx.Request.SetBodyString(body)
	handler(ctx)
	return ctx
}

func TestIngestDataRejectsNonNumericFields(t *testing.T) {
	handler := IngestData(newHandlerPipeline(30))

	for _, body := range []string{
		`{"device_id":"d1","token":"secret","temperature":"warm","humidity":55}`,
		`{"device_id":"d1","token":"secret","humidity":55}`,
		`not json`,
	} {
		ctx := postData(handler, body)
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode(), "body %q", body)
	}
}

func TestIngestDataRejectsMissingCredentials(t *testing.T) {
	handler := IngestData(newHandlerPipeline(30))

	ctx := postData(handler, `{"temperature":25,"humidity":55}`)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestIngestDataMapsOutcomes(t *testing.T) {
	handler := IngestData(newHandlerPipeline(1))

	ctx := postData(handler, `{"device_id":"d1","token":"secret","temperature":25,"humidity":55}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, false, resp["anomaly"])

	// Ceiling of 1 exhausted: next request throttles.
	ctx = postData(handler, `{"device_id":"d1","token":"secret","temperature":25,"humidity":55}`)
	assert.Equal(t, fasthttp.StatusTooManyRequests, ctx.Response.StatusCode())
}

func TestIngestDataRejectsBadToken(t *testing.T) {
	handler := IngestData(newHandlerPipeline(30))

	ctx := postData(handler, `{"device_id":"d1","token":"wrong","temperature":25,"humidity":55}`)
	assert.Equal(t, fasthttp.StatusForbidden, ctx.Response.StatusCode())
}
