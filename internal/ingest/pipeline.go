package ingest

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Alert types emitted by the pipeline.
const (
	AlertRateLimit = "rate_limit"
	AlertAuthFail  = "auth_fail"
	AlertAnomaly   = "anomaly"
)

// ReadingStore is the persistence the pipeline needs for telemetry
// samples. Recent returns temperatures newest first, excluding the row
// identified by excludeID, so the just-stored candidate never feeds its
// own baseline.
type ReadingStore interface {
	Insert(deviceID string, temperature, humidity float64, ts int64) (uint, error)
	Recent(deviceID string, excludeID uint, limit int) ([]float64, error)
}

// AlertStore persists alert records raised by the pipeline.
type AlertStore interface {
	Insert(deviceID, alertType, description string, details map[string]any, ts int64) error
}

// Notifier delivers a best-effort out-of-band notification. Failures
// are logged by the pipeline and never surfaced to the device.
type Notifier interface {
	Send(text string) error
}

// Outcome is the terminal state of one ingestion attempt.
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	OutcomeThrottled
	OutcomeUnauthorized
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeThrottled:
		return "throttled"
	case OutcomeUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Result is the structured outcome of processing one reading.
type Result struct {
	Outcome     Outcome
	Anomalous   bool
	Description string
}

const deviceLockShards = 64

// Pipeline runs each incoming reading through rate-limit admission,
// token verification, persistence and anomaly evaluation, in that
// order. Each stage either halts with a terminal rejection or
// advances; there is no retry within a single request.
type Pipeline struct {
	limiter  *RateLimiter
	auth     *Authenticator
	detector *Detector
	readings ReadingStore
	alerts   AlertStore
	notifier Notifier // nil when notification is unconfigured

	// locks serializes all per-device work (bucket update, persist,
	// history read) so concurrent requests for one device never see a
	// stale rate count or history window. Distinct devices hash to
	// distinct entries and proceed in parallel.
	locks [deviceLockShards]sync.Mutex

	now func() time.Time
}

func NewPipeline(limiter *RateLimiter, auth *Authenticator, detector *Detector, readings ReadingStore, alerts AlertStore, notifier Notifier) *Pipeline {
	return &Pipeline{
		limiter:  limiter,
		auth:     auth,
		detector: detector,
		readings: readings,
		alerts:   alerts,
		notifier: notifier,
		now:      time.Now,
	}
}

// Process ingests one reading. Rejections (throttled, unauthorized) are
// normal outcomes accompanied by an alert record; an error is returned
// only for storage failures.
//
// Rate limiting deliberately precedes authentication, so unregistered
// device ids are throttled too.
func (p *Pipeline) Process(deviceID, secret string, temperature, humidity float64) (Result, error) {
	mu := &p.locks[shardIndex(deviceID, deviceLockShards)]
	mu.Lock()
	defer mu.Unlock()

	now := p.now()
	ts := now.Unix()

	if !p.limiter.Admit(deviceID, now) {
		p.raiseAlert(deviceID, AlertRateLimit, "rate limit exceeded", nil, ts)
		return Result{Outcome: OutcomeThrottled}, nil
	}

	ok, err := p.auth.Verify(deviceID, secret)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		p.raiseAlert(deviceID, AlertAuthFail, "invalid token or unregistered device", nil, ts)
		return Result{Outcome: OutcomeUnauthorized}, nil
	}

	readingID, err := p.readings.Insert(deviceID, temperature, humidity, ts)
	if err != nil {
		return Result{}, err
	}

	history, err := p.readings.Recent(deviceID, readingID, p.detector.Window)
	if err != nil {
		return Result{}, err
	}

	anomalous, mean, desc := p.detector.Evaluate(temperature, history)
	if anomalous {
		details := map[string]any{
			"temperature": temperature,
			"humidity":    humidity,
			"mean":        mean,
		}
		p.raiseAlert(deviceID, AlertAnomaly, desc, details, ts)
		p.notify(fmt.Sprintf("Anomaly detected on %s: %s", deviceID, desc))
	}

	return Result{Outcome: OutcomeAccepted, Anomalous: anomalous, Description: desc}, nil
}

// raiseAlert persists an alert record. Best effort: a failed insert is
// logged and the pipeline outcome is unchanged.
func (p *Pipeline) raiseAlert(deviceID, alertType, description string, details map[string]any, ts int64) {
	if err := p.alerts.Insert(deviceID, alertType, description, details, ts); err != nil {
		log.Printf("failed to persist %s alert for %s: %v", alertType, deviceID, err)
	}
}

// notify fires the notification off the critical path; its failure or
// latency never delays the response to the device.
func (p *Pipeline) notify(text string) {
	if p.notifier == nil {
		return
	}
	go func() {
		if err := p.notifier.Send(text); err != nil {
			log.Printf("alert notification failed: %v", err)
		}
	}()
}
