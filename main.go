package main

import (
	"log"
	"time"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"

	"iotsentinel/internal/chain"
	"iotsentinel/internal/config"
	"iotsentinel/internal/db"
	"iotsentinel/internal/http/handlers"
	appmw "iotsentinel/internal/http/middleware"
	"iotsentinel/internal/ingest"
	"iotsentinel/internal/notify"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	db.StartRetentionWorker(gormDB, cfg.RetentionDays)
	db.StartAggregationWorker(gormDB)

	if err := db.EnsureBootstrapAdmin(gormDB, cfg); err != nil {
		log.Fatalf("failed to ensure bootstrap admin: %v", err)
	}

	handlers.InitPrometheusMetrics()

	devices := db.NewDeviceStore(gormDB)
	readings := db.NewReadingStore(gormDB)
	alerts := db.NewAlertStore(gormDB)

	limiter := ingest.NewRateLimiter(time.Duration(cfg.RateLimitWindow)*time.Second, cfg.RateLimitMax)
	limiter.StartSweeper()

	authenticator := ingest.NewAuthenticator(devices)
	detector := ingest.NewDetector(cfg.AnomalyWindow, cfg.AnomalyTolerance)

	var notifier ingest.Notifier
	if sms := notify.NewTwilioNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom, cfg.AdminPhone); sms.Configured() {
		notifier = sms
	} else {
		log.Printf("twilio not configured, SMS notification disabled")
	}

	pipe := ingest.NewPipeline(limiter, authenticator, detector, readings, alerts, notifier)

	oracle := chain.NewOracle(cfg.BlockchainRPC, cfg.ContractAddress)
	if oracle.Configured() {
		log.Printf("on-chain registration oracle enabled at %s", cfg.BlockchainRPC)
	}

	r := router.New()

	r.GET("/", handlers.Health())
	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})

	r.POST("/register", handlers.Register(devices, oracle))
	r.POST("/data", handlers.IngestData(pipe))

	admin := appmw.AdminAuth(gormDB)
	r.GET("/devices", admin(handlers.ListDevices(devices)))
	r.GET("/alerts", admin(handlers.ListAlerts(alerts)))
	r.GET("/latest/{device_id}", admin(handlers.LatestReadings(readings)))
	r.GET("/stats/{device_id}", admin(handlers.DeviceStats(gormDB)))

	r.GET("/metrics", handlers.MetricsHandler())

	handler := handlers.RequestLogger(r.Handler)

	log.Printf("iotsentinel listening on %s", cfg.ListenAddr)
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
