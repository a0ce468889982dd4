// Command simulator registers a device and posts randomized telemetry
// against a running iotsentinel server. Useful for exercising the
// ingestion pipeline end to end, including anomaly alerts via the
// -spike-every flag.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"
)

func main() {
	server := flag.String("server", "http://127.0.0.1:8080", "base URL of the iotsentinel server")
	deviceID := flag.String("device", "esp32_simulated_01", "device id to register and send as")
	token := flag.String("token", "simulator-secret", "device token")
	period := flag.Duration("period", 10*time.Second, "interval between readings")
	spikeEvery := flag.Int("spike-every", 0, "send a temperature spike every N readings (0 disables)")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	register(client, *server, *deviceID, *token)

	for i := 1; ; i++ {
		temperature := 20.0 + rand.Float64()*15.0
		humidity := 40.0 + rand.Float64()*50.0
		if *spikeEvery > 0 && i%*spikeEvery == 0 {
			temperature += 25.0
			log.Printf("injecting temperature spike: %.2f", temperature)
		}

		status, body := post(client, *server+"/data", map[string]any{
			"device_id":   *deviceID,
			"token":       *token,
			"temperature": temperature,
			"humidity":    humidity,
		})
		log.Printf("sent temp=%.2f hum=%.2f -> %d %s", temperature, humidity, status, body)

		time.Sleep(*period)
	}
}

func register(client *http.Client, server, deviceID, token string) {
	status, body := post(client, server+"/register", map[string]any{
		"device_id": deviceID,
		"token":     token,
	})
	switch status {
	case http.StatusCreated:
		log.Printf("registered device %s", deviceID)
	case http.StatusConflict:
		log.Printf("device %s already registered", deviceID)
	default:
		log.Fatalf("registration failed: %d %s", status, body)
	}
}

func post(client *http.Client, url string, payload map[string]any) (int, string) {
	body, _ := json.Marshal(payload)
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("request to %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return resp.StatusCode, string(bytes.TrimSpace(out))
}
