// Command agent-sim is a toy agent that reports telemetry to a fleet server
// and answers its health probes.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"os"
	"time"

	"fleet-monitor/internal/telemetry"

	"github.com/rs/zerolog/log"
)

var apiTypes = []string{"calculate", "chat", "image_gen", "search"}

func main() {
	serverURL := getenv("FLEET_SERVER_URL", "http://localhost:8080")
	agentID := getenv("AGENT_ID", "sim-agent")
	listen := getenv("SIM_LISTEN", "127.0.0.1:9100")
	interval, err := time.ParseDuration(getenv("SIM_INTERVAL", "5s"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid SIM_INTERVAL")
	}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		log.Fatal().Err(err).Msg("listen failed")
	}
	baseURL := "http://" + ln.Addr().String()
	go func() {
		log.Info().Str("base_url", baseURL).Msg("probe endpoints listening")
		_ = http.Serve(ln, probeMux())
	}()

	client := &http.Client{Timeout: 5 * time.Second}
	send := func(p telemetry.Payload) {
		if err := post(client, serverURL+"/stats", p); err != nil {
			log.Warn().Err(err).Str("api_type", p.APIType).Msg("telemetry rejected")
		}
	}

	send(telemetry.Payload{AgentID: agentID, APIType: telemetry.APITypeHeartbeat, BaseURL: baseURL, Model: "sim-1"})
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for n := 1; ; n++ {
		<-tick.C
		if n%12 == 0 {
			send(telemetry.Payload{AgentID: agentID, APIType: telemetry.APITypeHeartbeat})
			continue
		}
		send(decide(rnd, agentID))
	}
}

// decide picks the next unit of work the simulated agent reports.
func decide(rnd *rand.Rand, agentID string) telemetry.Payload {
	p := telemetry.Payload{
		AgentID:      agentID,
		APIType:      apiTypes[rnd.Intn(len(apiTypes))],
		ResponseTime: float64(50 + rnd.Intn(900)),
		IsError:      rnd.Intn(20) == 0,
	}
	switch rnd.Intn(4) {
	case 0:
		p.LogAction = fmt.Sprintf("Quote: %d", 1000*(1+rnd.Intn(500)))
	case 1:
		counted := false
		p.ShouldCountTask = &counted
		p.LogMessage = "cache hit"
	}
	return p
}

func probeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /verify", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	return mux
}

func post(client *http.Client, endpoint string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := client.Post(endpoint, "application/json", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
