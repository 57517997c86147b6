package main

import (
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fleet-monitor/internal/telemetry"
)

func TestDecideProducesClassifiablePayloads(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		p := decide(rnd, "sim")
		ev, err := telemetry.Classify(p)
		if err != nil {
			t.Fatalf("payload %d rejected: %v (%+v)", i, err, p)
		}
		if !ev.Has(telemetry.KindCountedStat) {
			t.Fatalf("payload %d carries no counted stat: %+v", i, p)
		}
	}
}

func TestProbeMuxAnswersHealthAndVerify(t *testing.T) {
	srv := httptest.NewServer(probeMux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("health: status=%v err=%v", resp, err)
	}
	resp.Body.Close()

	resp, err = http.Post(srv.URL+"/verify", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	defer resp.Body.Close()
	buf := new(strings.Builder)
	_, _ = io.Copy(buf, resp.Body)
	if !strings.Contains(buf.String(), `"success":true`) {
		t.Fatalf("verify body = %q", buf.String())
	}
}
