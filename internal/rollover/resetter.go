package rollover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"fleet-monitor/internal/civil"

	"github.com/tidwall/gjson"
)

// Resetter zeroes every agent's today counters for day. Implementations must
// be safe to call more than once for the same day.
type Resetter interface {
	ResetToday(ctx context.Context, day civil.Day) (int, error)
}

type counterStore interface {
	ResetTodayCounters(ctx context.Context, day time.Time) (int, error)
}

// StoreResetter resets through the aggregate store directly.
type StoreResetter struct {
	store counterStore
}

func NewStoreResetter(st counterStore) *StoreResetter {
	return &StoreResetter{store: st}
}

func (r *StoreResetter) ResetToday(ctx context.Context, day civil.Day) (int, error) {
	return r.store.ResetTodayCounters(ctx, day.Time())
}

// HTTPResetter drives the reset on a remote fleet server, logging in with the
// admin account and retrying once when the session token is rejected.
type HTTPResetter struct {
	baseURL  string
	email    string
	password string
	client   *http.Client

	mu    sync.Mutex
	token string
}

func NewHTTPResetter(baseURL, email, password string, timeout time.Duration) *HTTPResetter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPResetter{
		baseURL:  strings.TrimRight(baseURL, "/"),
		email:    email,
		password: password,
		client:   &http.Client{Timeout: timeout},
	}
}

func (r *HTTPResetter) ResetToday(ctx context.Context, day civil.Day) (int, error) {
	token, err := r.session(ctx, false)
	if err != nil {
		return 0, err
	}
	status, body, err := r.postJSON(ctx, "/api/rollover/reset", token, map[string]string{"day": day.String()})
	if status == http.StatusUnauthorized {
		if token, err = r.session(ctx, true); err != nil {
			return 0, err
		}
		status, body, err = r.postJSON(ctx, "/api/rollover/reset", token, map[string]string{"day": day.String()})
	}
	if err != nil {
		return 0, err
	}
	if status < 200 || status >= 300 {
		return 0, fmt.Errorf("reset failed with status %d: %s", status, gjson.GetBytes(body, "error").String())
	}
	return int(gjson.GetBytes(body, "reset").Int()), nil
}

func (r *HTTPResetter) session(ctx context.Context, renew bool) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.token != "" && !renew {
		return r.token, nil
	}
	status, body, err := r.postJSON(ctx, "/api/auth/login", "", map[string]string{"email": r.email, "password": r.password})
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", status)
	}
	token := gjson.GetBytes(body, "token").String()
	if token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	r.token = token
	return token, nil
}

func (r *HTTPResetter) postJSON(ctx context.Context, path, token string, body any) (int, []byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	return resp.StatusCode, out, err
}
