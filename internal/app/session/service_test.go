package session

import (
	"errors"
	"testing"
	"time"

	"github.com/coder/quartz"
)

func testConfig() Config {
	return Config{
		Secret:        "test-secret",
		TTL:           time.Hour,
		AdminEmail:    "ops@example.com",
		AdminPassword: "hunter2",
	}
}

func TestLoginAndVerify(t *testing.T) {
	svc := NewService(testConfig(), nil)

	resp, err := svc.Login("OPS@example.com", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" || time.Until(resp.ExpiresAt) <= 0 {
		t.Fatalf("unexpected login response: %+v", resp)
	}
	claims, err := svc.Verify(resp.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "OPS@example.com" || claims.ID == "" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewService(testConfig(), nil)
	if _, err := svc.Login("ops@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login("", "hunter2"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestVerifyRejectsForeignAndExpiredTokens(t *testing.T) {
	svc := NewService(testConfig(), nil)

	other := testConfig()
	other.Secret = "another-secret"
	foreign, err := NewService(other, nil).Issue("ops@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Verify(foreign.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}

	mock := quartz.NewMock(t)
	mock.Set(time.Now().Add(-48 * time.Hour))
	stale, err := NewService(testConfig(), mock).Issue("ops@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Verify(stale.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}

	if _, err := svc.Verify("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}
