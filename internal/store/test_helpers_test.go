package store

import (
	"context"
	"testing"
	"time"

	"fleet-monitor/internal/testutil/pgschema"
)

func openStore(t *testing.T) (*Store, context.Context, func()) {
	t.Helper()
	dsn, cleanupSchema := pgschema.Open(t)
	st, err := New(dsn)
	if err != nil {
		cleanupSchema()
		t.Fatalf("open store: %v", err)
	}
	if err := pgschema.Apply(context.Background(), st.Pool); err != nil {
		st.Close()
		cleanupSchema()
		t.Fatalf("apply schema: %v", err)
	}
	return st, context.Background(), func() {
		st.Close()
		cleanupSchema()
	}
}

func mustCreateAgent(t *testing.T, st *Store, ctx context.Context, id, name, client string) {
	t.Helper()
	if err := st.CreateAgent(ctx, NewAgent{ID: id, Name: name, ClientName: client}); err != nil {
		t.Fatalf("create agent %s: %v", id, err)
	}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
