package testutil

import (
	"context"
	"testing"

	"fleet-monitor/internal/store"
	"fleet-monitor/internal/testutil/pgschema"
)

// OpenTestStore returns a Store bound to a throwaway schema. Tests are skipped
// when TEST_POSTGRES_DSN is not set.
func OpenTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()
	dsn, cleanupSchema := pgschema.Open(t)
	st, err := store.New(dsn)
	if err != nil {
		cleanupSchema()
		t.Fatalf("open store: %v", err)
	}
	if err := pgschema.Apply(context.Background(), st.Pool); err != nil {
		st.Close()
		cleanupSchema()
		t.Fatalf("apply schema: %v", err)
	}
	return st, func() {
		st.Close()
		cleanupSchema()
	}
}
