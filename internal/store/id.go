package store

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	idEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	idEntropyMu sync.Mutex
)

// NewID returns a lexically sortable identifier with the given prefix,
// e.g. "agt_01hq...".
func NewID(prefix string) string {
	idEntropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), idEntropy)
	idEntropyMu.Unlock()
	if prefix == "" {
		return strings.ToLower(id.String())
	}
	return prefix + "_" + strings.ToLower(id.String())
}
