package spatial

import (
	"errors"
	"time"
)

// ErrUnavailable signals that source enumeration has no capability this
// tick. It is not a failure: the session skips reconciliation entirely and
// keeps every registered controller, so a transient query outage never
// tears down tracking state.
var ErrUnavailable = errors.New("source enumeration unavailable")

// Enumerator is the platform boundary: it reports the currently detected
// input sources at a timestamp. Implementations must be callable every tick
// with no side effects beyond querying platform state. An empty result
// means "no sources", which is different from ErrUnavailable.
type Enumerator interface {
	Enumerate(now time.Time) ([]SourceEntry, error)
}
