// Package ident generates snippet identifiers and store timestamps.
package ident

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TimeLayout is the storage format for created_at/updated_at. Fixed-width UTC
// so that lexicographic order on the stored strings equals chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
	last    time.Time
)

// New returns a new ULID string. ULIDs are 128-bit, time-prefixed, and
// generated from monotonic crypto/rand entropy, so they are unique for the
// lifetime of the store and sort roughly by creation time.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Now returns a strictly increasing wall-clock reading. If the system clock
// reads at or before the previously issued value (clock regression, or two
// calls within timer resolution), the reading is bumped by one nanosecond so
// that an update always advances updated_at.
func Now() time.Time {
	mu.Lock()
	defer mu.Unlock()
	t := time.Now().UTC()
	if !t.After(last) {
		t = last.Add(time.Nanosecond)
	}
	last = t
	return t
}

// Timestamp formats t in the storage layout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
