package usercontext

import (
	"log/slog"
	"sync"
)

// Metadata is the request metadata bound to one inbound request. Every field
// is an optional string: absence is tracked separately from the empty string.
//
// A Metadata is created by Store.Bind and is only reachable through the
// context of the request that bound it. It may be read and written by any
// goroutine working on that request.
type Metadata struct {
	mu       sync.RWMutex
	vals     Values
	released bool
}

// Get returns the value of f and whether it is present.
func (m *Metadata) Get(f Field) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vals.Get(f)
}

// Set stores v for f. Writes after the request has been unbound are dropped.
func (m *Metadata) Set(f Field, v string) {
	if !f.valid() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return
	}
	m.vals.vals[f] = v
	m.vals.present[f] = true
}

// Unset marks f as absent.
func (m *Metadata) Unset(f Field) {
	if !f.valid() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals.vals[f] = ""
	m.vals.present[f] = false
}

// Snapshot returns an immutable copy of the current values.
func (m *Metadata) Snapshot() Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vals
}

// CorrelationID is shorthand for Get(CorrelationID).
func (m *Metadata) CorrelationID() (string, bool) { return m.Get(CorrelationID) }

// AuthToken is shorthand for Get(AuthToken).
func (m *Metadata) AuthToken() (string, bool) { return m.Get(AuthToken) }

// UserID is shorthand for Get(UserID).
func (m *Metadata) UserID() (string, bool) { return m.Get(UserID) }

// OrgID is shorthand for Get(OrgID).
func (m *Metadata) OrgID() (string, bool) { return m.Get(OrgID) }

// release clears all values and rejects further writes. It reports whether
// this call performed the release.
func (m *Metadata) release() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return false
	}
	m.released = true
	m.vals = Values{}
	return true
}

func (m *Metadata) isReleased() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.released
}

// Values is a point-in-time copy of request metadata. The zero value has
// every field absent.
type Values struct {
	vals    [numFields]string
	present [numFields]bool
}

// NewValues builds a Values from a field map. Useful in tests and for
// building outbound metadata outside a request.
func NewValues(m map[Field]string) Values {
	var v Values
	for f, s := range m {
		if !f.valid() {
			continue
		}
		v.vals[f] = s
		v.present[f] = true
	}
	return v
}

// Get returns the value of f and whether it is present.
func (v Values) Get(f Field) (string, bool) {
	if !f.valid() {
		return "", false
	}
	return v.vals[f], v.present[f]
}

// Len returns the number of present fields.
func (v Values) Len() int {
	n := 0
	for _, ok := range v.present {
		if ok {
			n++
		}
	}
	return n
}

// LogValue implements slog.LogValuer. The auth token is never logged; only
// its presence is.
func (v Values) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, numFields)
	for _, f := range Fields() {
		s, ok := v.Get(f)
		if f == AuthToken {
			attrs = append(attrs, slog.Bool("auth_token_present", ok))
			continue
		}
		if ok {
			attrs = append(attrs, slog.String(f.String(), s))
		}
	}
	return slog.GroupValue(attrs...)
}
