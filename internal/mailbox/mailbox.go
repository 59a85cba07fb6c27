// internal/mailbox/mailbox.go
package mailbox

import (
	"sync"
	"time"
)

const DefaultTTL = 10 * time.Second

// Signal is a single "open the gate" event waiting to be collected by the
// hardware poller.
type Signal struct {
	Plate     string    `json:"plate"`
	Reason    string    `json:"reason"`
	ArmedAt   time.Time `json:"armed_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Mailbox is a single-slot, TTL-bounded rendezvous between the payment core
// and the slow-polling gate hardware. It is not a queue: Set overwrites any
// unread signal (only "is there currently a reason to open the gate"
// matters), and PollAndClear hands a signal to at most one caller. State is
// in-memory only; signals do not survive a restart.
type Mailbox struct {
	mu   sync.Mutex
	ttl  time.Duration
	slot *Signal
}

// New creates a mailbox. A non-positive ttl falls back to DefaultTTL, which
// comfortably exceeds the hardware poller's 2s cycle.
func New(ttl time.Duration) *Mailbox {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Mailbox{ttl: ttl}
}

// Set arms the mailbox, unconditionally replacing any pending signal.
func (m *Mailbox) Set(plate, reason string) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.slot = &Signal{
		Plate:     plate,
		Reason:    reason,
		ArmedAt:   now,
		ExpiresAt: now.Add(m.ttl),
	}
}

// PollAndClear returns the pending signal and empties the slot in the same
// critical section, so a signal is delivered to at most one caller. An
// expired signal reads as empty and is dropped.
func (m *Mailbox) PollAndClear() (Signal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.slot == nil {
		return Signal{}, false
	}
	if time.Now().After(m.slot.ExpiresAt) {
		m.slot = nil
		return Signal{}, false
	}

	sig := *m.slot
	m.slot = nil
	return sig, true
}
