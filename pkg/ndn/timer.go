package ndn

import (
	"crypto/rand"
	"time"
)

// realTimer is the system-clock Timer used outside of tests.
type realTimer struct{}

// NewTimer returns a Timer backed by the system clock and crypto/rand nonces.
func NewTimer() Timer {
	return realTimer{}
}

func (realTimer) Now() time.Time {
	return time.Now()
}

func (realTimer) Nonce() []byte {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return b
}
