package auth

import (
	"sync/atomic"

	"github.com/awnumar/memguard"
)

// Slot is the process-wide credential cell. Writers replace the whole value,
// so the last Store wins. Material is kept sealed in a memguard Enclave.
type Slot struct {
	enclave atomic.Pointer[memguard.Enclave]
}

// Store seals material into the slot. Empty material clears it.
func (s *Slot) Store(material string) {
	if material == "" {
		s.Clear()
		return
	}
	s.enclave.Store(memguard.NewEnclave([]byte(material)))
}

// Load returns the current material.
func (s *Slot) Load() (string, bool) {
	enclave := s.enclave.Load()
	if enclave == nil {
		return "", false
	}
	buf, err := enclave.Open()
	if err != nil {
		return "", false
	}
	defer buf.Destroy()
	return string(buf.Bytes()), true
}

// Clear empties the slot.
func (s *Slot) Clear() {
	s.enclave.Store(nil)
}
