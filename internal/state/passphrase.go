// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package state holds process-wide in-memory state: the SSH key passphrase
// entered on the command line and the front-group association cache.
package state // import "github.com/toeirei/chainmaster/internal/state"

import "sync"

// Passphrase keeps the private key passphrase between the prompt and the
// SSH connector. Values are copied in and out so they can be wiped.
var Passphrase = &secretBox{}

type secretBox struct {
	mu    sync.RWMutex
	value []byte
}

// Set stores a copy of b, replacing the current value. nil clears it.
func (s *secretBox) Set(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wipe()
	if b != nil {
		s.value = append([]byte(nil), b...)
	}
}

// Get returns a copy the caller should zero after use.
func (s *secretBox) Get() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.value == nil {
		return nil
	}
	return append([]byte(nil), s.value...)
}

// Clear zeroes and drops the stored value.
func (s *secretBox) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wipe()
}

func (s *secretBox) wipe() {
	for i := range s.value {
		s.value[i] = 0
	}
	s.value = nil
}
