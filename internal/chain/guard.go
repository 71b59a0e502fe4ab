// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package chain

import (
	"sync"
	"sync/atomic"
)

// deleting counts teardowns in flight across all services of the process.
var deleting atomic.Int32

// acquireDeletion raises the deletion guard. The returned release is
// idempotent and must be deferred by the caller.
func acquireDeletion() (release func()) {
	deleting.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { deleting.Add(-1) })
	}
}

// DeletionInProgress reports whether any chain teardown is running.
func DeletionInProgress() bool {
	return deleting.Load() > 0
}
