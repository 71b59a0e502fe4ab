// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package ui groups the user facing front ends of Chainmaster. The command
// line lives in ui/cli; the progress view it starts lives in internal/tui.
package ui
