// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface for Chainmaster using
// Cobra. It loads configuration, opens the store and wires the chain service;
// business logic stays in internal/chain.
package cli
