// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package chain

import (
	"errors"

	"github.com/toeirei/chainmaster/internal/i18n"
)

// Code is the stable machine readable kind of a chain error.
type Code int

const (
	CodeTwoNodesAtLeast Code = iota + 1
	CodeChainIDExists
	CodeChainNameExists
	CodeHostConnect
	CodeImageNotExists
	CodeChainRootExists
	CodeBuildChain
	CodeListHostNodeDir
	CodeReadNodeConfig
	CodeGenerateFrontYml
	CodeInsertChain
	CodeSaveChain
	CodeDeleteChain
	CodeChainNotFound
	CodeInvalidChainName
)

var codeNames = map[Code]string{
	CodeTwoNodesAtLeast:  "two_nodes_at_least",
	CodeChainIDExists:    "chain_id_exists",
	CodeChainNameExists:  "chain_name_exists",
	CodeHostConnect:      "host_connect_error",
	CodeImageNotExists:   "image_not_exists",
	CodeChainRootExists:  "chain_root_exists",
	CodeBuildChain:       "build_chain_error",
	CodeListHostNodeDir:  "list_host_node_dir_error",
	CodeReadNodeConfig:   "read_node_config_error",
	CodeGenerateFrontYml: "generate_front_yml_error",
	CodeInsertChain:      "insert_chain_error",
	CodeSaveChain:        "save_chain_fail",
	CodeDeleteChain:      "delete_chain_error",
	CodeChainNotFound:    "chain_not_found",
	CodeInvalidChainName: "invalid_chain_name",
}

func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return "unknown"
}

// Error is a coded chain failure. Detail names the host, chain or directory
// involved; Err is the underlying cause, if any.
type Error struct {
	Code   Code
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var msg string
	if e.Detail != "" {
		msg = i18n.T("error."+e.Code.String(), e.Detail)
	} else {
		msg = i18n.T("error." + e.Code.String())
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so the sentinels below work
// with errors.Is regardless of detail and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrTwoNodesAtLeast  = &Error{Code: CodeTwoNodesAtLeast}
	ErrChainIDExists    = &Error{Code: CodeChainIDExists}
	ErrChainNameExists  = &Error{Code: CodeChainNameExists}
	ErrHostConnect      = &Error{Code: CodeHostConnect}
	ErrImageNotExists   = &Error{Code: CodeImageNotExists}
	ErrChainRootExists  = &Error{Code: CodeChainRootExists}
	ErrBuildChain       = &Error{Code: CodeBuildChain}
	ErrListHostNodeDir  = &Error{Code: CodeListHostNodeDir}
	ErrReadNodeConfig   = &Error{Code: CodeReadNodeConfig}
	ErrGenerateFrontYml = &Error{Code: CodeGenerateFrontYml}
	ErrInsertChain      = &Error{Code: CodeInsertChain}
	ErrSaveChain        = &Error{Code: CodeSaveChain}
	ErrDeleteChain      = &Error{Code: CodeDeleteChain}
	ErrChainNotFound    = &Error{Code: CodeChainNotFound}
	ErrInvalidChainName = &Error{Code: CodeInvalidChainName}
)

func newError(code Code, detail string, err error) *Error {
	return &Error{Code: code, Detail: detail, Err: err}
}

// CodeOf extracts the code of the first chain error in err's tree.
func CodeOf(err error) (Code, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return 0, false
}
