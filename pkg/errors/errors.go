// Package errors provides structured error handling for FairFund.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes for the CLI front end.
const (
	ExitSuccess     = 0 // Successful execution
	ExitGeneral     = 1 // General/unknown error
	ExitInput       = 2 // Invalid input
	ExitUnavailable = 3 // Required capability or backend unavailable
	ExitNotFound    = 4 // Resource not found
)

// FundError is the structured error type for FairFund.
type FundError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *FundError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *FundError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for FundError.
func (e *FundError) Is(target error) bool {
	var t *FundError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &FundError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &FundError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	// Wallet-linking errors.
	ErrWalletUnknown = &FundError{
		Code:     "WALLET_UNKNOWN",
		Message:  "wallet not found in registry",
		ExitCode: ExitNotFound,
	}

	ErrNoConnector = &FundError{
		Code:     "NO_CONNECTOR",
		Message:  "wallet option has no connector capability",
		ExitCode: ExitInput,
	}

	ErrActivationInFlight = &FundError{
		Code:     "ACTIVATION_IN_FLIGHT",
		Message:  "another wallet activation is already pending",
		ExitCode: ExitGeneral,
	}

	// Funding-flow errors.
	ErrInvalidCurrency = &FundError{
		Code:     "INVALID_CURRENCY",
		Message:  "unsupported deposit currency",
		ExitCode: ExitInput,
	}

	ErrInvalidAmount = &FundError{
		Code:     "INVALID_AMOUNT",
		Message:  "invalid amount",
		ExitCode: ExitInput,
	}

	ErrFlowLocked = &FundError{
		Code:     "FLOW_LOCKED",
		Message:  "funding flow is locked by a confirmed purchase",
		ExitCode: ExitGeneral,
	}

	// Backend errors.
	ErrBackendUnavailable = &FundError{
		Code:     "BACKEND_UNAVAILABLE",
		Message:  "payment backend unavailable",
		ExitCode: ExitUnavailable,
	}

	ErrRetryable = &FundError{
		Code:     "RETRYABLE_ERROR",
		Message:  "retryable error",
		ExitCode: ExitGeneral,
	}

	ErrRateLimited = &FundError{
		Code:     "RATE_LIMITED",
		Message:  "rate limited",
		ExitCode: ExitGeneral,
	}

	ErrTimeout = &FundError{
		Code:     "TIMEOUT",
		Message:  "operation timed out",
		ExitCode: ExitGeneral,
	}

	// Config errors.
	ErrConfigNotFound = &FundError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &FundError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	// Provider errors.
	ErrProviderUnavailable = &FundError{
		Code:     "PROVIDER_UNAVAILABLE",
		Message:  "wallet provider unavailable",
		ExitCode: ExitUnavailable,
	}
)

// New creates a new FundError with the given code and message.
func New(code, message string) *FundError {
	return &FundError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var fe *FundError
	if errors.As(err, &fe) {
		return &FundError{
			Code:       fe.Code,
			Message:    fmt.Sprintf("%s: %s", msg, fe.Message),
			Details:    fe.Details,
			Suggestion: fe.Suggestion,
			Cause:      err,
			ExitCode:   fe.ExitCode,
		}
	}

	return &FundError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var fe *FundError
	if errors.As(err, &fe) {
		return &FundError{
			Code:       fe.Code,
			Message:    fe.Message,
			Details:    details,
			Suggestion: fe.Suggestion,
			Cause:      fe.Cause,
			ExitCode:   fe.ExitCode,
		}
	}

	return &FundError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var fe *FundError
	if errors.As(err, &fe) {
		return &FundError{
			Code:       fe.Code,
			Message:    fe.Message,
			Details:    fe.Details,
			Suggestion: suggestion,
			Cause:      fe.Cause,
			ExitCode:   fe.ExitCode,
		}
	}

	return &FundError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the exit code for an error.
// Returns ExitSuccess for nil and ExitGeneral for unstructured errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var fe *FundError
	if errors.As(err, &fe) {
		return fe.ExitCode
	}
	return ExitGeneral
}

// Suggestion returns the suggestion attached to an error, if any.
func Suggestion(err error) string {
	var fe *FundError
	if errors.As(err, &fe) {
		return fe.Suggestion
	}
	return ""
}

// WrapRetryable wraps an error to mark it as retryable.
func WrapRetryable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRetryable, err)
}
