package control

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"

	"github.com/merrow/brim/internal/urls"
)

// ErrorType represents the category of a control protocol failure
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (unreachable host, reset, etc.)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the instance did not answer in time
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the instance refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a hostname resolution failure
	ErrTypeDNS
	// ErrTypeProtocol indicates a malformed or unexpected message
	ErrTypeProtocol
	// ErrTypeRejected indicates the instance refused the request in an ack
	ErrTypeRejected
	// ErrTypeValidation indicates the instance state does not match what was pushed
	ErrTypeValidation
	// ErrTypeUnknown indicates an unexpected error
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeProtocol:
		return "Protocol Error"
	case ErrTypeRejected:
		return "Request Rejected"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ControlError represents an error that occurred while talking to a brim instance
type ControlError struct {
	Type      ErrorType // Category of error
	Message   string    // Human-readable error message
	Err       error     // Underlying error (if any)
	Addr      string    // Instance address (for context)
	Retryable bool      // Whether the error is retryable
}

// Error implements the error interface
func (e *ControlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ControlError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes an error and returns a more specific error type
func ClassifyNetworkError(err error, addr string) *ControlError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &ControlError{
			Type:      ErrTypeTimeout,
			Message:   "Request timed out",
			Err:       err,
			Addr:      addr,
			Retryable: true,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &ControlError{
			Type:      ErrTypeDNS,
			Message:   fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:       err,
			Addr:      addr,
			Retryable: false,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return &ControlError{
				Type:      ErrTypeConnectionRefused,
				Message:   "Instance refused connection",
				Err:       err,
				Addr:      addr,
				Retryable: true,
			}
		}
		if errors.Is(opErr.Err, syscall.EHOSTUNREACH) || errors.Is(opErr.Err, syscall.ENETUNREACH) {
			return &ControlError{
				Type:      ErrTypeNetwork,
				Message:   "Instance unreachable",
				Err:       err,
				Addr:      addr,
				Retryable: true,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// Recursively classify the underlying error
		return ClassifyNetworkError(urlErr.Err, addr)
	}

	return &ControlError{
		Type:      ErrTypeNetwork,
		Message:   "Network error occurred",
		Err:       err,
		Addr:      addr,
		Retryable: true,
	}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error, addr string) *ControlError {
	classified := ClassifyNetworkError(err, addr)
	if classified != nil {
		classified.Message = message
		return classified
	}
	return &ControlError{
		Type:      ErrTypeNetwork,
		Message:   message,
		Err:       err,
		Addr:      addr,
		Retryable: true,
	}
}

// NewProtocolError creates an error for a malformed or unexpected message
func NewProtocolError(message string, err error) *ControlError {
	return &ControlError{
		Type:      ErrTypeProtocol,
		Message:   message,
		Err:       err,
		Retryable: false,
	}
}

// NewRejectedError creates an error for a request the instance refused
func NewRejectedError(message string) *ControlError {
	return &ControlError{
		Type:      ErrTypeRejected,
		Message:   message,
		Retryable: false,
	}
}

// NewValidationError creates an error for instance state that does not
// match what was pushed
func NewValidationError(message string) *ControlError {
	return &ControlError{
		Type:      ErrTypeValidation,
		Message:   message,
		Retryable: false,
	}
}

// IsNetworkError checks if an error is a network error (including timeout,
// connection refused and DNS failures)
func IsNetworkError(err error) bool {
	var ctlErr *ControlError
	if errors.As(err, &ctlErr) {
		return ctlErr.Type == ErrTypeNetwork ||
			ctlErr.Type == ErrTypeTimeout ||
			ctlErr.Type == ErrTypeConnectionRefused ||
			ctlErr.Type == ErrTypeDNS
	}
	return false
}

// IsProtocolError checks if an error is a protocol error
func IsProtocolError(err error) bool {
	var ctlErr *ControlError
	if errors.As(err, &ctlErr) {
		return ctlErr.Type == ErrTypeProtocol
	}
	return false
}

// IsRejectedError checks if an error is a rejection from the instance
func IsRejectedError(err error) bool {
	var ctlErr *ControlError
	if errors.As(err, &ctlErr) {
		return ctlErr.Type == ErrTypeRejected
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ctlErr *ControlError
	if errors.As(err, &ctlErr) {
		return ctlErr.Type == ErrTypeValidation
	}
	return false
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var ctlErr *ControlError
	if errors.As(err, &ctlErr) {
		return ctlErr.Retryable
	}
	// Unknown errors are not retryable by default
	return false
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var ctlErr *ControlError
	if !errors.As(err, &ctlErr) {
		return err.Error()
	}

	switch ctlErr.Type {
	case ErrTypeTimeout:
		return "Instance not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Instance refused connection - is brim running with control enabled?"
	case ErrTypeDNS:
		return "Cannot resolve instance hostname"
	case ErrTypeNetwork:
		return "Network error - check connection"
	case ErrTypeProtocol:
		return "Unexpected reply from instance - version mismatch?"
	case ErrTypeRejected:
		return ctlErr.Message
	case ErrTypeValidation:
		return ctlErr.Message
	default:
		return ctlErr.Message
	}
}

// GetTroubleshootingTips returns troubleshooting advice for an error, one
// actionable tip per entry
func GetTroubleshootingTips(err error) []string {
	var ctlErr *ControlError
	if !errors.As(err, &ctlErr) {
		return []string{
			"An unexpected error occurred, try again",
			"See " + urls.Troubleshooting + " for common fixes",
		}
	}

	switch ctlErr.Type {
	case ErrTypeTimeout:
		return []string{
			"Check that brim is running on the target machine",
			"Verify both machines are on the same network",
			"Try increasing the timeout duration",
		}

	case ErrTypeConnectionRefused:
		return []string{
			"Ensure brim was started with the control endpoint enabled",
			"Verify the port number (default is 8470)",
			"Check for a firewall blocking the port",
		}

	case ErrTypeDNS:
		return []string{
			"Use the IP address instead of the hostname",
			"Verify you're on the same network as the instance",
		}

	case ErrTypeNetwork:
		return []string{
			"Check your network connection",
			"Verify the instance address with 'brim-cfg scan'",
		}

	case ErrTypeProtocol:
		return []string{
			"Check that brim and brim-cfg are the same version",
			"Re-run with --log-level debug to capture the exchange",
		}

	case ErrTypeRejected:
		return []string{
			"The instance refused the request, check the error message for details",
		}

	case ErrTypeValidation:
		return []string{
			"Re-run the sync",
			"Check for a concurrent settings editor on the instance",
		}

	default:
		return []string{
			"Check the error message for details",
			"See " + urls.Troubleshooting + " for common fixes",
		}
	}
}
