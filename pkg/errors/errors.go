package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies a MessagingError. Retryable vs. non-retryable is an
// explicit classification the caller may use to decide whether to retry.
type Kind int

const (
	// KindInvalidMessage indicates a malformed or incomplete message.
	KindInvalidMessage Kind = iota
	// KindProcessingRetryable indicates a transient processing failure.
	KindProcessingRetryable
	// KindProcessingNotRetryable indicates a permanent processing failure.
	KindProcessingNotRetryable
	// KindAccessDenied indicates the remote rejected the sender's identity.
	KindAccessDenied
)

// String returns the wire-stable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidMessage:
		return "INVALID_MESSAGE"
	case KindProcessingRetryable:
		return "PROCESSING_ERROR_RETRYABLE"
	case KindProcessingNotRetryable:
		return "PROCESSING_ERROR_NOT_RETRYABLE"
	case KindAccessDenied:
		return "ACCESS_DENIED"
	}
	return "UNKNOWN"
}

// Retryable reports whether errors of this kind may be retried.
func (k Kind) Retryable() bool {
	return k == KindProcessingRetryable
}

// ConfigurationError reports a missing collaborator or setting. Item names
// the specific missing piece so the caller can fix the wiring.
type ConfigurationError struct {
	Item string
}

// NewConfiguration creates a ConfigurationError for the named missing item.
func NewConfiguration(item string) *ConfigurationError {
	return &ConfigurationError{Item: item}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration incomplete: %s is not set", e.Item)
}

// ValidationError reports caller-supplied data failing a business rule.
// Prefix is a fixed human-readable field prefix; Value is the offending
// value. Values are never silently coerced.
type ValidationError struct {
	Prefix string
	Value  string
}

// NewValidation creates a ValidationError for a field prefix and value.
func NewValidation(prefix, value string) *ValidationError {
	return &ValidationError{Prefix: prefix, Value: value}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %q", e.Prefix, e.Value)
}

// LoggingError reports an audit sink failure.
type LoggingError struct {
	Err error
}

// NewLogging wraps an audit sink failure.
func NewLogging(err error) *LoggingError {
	return &LoggingError{Err: err}
}

func (e *LoggingError) Error() string {
	return fmt.Sprintf("audit write failed: %v", e.Err)
}

func (e *LoggingError) Unwrap() error { return e.Err }

// MessagingError is a wire-level failure. CorrelationID is generated at
// construction and embedded in the message text so the failure can be
// traced across logs on both sides of the exchange.
type MessagingError struct {
	Kind          Kind
	CorrelationID string
	Message       string
	Err           error
}

// NewMessaging creates a MessagingError of the given kind with a fresh
// correlation id.
func NewMessaging(kind Kind, message string, err error) *MessagingError {
	return &MessagingError{
		Kind:          kind,
		CorrelationID: uuid.New().String(),
		Message:       message,
		Err:           err,
	}
}

func (e *MessagingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s] %s: %v", e.Kind, e.CorrelationID, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s] %s", e.Kind, e.CorrelationID, e.Message)
}

func (e *MessagingError) Unwrap() error { return e.Err }

// Retryable reports whether the caller may retry the failed exchange.
func (e *MessagingError) Retryable() bool { return e.Kind.Retryable() }

// CommsError is a MessagingError raised for transport connectivity
// failures.
type CommsError struct {
	MessagingError
}

// NewComms creates a retryable transport communications error.
func NewComms(message string, err error) *CommsError {
	return &CommsError{MessagingError: *NewMessaging(KindProcessingRetryable, message, err)}
}

// TimeoutError is a MessagingError raised when the transport timeout
// configured on the route elapsed before a response arrived.
type TimeoutError struct {
	MessagingError
}

// NewTimeout creates a retryable transport timeout error.
func NewTimeout(message string, err error) *TimeoutError {
	return &TimeoutError{MessagingError: *NewMessaging(KindProcessingRetryable, message, err)}
}

// BusyError signals the remote service is unavailable. It is not a fault:
// the operation layer maps it to the BUSY sentinel response code.
type BusyError struct {
	CorrelationID string
}

// NewBusy creates a busy signal with a fresh correlation id.
func NewBusy() *BusyError {
	return &BusyError{CorrelationID: uuid.New().String()}
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("service unavailable [%s]", e.CorrelationID)
}

// IsBusy reports whether err is, or wraps, a busy signal.
func IsBusy(err error) bool {
	var busy *BusyError
	return errors.As(err, &busy)
}

// IsConfiguration reports whether err is, or wraps, a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsLogging reports whether err is, or wraps, a LoggingError.
func IsLogging(err error) bool {
	var le *LoggingError
	return errors.As(err, &le)
}
