// Package autherr defines the structured failure descriptor shared by all
// authguard components. An Error carries a category, a human-safe message,
// a flag telling whether a fallback path absorbed the failure, and the time
// of detection. The underlying cause is kept private and never appears in
// Error(); it is only available to the reporter's debug channel.
package autherr

import "time"

// Category classifies a failure by the dependency it originated from.
type Category string

const (
	CategoryStyling  Category = "STYLING"
	CategoryConfig   Category = "CONFIG"
	CategoryRegistry Category = "REGISTRY"
	CategoryCrypto   Category = "CRYPTO"
)

// Fixed, sanitized messages keyed by category. These are the only strings
// an end user may ever see for dependency failures; raw errors stay on the
// debug channel.
var safeMessages = map[Category]string{
	CategoryStyling:  "styling service unavailable, minimal styles active",
	CategoryConfig:   "optional features are temporarily disabled",
	CategoryRegistry: "account service is temporarily unavailable",
	CategoryCrypto:   "secure sign-up is temporarily unavailable",
}

// Error is the structured failure descriptor.
type Error struct {
	Category     Category
	Message      string
	FallbackUsed bool
	At           time.Time

	cause error
}

// New creates an Error for the category with its fixed sanitized message.
// cause may be nil; when set it is retained for diagnostics only.
func New(category Category, fallbackUsed bool, cause error) *Error {
	return &Error{
		Category:     category,
		Message:      safeMessages[category],
		FallbackUsed: fallbackUsed,
		At:           time.Now(),
		cause:        cause,
	}
}

// WithMessage creates an Error with a caller-supplied sanitized message.
// The message must already be safe to show to an end user.
func WithMessage(category Category, message string, fallbackUsed bool, cause error) *Error {
	e := New(category, fallbackUsed, cause)
	e.Message = message
	return e
}

// Error returns the sanitized message only.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the cause for errors.Is/As matching inside the process.
func (e *Error) Unwrap() error {
	return e.cause
}

// SafeMessage returns the fixed sanitized message for a category.
func SafeMessage(category Category) string {
	return safeMessages[category]
}
