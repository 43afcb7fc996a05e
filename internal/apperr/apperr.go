// Package apperr converts arbitrary failure values from remote calls
// into user-facing error states. The presentation layer renders these
// directly, so Message is always a plain string.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind is the classification category of a failure.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindQuota         Kind = "quota"
	KindInterrupted   Kind = "interrupted"
	KindGeneric       Kind = "generic"
)

const (
	titleConfiguration = "Configuration Error"
	titleQuota         = "Quota Exceeded"
	titleInterrupted   = "Generation Interrupted"
	titleGeneric       = "Generation Failed"

	configurationMessage = "The AI service rejected the request credentials. " +
		"Verify that the GEMINI_API_KEY deployment secret is present and valid."
	quotaMessage = "The AI service reported a quota or billing problem. " +
		"Check your generation limits and the billing status of your account."
	complexErrorMessage = "A complex system error occurred. Please try again."
)

// ErrorState is the rendered form of a failure.
type ErrorState struct {
	Kind    Kind
	Title   string
	Message string
}

// InterruptedError marks a generation whose output was empty or
// unparsable. It is recoverable by retrying the same request.
type InterruptedError struct {
	Reason string
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("generation interrupted: %s", e.Reason)
}

// NewInterrupted creates an InterruptedError with the given reason.
func NewInterrupted(reason string) error {
	return &InterruptedError{Reason: reason}
}

// Classify maps any recovered value into an ErrorState. The rules run
// in order against the lower-cased message when one is available.
func Classify(v any) ErrorState {
	switch val := v.(type) {
	case error:
		var interrupted *InterruptedError
		if errors.As(val, &interrupted) {
			return ErrorState{
				Kind:  KindInterrupted,
				Title: titleInterrupted,
				Message: "The AI returned an incomplete response. " +
					"Try simplifying the request and generating again.",
			}
		}
		return classifyMessage(val.Error())
	case string:
		return ErrorState{Kind: KindGeneric, Title: titleGeneric, Message: val}
	case nil:
		return ErrorState{Kind: KindGeneric, Title: titleGeneric, Message: complexErrorMessage}
	default:
		data, err := json.Marshal(val)
		if err != nil || len(data) == 0 {
			return ErrorState{Kind: KindGeneric, Title: titleGeneric, Message: complexErrorMessage}
		}
		return ErrorState{Kind: KindGeneric, Title: titleGeneric, Message: string(data)}
	}
}

func classifyMessage(msg string) ErrorState {
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "api key") || strings.Contains(lower, "permission denied"):
		return ErrorState{Kind: KindConfiguration, Title: titleConfiguration, Message: configurationMessage}
	case strings.Contains(lower, "billing") || strings.Contains(lower, "quota"):
		return ErrorState{Kind: KindQuota, Title: titleQuota, Message: quotaMessage}
	default:
		return ErrorState{Kind: KindGeneric, Title: titleGeneric, Message: msg}
	}
}
