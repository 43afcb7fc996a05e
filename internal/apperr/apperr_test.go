package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Run("ConfigurationError", func(t *testing.T) {
		state := Classify(errors.New("Permission denied: invalid API key"))
		assert.Equal(t, KindConfiguration, state.Kind)
		assert.Equal(t, "Configuration Error", state.Title)
		assert.Contains(t, state.Message, "GEMINI_API_KEY")
	})

	t.Run("QuotaExceeded", func(t *testing.T) {
		state := Classify(errors.New("Quota exceeded for this billing cycle"))
		assert.Equal(t, KindQuota, state.Kind)
		assert.Equal(t, "Quota Exceeded", state.Title)
	})

	t.Run("GenericErrorKeepsMessage", func(t *testing.T) {
		state := Classify(errors.New("connection reset by peer"))
		assert.Equal(t, KindGeneric, state.Kind)
		assert.Equal(t, "connection reset by peer", state.Message)
	})

	t.Run("PlainString", func(t *testing.T) {
		state := Classify("oops")
		assert.Equal(t, KindGeneric, state.Kind)
		assert.Equal(t, "oops", state.Message)
	})

	t.Run("NonErrorValueIsStringified", func(t *testing.T) {
		state := Classify(map[string]int{"code": 500})
		assert.Equal(t, `{"code":500}`, state.Message)
	})

	t.Run("UnstringifiableValueFallsBack", func(t *testing.T) {
		state := Classify(func() {}) // json.Marshal cannot encode a func
		assert.Equal(t, "A complex system error occurred. Please try again.", state.Message)
	})

	t.Run("WrappedInterrupted", func(t *testing.T) {
		err := fmt.Errorf("pipeline: %w", NewInterrupted("empty response"))
		state := Classify(err)
		assert.Equal(t, KindInterrupted, state.Kind)
		assert.Equal(t, "Generation Interrupted", state.Title)
		assert.Contains(t, state.Message, "simplifying")
	})

	t.Run("MessageIsAlwaysAString", func(t *testing.T) {
		for _, v := range []any{nil, 42, errors.New("x"), "y", struct{ A int }{1}} {
			state := Classify(v)
			assert.NotEmpty(t, state.Message)
		}
	})
}
