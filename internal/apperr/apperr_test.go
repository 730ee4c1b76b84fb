package apperr

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserMessagesAreDistinctFromInternalMessages(t *testing.T) {
	for _, kind := range Kinds {
		t.Run(string(kind), func(t *testing.T) {
			err := New(kind, "internal diagnostic for "+string(kind), "")
			assert.NotEmpty(t, err.UserMessage)
			assert.NotEqual(t, err.Internal, err.UserMessage)
			assert.NotEqual(t, err.Error(), err.UserMessage)
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{"nil", nil, ""},
		{"classified", New(KindPermission, "tier", ""), KindPermission},
		{"wrapped classified", errors.Wrap(New(KindRateLimit, "limit", ""), "outer"), KindRateLimit},
		{"fmt wrapped classified", fmt.Errorf("outer: %w", New(KindAuth, "auth", "")), KindAuth},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"plain", errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestFromContext(t *testing.T) {
	assert.Nil(t, FromContext(nil, "nothing"))

	err := FromContext(context.DeadlineExceeded, "provider call timed out")
	require.NotNil(t, err)
	assert.Equal(t, KindTimeout, err.Kind)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestHTTPStatus(t *testing.T) {
	expected := map[Kind]int{
		KindValidation: http.StatusBadRequest,
		KindAuth:       http.StatusUnauthorized,
		KindPermission: http.StatusForbidden,
		KindTimeout:    http.StatusRequestTimeout,
		KindRateLimit:  http.StatusTooManyRequests,
		KindNetwork:    http.StatusServiceUnavailable,
		KindServer:     http.StatusInternalServerError,
		KindUnknown:    http.StatusInternalServerError,
	}
	for kind, status := range expected {
		assert.Equal(t, status, HTTPStatus(kind), "kind %s", kind)
	}

	// Every status the server produces maps back to the same kind, except the shared 500.
	for _, kind := range []Kind{KindValidation, KindAuth, KindPermission, KindTimeout, KindRateLimit, KindNetwork} {
		assert.Equal(t, kind, KindFromHTTPStatus(HTTPStatus(kind)))
	}
	assert.Equal(t, KindServer, KindFromHTTPStatus(http.StatusInternalServerError))
}

func TestRetryable(t *testing.T) {
	for _, kind := range []Kind{KindAuth, KindPermission, KindValidation} {
		assert.False(t, Retryable(kind), "kind %s", kind)
	}
	for _, kind := range []Kind{KindNetwork, KindServer, KindTimeout, KindUnknown, KindRateLimit} {
		assert.True(t, Retryable(kind), "kind %s", kind)
	}
}

func TestUserMessageOf(t *testing.T) {
	err := Wrap(errors.New("db down"), KindServer, "unable to save", "We could not save your result.")
	assert.Equal(t, "We could not save your result.", UserMessageOf(errors.Wrap(err, "outer")))
	assert.Equal(t, DefaultUserMessage(KindUnknown), UserMessageOf(errors.New("plain")))
}
