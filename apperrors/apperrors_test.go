package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("missing")))
	assert.Equal(t, CodeInvalidArgument, CodeOf(InvalidArg("bad")))
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("plain")))
	assert.Equal(t, CodeUnknown, CodeOf(nil))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeInternal, "lookup failed", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Equal(t, "lookup failed: connection refused", err.Error())

	wrapped := fmt.Errorf("handler: %w", err)
	assert.Equal(t, CodeInternal, CodeOf(wrapped))
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidArgument:  400,
		CodeUnauthenticated:  401,
		CodePermissionDenied: 403,
		CodeNotFound:         404,
		CodeAlreadyExists:    409,
		CodeInternal:         500,
		CodeUnknown:          500,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.HTTPStatus(), "code %s", code)
	}
}
