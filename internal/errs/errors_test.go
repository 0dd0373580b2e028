package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrKindNotFound, "table users not found"),
			want: "[not_found] table users not found",
		},
		{
			name: "with cause",
			err:  Wrap(ErrKindTimeout, "query failed", context.DeadlineExceeded),
			want: "[timeout] query failed: context deadline exceeded",
		},
		{
			name: "formatted",
			err:  Newf(ErrKindParseFailed, "bad length %q", "x"),
			want: `[parse_failed] bad length "x"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		kind ErrKind
		pred func(error) bool
	}{
		{ErrKindNotFound, IsNotFound},
		{ErrKindTimeout, IsTimeout},
		{ErrKindConnectionFailed, IsConnectionFailed},
		{ErrKindQueryFailed, IsQueryFailed},
		{ErrKindInvalidInput, IsInvalidInput},
		{ErrKindPermissionDenied, IsPermissionDenied},
		{ErrKindParseFailed, IsParseFailed},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := fmt.Errorf("outer: %w", New(tt.kind, "inner"))
			assert.True(t, tt.pred(err))
			assert.False(t, tt.pred(errors.New("plain")))
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := Wrap(ErrKindTimeout, "ping failed", context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ErrKindUnknown, KindOf(nil))
}
