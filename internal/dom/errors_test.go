// internal/dom/errors_test.go
package dom

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"foreign", errors.New("boom"), -1},
		{"direct", newError(NotFound, "removeChild", "missing"), 8},
		{"wrapped", fmt.Errorf("outer: %w", newError(Syntax, "querySelector", "bad")), 12},
		{"sentinel", ErrHierarchyRequest, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestErrorNamesAndMessages(t *testing.T) {
	assert.Equal(t, "NotFoundError", ErrorName(8))
	assert.Equal(t, "NamespaceError", ErrorName(int(Namespace)))
	assert.Equal(t, "", ErrorName(0))
	assert.Equal(t, "", ErrorName(2), "2 is a retired legacy code")
	assert.Equal(t, "success", ErrorMessage(0))
	assert.Equal(t, "unknown error", ErrorMessage(999))
	assert.Equal(t, "the object is in an invalid state", ErrorMessage(11))
	assert.Equal(t, "ErrorKind(99)", ErrorKind(99).String())

	for kind := range kindNames {
		assert.NotEmpty(t, kindMessages[kind], "%s has no message", kind)
	}
}

func TestErrorFormatting(t *testing.T) {
	assert.Equal(t, "removeChild: NotFoundError: the object can not be found here",
		(&Error{Kind: NotFound, Op: "removeChild"}).Error())
	assert.Equal(t, "IndexSizeError: offset 9 past 3",
		(&Error{Kind: IndexSize, Msg: "offset 9 past 3"}).Error())

	inner := errors.New("unexpected token")
	wrapped := &Error{Kind: Syntax, Op: "matches", Err: inner}
	assert.Equal(t, "matches: SyntaxError: unexpected token", wrapped.Error())
	assert.ErrorIs(t, wrapped, inner)
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := newError(InUseAttribute, "setAttributeNode", "owned elsewhere")
	assert.ErrorIs(t, err, ErrInUseAttribute)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, fmt.Errorf("ctx: %w", err), ErrInUseAttribute)
	assert.NotErrorIs(t, errors.New("plain"), ErrInUseAttribute)
}
