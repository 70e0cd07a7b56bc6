package coreerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slotwise/scheduling-core/internal/coreerr"
)

func TestKindOfClassifiesByKind(t *testing.T) {
	assert.Equal(t, coreerr.Validation, coreerr.KindOf(coreerr.Validationf("bad input")))
	assert.Equal(t, coreerr.NotFound, coreerr.KindOf(coreerr.NotFoundf("missing")))
	assert.Equal(t, coreerr.Conflict, coreerr.KindOf(coreerr.Conflictf("overlap")))
	assert.Equal(t, coreerr.Forbidden, coreerr.KindOf(coreerr.Forbiddenf("wrong tenant")))
	assert.Equal(t, coreerr.Transient, coreerr.KindOf(coreerr.Transientf("lock store down")))
	assert.Equal(t, coreerr.Fatal, coreerr.KindOf(coreerr.Fatalf("commit failed")))
}

func TestKindOfDefaultsToFatalForUnclassifiedErrors(t *testing.T) {
	assert.Equal(t, coreerr.Fatal, coreerr.KindOf(errors.New("plain error")))
}

func TestIsComparesByKindNotMessage(t *testing.T) {
	a := coreerr.Conflictf("slot taken")
	b := coreerr.Conflictf("a different message entirely")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, coreerr.NotFoundf("missing")))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("db connection reset")
	wrapped := coreerr.WrapTransient(cause, "enqueue failed")

	assert.Equal(t, coreerr.Transient, coreerr.KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, cause))
	assert.ErrorIs(t, wrapped, cause)
}

func TestErrorMessageIncludesKindAndCause(t *testing.T) {
	cause := errors.New("boom")
	wrapped := coreerr.WrapFatal(cause, "commit failed")
	msg := wrapped.Error()

	assert.Contains(t, msg, "fatal")
	assert.Contains(t, msg, "commit failed")
	assert.Contains(t, msg, "boom")
}
