package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad input", nil)))
	assert.Equal(t, KindNotFound, KindOf(NotFound("salon", nil)))
	assert.Equal(t, KindClosed, KindOf(Closed("closed that day")))
	assert.Equal(t, KindConflict, KindOf(Conflict("slot taken", nil)))
	assert.Equal(t, KindInternal, KindOf(Internal(errors.New("boom"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("untyped")))
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("handling request: %w", NotFound("staff", nil))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, IsNotFound(err))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("row missing")
	err := NotFound("salon", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "salon not found")
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "bad input", Validation("bad input", nil).Error())
	assert.Equal(t, "bad input: cause", Validation("bad input", errors.New("cause")).Error())
	assert.Equal(t, "internal server error: boom", Internal(errors.New("boom")).Error())
}
