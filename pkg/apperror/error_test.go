package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMatchesByCode(t *testing.T) {
	err := fmt.Errorf("post invoice: %w", New(CodeAlreadyPosted, "invoice 7 is posted"))

	assert.True(t, HasCode(err, CodeAlreadyPosted))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.True(t, errors.Is(err, New(CodeAlreadyPosted, "")))

	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeAlreadyPosted, code)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeDBError, "insert journal entry", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "DB_ERROR: insert journal entry: connection refused", err.Error())
	assert.Nil(t, Wrap(CodeDBError, "noop", nil))
}

func TestWithDetailCopies(t *testing.T) {
	base := New(CodeMissingAccountMapping, "unresolved accounts")
	withKeys := base.WithDetail("missing", []string{"output_cess"})

	assert.Nil(t, base.Details)
	assert.Equal(t, []string{"output_cess"}, withKeys.Details["missing"])
}

func TestCodeOfPlainError(t *testing.T) {
	_, ok := CodeOf(errors.New("boom"))
	assert.False(t, ok)
}
