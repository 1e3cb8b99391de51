package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreconditionMessageAndCode(t *testing.T) {
	err := Precondition("Quantile", "p must be in [0, 1], got %v", 1.5)

	assert.Equal(t, CodePrecondition, err.Code)
	assert.Equal(t, "Quantile", err.Op)
	assert.Equal(t, "Quantile: p must be in [0, 1], got 1.5", err.Error())
	assert.True(t, IsPrecondition(err))
}

func TestWrapKeepsInnerCode(t *testing.T) {
	inner := Precondition("WelchTTestTwoSided", "zero standard error")
	wrapped := Wrap(inner, "compare deployment opus")
	twice := fmt.Errorf("cli: %w", wrapped)

	assert.Equal(t, CodePrecondition, GetCode(wrapped))
	assert.True(t, IsPrecondition(twice))
	assert.Equal(t, "compare deployment opus: WelchTTestTwoSided: zero standard error", wrapped.Error())
}

func TestWrapPlainError(t *testing.T) {
	base := stderrors.New("disk on fire")
	wrapped := Wrapf(base, "read %s", "trials.jsonl")

	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.False(t, IsPrecondition(wrapped))
	assert.True(t, stderrors.Is(wrapped, base))
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Nil(t, Wrapf(nil, "nothing %d", 1))
}

func TestGetCodeUnknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeInvalidInput, GetCode(InvalidInput("bad flag")))
	assert.Equal(t, CodeConfigInvalid, GetCode(ConfigInvalid("bad env")))
}

func TestNotFoundKeepsSentinel(t *testing.T) {
	sentinel := stderrors.New("deployment not found")
	err := NotFound(sentinel, "openai/gpt-4o")

	assert.True(t, stderrors.Is(err, sentinel))
	assert.Equal(t, CodeNotFound, GetCode(err))
	assert.Equal(t, "openai/gpt-4o: deployment not found", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Precondition("Op", "bad"), http.StatusUnprocessableEntity},
		{Wrap(InvalidInput("bad json"), "decode"), http.StatusBadRequest},
		{NotFound(stderrors.New("x"), "id"), http.StatusNotFound},
		{ConfigInvalid("env"), http.StatusInternalServerError},
		{stderrors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}
