package errors

import (
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestPipelineErrorFormatting(t *testing.T) {
	cause := pkgerrors.New("connection refused")
	err := TranscriptionFailed("whisper transcription", cause)
	require.Equal(t, "[TRANSCRIPTION_FAILED] whisper transcription: connection refused", err.Error())
	require.Equal(t, cause, err.Unwrap())

	plain := LLMUnavailable("AI is not configured")
	require.Equal(t, "[LLM_UNAVAILABLE] AI is not configured", plain.Error())
	require.Nil(t, plain.Unwrap())
}

func TestIsCodeUnwrapsChains(t *testing.T) {
	coded := AgentExecutionFailed("agent chat", pkgerrors.New("boom"))
	wrapped := pkgerrors.Wrap(coded, "processing request")

	require.True(t, IsCode(coded, ErrCodeAgentExecutionFailed))
	require.True(t, IsCode(wrapped, ErrCodeAgentExecutionFailed))
	require.False(t, IsCode(wrapped, ErrCodeLLMUnavailable))
	require.False(t, IsCode(pkgerrors.New("plain"), ErrCodeAgentExecutionFailed))
	require.False(t, IsCode(nil, ErrCodeAgentExecutionFailed))
}

func TestGetCodeFromError(t *testing.T) {
	coded := Wrap(pkgerrors.New("bad json"), ErrCodeAgentExecutionFailed, "parse response")
	require.Equal(t, ErrCodeAgentExecutionFailed, GetCodeFromError(coded, ErrCodeLLMUnavailable))

	wrapped := pkgerrors.Wrap(LLMUnavailable("down"), "agent chat")
	require.Equal(t, ErrCodeLLMUnavailable, GetCodeFromError(wrapped, ErrCodeAgentExecutionFailed))

	require.Equal(t, ErrCodeAgentExecutionFailed, GetCodeFromError(pkgerrors.New("plain"), ErrCodeAgentExecutionFailed))
}
