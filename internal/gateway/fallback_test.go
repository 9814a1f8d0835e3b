package gateway_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"evidos/internal/gateway"
	"evidos/internal/port"
	"evidos/mocks"
)

func completionReq() port.CompletionRequest {
	return port.CompletionRequest{Prompt: "test prompt", MaxTokens: 64, Temperature: 0.1}
}

func TestFallbackGateway_FirstSucceeds(t *testing.T) {
	g1 := new(mocks.MockCompletionGateway)
	g2 := new(mocks.MockCompletionGateway)

	g1.On("Complete", mock.Anything, completionReq()).Return("first answer", nil)

	fg := gateway.NewFallbackGateway(
		[]port.CompletionGateway{g1, g2},
		[]string{"openai", "gemini"},
	)

	out, err := fg.Complete(context.Background(), completionReq())

	require.NoError(t, err)
	assert.Equal(t, "first answer", out)
	g2.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestFallbackGateway_FirstFails_SecondSucceeds(t *testing.T) {
	g1 := new(mocks.MockCompletionGateway)
	g2 := new(mocks.MockCompletionGateway)

	g1.On("Complete", mock.Anything, completionReq()).Return("", errors.New("generic error"))
	g2.On("Complete", mock.Anything, completionReq()).Return("second answer", nil)

	fg := gateway.NewFallbackGateway(
		[]port.CompletionGateway{g1, g2},
		[]string{"openai", "gemini"},
	)

	out, err := fg.Complete(context.Background(), completionReq())

	require.NoError(t, err)
	assert.Equal(t, "second answer", out)
}

func TestFallbackGateway_AllFail(t *testing.T) {
	g1 := new(mocks.MockCompletionGateway)
	g2 := new(mocks.MockCompletionGateway)

	g1.On("Complete", mock.Anything, completionReq()).Return("", errors.New("boom one"))
	g2.On("Complete", mock.Anything, completionReq()).Return("", errors.New("boom two"))

	fg := gateway.NewFallbackGateway(
		[]port.CompletionGateway{g1, g2},
		[]string{"openai", "gemini"},
	)

	_, err := fg.Complete(context.Background(), completionReq())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")
	assert.Contains(t, err.Error(), "boom two")
}

func TestFallbackGateway_RateLimitOpensCircuit(t *testing.T) {
	g1 := new(mocks.MockCompletionGateway)
	g2 := new(mocks.MockCompletionGateway)

	g1.On("Complete", mock.Anything, completionReq()).
		Return("", gateway.NewRateLimitError("openai", errors.New("429"), 60)).Once()
	g2.On("Complete", mock.Anything, completionReq()).Return("answer", nil).Twice()

	fg := gateway.NewFallbackGateway(
		[]port.CompletionGateway{g1, g2},
		[]string{"openai", "gemini"},
	)

	// First call trips the circuit on g1 and falls through to g2.
	out, err := fg.Complete(context.Background(), completionReq())
	require.NoError(t, err)
	assert.Equal(t, "answer", out)

	// Second call skips g1 entirely while its circuit is open.
	out, err = fg.Complete(context.Background(), completionReq())
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	g1.AssertNumberOfCalls(t, "Complete", 1)
}

func TestFallbackGateway_AllRateLimited(t *testing.T) {
	g1 := new(mocks.MockCompletionGateway)
	g2 := new(mocks.MockCompletionGateway)

	g1.On("Complete", mock.Anything, completionReq()).
		Return("", gateway.NewRateLimitError("openai", errors.New("429"), 30))
	g2.On("Complete", mock.Anything, completionReq()).
		Return("", gateway.NewRateLimitError("gemini", errors.New("429"), 90))

	fg := gateway.NewFallbackGateway(
		[]port.CompletionGateway{g1, g2},
		[]string{"openai", "gemini"},
	)

	_, err := fg.Complete(context.Background(), completionReq())

	var rlErr *gateway.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, "all", rlErr.Provider)
}

func TestRateLimitError_DefaultRetryAfter(t *testing.T) {
	err := gateway.NewRateLimitError("openai", errors.New("429"), 0)
	assert.Equal(t, "openai", err.Provider)
	assert.Equal(t, float64(60), err.RetryAfter.Seconds())
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, gateway.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, gateway.ParseRetryAfterHeader("soon"))
	assert.Equal(t, 120, gateway.ParseRetryAfterHeader("120"))
}
