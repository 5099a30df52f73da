package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKinds(t *testing.T) {
	assert.True(t, IsConnection(Connection("dial", fmt.Errorf("refused"))))
	assert.True(t, IsProtocol(Protocol(CodeAlreadyStarted, "twice")))
	assert.True(t, IsRemote(Remote("rate_limited", "slow down", true)))
	assert.True(t, IsTimeout(Timeout("deadline", nil)))

	assert.False(t, IsTimeout(Protocol(CodeNotStarted, "no")))
	assert.False(t, IsProtocol(fmt.Errorf("plain")))
}

func TestRemoteCarriesTriple(t *testing.T) {
	err := Remote("rate_limited", "slow down", true)
	require.Equal(t, "rate_limited", err.Code())
	require.Equal(t, "slow down", err.Msg())
	require.True(t, err.Retryable())
}

func TestFromStatus(t *testing.T) {
	cases := []struct {
		status    int
		code      string
		retryable bool
	}{
		{400, CodeBadRequest, false},
		{401, CodeUnauthorized, false},
		{403, CodeForbidden, false},
		{404, CodeNotFound, false},
		{429, CodeRateLimited, true},
		{500, CodeServerError, true},
		{503, CodeServerError, true},
		{418, CodeInternal, false},
	}
	for _, c := range cases {
		err := FromStatus(c.status, "boom")
		assert.Equal(t, c.code, err.Code(), "status %d", c.status)
		assert.Equal(t, c.retryable, err.Retryable(), "status %d", c.status)
		assert.True(t, IsRemote(err))
	}
}

func TestAsStackThroughWrapping(t *testing.T) {
	inner := Protocol(CodeStreamEnded, "gone")
	wrapped := fmt.Errorf("recv: %w", inner)
	se, ok := AsStack(wrapped)
	require.True(t, ok)
	require.Equal(t, CodeStreamEnded, se.Code())
	assert.True(t, IsProtocol(wrapped))
}
