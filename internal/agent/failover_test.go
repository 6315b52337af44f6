package agent

import (
	"context"
	"testing"

	"github.com/IstiaqueAhmd/fitness-agent/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailoverClient_PrimarySucceeds(t *testing.T) {
	reg := llm.NewRegistry(testLog())
	reg.Register("primary", &llm.MockClient{
		ProviderName: "primary",
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: "from primary"}, nil
		},
	})

	fc := NewFailoverClient(reg, "primary", nil, testLog())
	resp, err := fc.Complete(context.Background(), llm.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "from primary", resp.Content)
}

func TestFailoverClient_FallsBackOnRetryable(t *testing.T) {
	reg := llm.NewRegistry(testLog())
	reg.Register("primary", &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return nil, &llm.ProviderError{Provider: "primary", Code: 429, Message: "rate limited"}
		},
	})
	reg.Register("backup", &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: "from backup"}, nil
		},
	})

	fc := NewFailoverClient(reg, "primary", []string{"backup"}, testLog())
	resp, err := fc.Complete(context.Background(), llm.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "from backup", resp.Content)
}

func TestFailoverClient_NonRetryableStops(t *testing.T) {
	var backupCalled bool
	reg := llm.NewRegistry(testLog())
	reg.Register("primary", &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return nil, &llm.ProviderError{Provider: "primary", Code: 400, Message: "bad request"}
		},
	})
	reg.Register("backup", &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			backupCalled = true
			return &llm.CompletionResponse{Content: "from backup"}, nil
		},
	})

	fc := NewFailoverClient(reg, "primary", []string{"backup"}, testLog())
	_, err := fc.Complete(context.Background(), llm.CompletionRequest{})
	require.Error(t, err)
	assert.False(t, backupCalled, "non-retryable errors must not trigger failover")
}

func TestFailoverClient_AllFail(t *testing.T) {
	reg := llm.NewRegistry(testLog())
	reg.Register("primary", &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return nil, &llm.ProviderError{Provider: "primary", Code: 503, Message: "down"}
		},
	})

	fc := NewFailoverClient(reg, "primary", []string{"missing"}, testLog())
	_, err := fc.Complete(context.Background(), llm.CompletionRequest{})
	require.Error(t, err)
}
