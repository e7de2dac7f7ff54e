//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swharr/TrailblazerAI-sub001/internal/application"
	"github.com/swharr/TrailblazerAI-sub001/internal/events"
)

// TestAnalysisRequested_CompletesAnalysis verifies that a submitted analysis
// is picked up from analysis.requests, run through the AI proxy, and lands
// in "completed" status with usage recorded.
func TestAnalysisRequested_CompletesAnalysis(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	proxy := startProxyStub(t, "Moderate rock crawling. Recommend 33-inch tires and a rear locker.")
	stack := setupAnalysisStack(t, infra.DB, infra.KafkaBrokers, proxy.URL)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	// Submit an analysis. This persists a pending row and queues the request.
	userID := uuid.New()
	dto, err := stack.Service.SubmitAnalysis(ctx, userID, application.SubmitAnalysisRequest{
		Images:    []string{"data:image/jpeg;base64,dGVzdA=="},
		TrailName: "Black Bear Pass",
	})
	require.NoError(t, err)
	require.Equal(t, "pending", dto.Status)

	// Assert: analysis transitions to "completed".
	model := waitForAnalysisStatus(t, infra.DB, dto.ID, "completed", 30*time.Second)
	assert.Contains(t, model.ResultText, "rock crawling")
	assert.Equal(t, 1200, model.InputTokens)
	assert.Equal(t, 350, model.OutputTokens)
	assert.NotNil(t, model.CompletedAt)

	// Assert: AnalysisCompletedEvent on analysis.events.
	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicAnalysisEvents,
		events.AnalysisCompleted, 15*time.Second)

	var completed events.AnalysisCompletedEvent
	require.NoError(t, ce.ParseData(&completed))
	assert.Equal(t, dto.ID, completed.AnalysisID)
	assert.Equal(t, userID, completed.UserID)
	assert.Equal(t, 1200, completed.InputTokens)
	assert.Equal(t, 350, completed.OutputTokens)
}
