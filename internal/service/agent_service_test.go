package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-dispatch-service/internal/entity"
)

func TestAgentService_CreateAgentValidation(t *testing.T) {
	svc := NewAgentService(newMemAgentStore())

	_, err := svc.CreateAgent(context.Background(), CreateAgentRequest{
		Name: "no address or classification",
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	_, err = svc.CreateAgent(context.Background(), CreateAgentRequest{
		Name:           "bad url",
		Address:        "not a url",
		Classification: "analysis",
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	_, err = svc.CreateAgent(context.Background(), CreateAgentRequest{
		Name:           "negative price",
		Address:        "http://a.local/invoke",
		Classification: "analysis",
		Price:          -1,
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestAgentService_CreateAndDelete(t *testing.T) {
	store := newMemAgentStore()
	svc := NewAgentService(store)

	agent, err := svc.CreateAgent(context.Background(), CreateAgentRequest{
		Name:           "summarizer",
		Address:        "http://a.local/invoke",
		Classification: "analysis",
		Tags:           "ml,nlp",
		Price:          0.3,
		IsActive:       true,
	})
	require.NoError(t, err)

	got, err := svc.GetAgent(context.Background(), agent.ID)
	require.NoError(t, err)
	assert.Equal(t, "summarizer", got.Name)

	require.NoError(t, svc.DeleteAgent(context.Background(), agent.ID))
	_, err = svc.GetAgent(context.Background(), agent.ID)
	require.ErrorIs(t, err, entity.ErrNotFound)
}
