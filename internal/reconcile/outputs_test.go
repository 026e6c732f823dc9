package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentctl-io/agentctl/internal/deploystate"
)

func TestParseAgentOutputs(t *testing.T) {
	outputs := map[string]string{
		"AgentAssistantRuntimeId":  "rt-1",
		"AgentAssistantRuntimeArn": "arn:1",
		"AgentReviewerRuntimeId":   "rt-2",
		"AgentReviewerRuntimeArn":  "arn:2",
	}

	agents := ParseAgentOutputs(outputs, []string{"assistant", "reviewer"}, "agentctl-dev")
	require.Len(t, agents, 2)
	assert.Equal(t, deploystate.AgentRuntime{RuntimeID: "rt-1", RuntimeARN: "arn:1"}, agents["assistant"])
	assert.Equal(t, deploystate.AgentRuntime{RuntimeID: "rt-2", RuntimeARN: "arn:2"}, agents["reviewer"])
}

func TestParseAgentOutputsOmitsAbsentAgent(t *testing.T) {
	outputs := map[string]string{
		"AgentAssistantRuntimeId":  "rt-1",
		"AgentAssistantRuntimeArn": "arn:1",
	}

	agents := ParseAgentOutputs(outputs, []string{"assistant", "reviewer"}, "agentctl-dev")
	require.Len(t, agents, 1)
	assert.Contains(t, agents, "assistant")
	// Reviewer is absent entirely, not present with zero values
	_, ok := agents["reviewer"]
	assert.False(t, ok)
}

func TestParseAgentOutputsOmitsPartialPair(t *testing.T) {
	outputs := map[string]string{
		"AgentAssistantRuntimeId": "rt-1",
		// ARN key missing
	}

	agents := ParseAgentOutputs(outputs, []string{"assistant"}, "agentctl-dev")
	assert.Empty(t, agents)
}

func TestParseAgentOutputsIgnoresUndeclaredAgents(t *testing.T) {
	outputs := map[string]string{
		"AgentAssistantRuntimeId":  "rt-1",
		"AgentAssistantRuntimeArn": "arn:1",
		"AgentStrangerRuntimeId":   "rt-9",
		"AgentStrangerRuntimeArn":  "arn:9",
		"UnrelatedOutput":          "x",
	}

	agents := ParseAgentOutputs(outputs, []string{"assistant"}, "agentctl-dev")
	require.Len(t, agents, 1)
	assert.Contains(t, agents, "assistant")
}

func TestOutputKeysSanitizeAgentNames(t *testing.T) {
	assert.Equal(t, "AgentmysupportbotRuntimeId", RuntimeIDOutputKey("my-support_bot"))
	assert.Equal(t, "Agentmysupportbot2RuntimeArn", RuntimeARNOutputKey("my.support.bot2"))

	outputs := map[string]string{
		"AgentmysupportbotRuntimeId":  "rt-1",
		"AgentmysupportbotRuntimeArn": "arn:1",
	}
	agents := ParseAgentOutputs(outputs, []string{"my-support_bot"}, "agentctl-dev")
	require.Len(t, agents, 1)
	assert.Equal(t, "rt-1", agents["my-support_bot"].RuntimeID)
}
