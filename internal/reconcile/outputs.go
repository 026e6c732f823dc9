package reconcile

import (
	"fmt"
	"strings"

	"github.com/agentctl-io/agentctl/internal/deploystate"
	"github.com/agentctl-io/agentctl/internal/logging"
)

// Output key convention shared with the synthesis app: each agent publishes
// exactly two stack outputs,
//
//	Agent<Name>RuntimeId
//	Agent<Name>RuntimeArn
//
// where <Name> is the declared agent name with every non-alphanumeric
// character removed (CloudFormation output names are alphanumeric-only).
const (
	outputKeyPrefix  = "Agent"
	runtimeIDSuffix  = "RuntimeId"
	runtimeARNSuffix = "RuntimeArn"
)

// RuntimeIDOutputKey returns the stack output key carrying the runtime
// identifier of the named agent.
func RuntimeIDOutputKey(agentName string) string {
	return outputKeyPrefix + sanitizeOutputName(agentName) + runtimeIDSuffix
}

// RuntimeARNOutputKey returns the stack output key carrying the runtime ARN
// of the named agent.
func RuntimeARNOutputKey(agentName string) string {
	return outputKeyPrefix + sanitizeOutputName(agentName) + runtimeARNSuffix
}

func sanitizeOutputName(name string) string {
	var b strings.Builder
	for _, c := range name {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// ParseAgentOutputs maps a stack's flat output map to per-agent runtime
// records. An agent is included only when both of its keys are present; a
// partial pair is skipped, not an error, since not every agent is present
// in every stack. Keys for undeclared agents are ignored. Purely structural,
// no side effects.
func ParseAgentOutputs(outputs map[string]string, declaredAgents []string, stackName string) map[string]deploystate.AgentRuntime {
	agents := make(map[string]deploystate.AgentRuntime)

	for _, name := range declaredAgents {
		id, idOK := outputs[RuntimeIDOutputKey(name)]
		arn, arnOK := outputs[RuntimeARNOutputKey(name)]
		if !idOK || !arnOK {
			logging.Debug("agent outputs incomplete, skipping",
				"agent", name, "stack", stackName,
				"missing", missingKeys(name, idOK, arnOK))
			continue
		}
		agents[name] = deploystate.AgentRuntime{RuntimeID: id, RuntimeARN: arn}
	}

	return agents
}

func missingKeys(agentName string, idOK, arnOK bool) string {
	var missing []string
	if !idOK {
		missing = append(missing, RuntimeIDOutputKey(agentName))
	}
	if !arnOK {
		missing = append(missing, RuntimeARNOutputKey(agentName))
	}
	return fmt.Sprintf("%v", missing)
}
