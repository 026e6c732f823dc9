package runtime

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcorecontrol"
)

// AgentRuntimeAPI is the slice of the agent-runtime control plane used by
// the inspector.
type AgentRuntimeAPI interface {
	GetAgentRuntime(ctx context.Context, params *bedrockagentcorecontrol.GetAgentRuntimeInput, optFns ...func(*bedrockagentcorecontrol.Options)) (*bedrockagentcorecontrol.GetAgentRuntimeOutput, error)
}

// Inspector reads live status of deployed agent runtimes. It complements
// the deployed-state document: the document records what was deployed, the
// inspector reports what the control plane says about it now.
type Inspector struct {
	// NewClient builds a regional control-plane client. Overridable in tests.
	NewClient func(ctx context.Context, region string) (AgentRuntimeAPI, error)
}

func NewInspector() *Inspector {
	return &Inspector{NewClient: defaultControlClient}
}

func defaultControlClient(ctx context.Context, region string) (AgentRuntimeAPI, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return bedrockagentcorecontrol.NewFromConfig(cfg), nil
}

// RuntimeStatus returns the control plane's status string for a runtime.
func (i *Inspector) RuntimeStatus(ctx context.Context, region, runtimeID string) (string, error) {
	client, err := i.NewClient(ctx, region)
	if err != nil {
		return "", err
	}

	resp, err := client.GetAgentRuntime(ctx, &bedrockagentcorecontrol.GetAgentRuntimeInput{
		AgentRuntimeId: aws.String(runtimeID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe agent runtime %s: %w", runtimeID, err)
	}
	return string(resp.Status), nil
}
