package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDescribeStacks struct {
	outputs map[string]string
	err     error
}

func (f *fakeDescribeStacks) DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	var outs []cfntypes.Output
	for k, v := range f.outputs {
		outs = append(outs, cfntypes.Output{OutputKey: aws.String(k), OutputValue: aws.String(v)})
	}
	return &cloudformation.DescribeStacksOutput{
		Stacks: []cfntypes.Stack{{StackName: params.StackName, Outputs: outs}},
	}, nil
}

func TestStackOutputs(t *testing.T) {
	fetcher := &CFNOutputs{
		NewClient: func(ctx context.Context, region string) (DescribeStacksAPI, error) {
			assert.Equal(t, "us-east-1", region)
			return &fakeDescribeStacks{outputs: map[string]string{
				"AgentAssistantRuntimeId":  "rt-1",
				"AgentAssistantRuntimeArn": "arn:1",
			}}, nil
		},
	}

	outputs, err := fetcher.StackOutputs(context.Background(), "us-east-1", "agentctl-dev")
	require.NoError(t, err)
	assert.Equal(t, "rt-1", outputs["AgentAssistantRuntimeId"])
	assert.Equal(t, "arn:1", outputs["AgentAssistantRuntimeArn"])
}

func TestReadAssemblyStacks(t *testing.T) {
	dir := t.TempDir()
	manifest := `{
		"version": "36.0.0",
		"artifacts": {
			"agentctl-dev.assets": {"type": "cdk:asset-manifest"},
			"agentctl-dev": {"type": "aws:cloudformation:stack"},
			"agentctl-dev-tools": {"type": "aws:cloudformation:stack"},
			"Tree": {"type": "cdk:tree"}
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(manifest), 0644))

	stacks, err := readAssemblyStacks(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"agentctl-dev", "agentctl-dev-tools"}, stacks)
}

func TestReadAssemblyStacksEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(`{"artifacts": {}}`), 0644))

	stacks, err := readAssemblyStacks(dir)
	require.NoError(t, err)
	assert.Empty(t, stacks)
}

func TestNoStacksError(t *testing.T) {
	err := &NoStacksError{Project: "support-bot"}
	assert.Contains(t, err.Error(), "support-bot")
	assert.Contains(t, err.Error(), "no stacks")
}

func TestCDKHandleDisposeIdempotent(t *testing.T) {
	dir := t.TempDir()
	assembly := filepath.Join(dir, "assembly")
	require.NoError(t, os.MkdirAll(assembly, 0755))

	h := &cdkHandle{assemblyDir: assembly}
	require.NoError(t, h.Dispose())
	_, err := os.Stat(assembly)
	assert.True(t, os.IsNotExist(err))

	// Safe to call again
	require.NoError(t, h.Dispose())
}
