package toolchain

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
)

// DescribeStacksAPI is the slice of the CloudFormation client used to read
// stack outputs.
type DescribeStacksAPI interface {
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
}

// CFNOutputs reads deployed-stack outputs from the CloudFormation control
// plane.
type CFNOutputs struct {
	// NewClient builds a regional CloudFormation client. Overridable in tests.
	NewClient func(ctx context.Context, region string) (DescribeStacksAPI, error)
}

func NewCFNOutputs() *CFNOutputs {
	return &CFNOutputs{NewClient: defaultCFNClient}
}

func defaultCFNClient(ctx context.Context, region string) (DescribeStacksAPI, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return cloudformation.NewFromConfig(cfg), nil
}

// StackOutputs returns the flat output map of the named stack.
func (f *CFNOutputs) StackOutputs(ctx context.Context, region, stackName string) (map[string]string, error) {
	client, err := f.NewClient(ctx, region)
	if err != nil {
		return nil, err
	}

	resp, err := client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe stack %s: %w", stackName, err)
	}
	if len(resp.Stacks) == 0 {
		return nil, fmt.Errorf("stack %s not found in %s", stackName, region)
	}

	outputs := make(map[string]string)
	for _, out := range resp.Stacks[0].Outputs {
		if out.OutputKey != nil && out.OutputValue != nil {
			outputs[*out.OutputKey] = *out.OutputValue
		}
	}
	return outputs, nil
}
