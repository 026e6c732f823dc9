package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/agentctl-io/agentctl/internal/logging"
)

// StackStatusAPI is the slice of the CloudFormation client used by the
// deployability checker.
type StackStatusAPI interface {
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
	ListChangeSets(ctx context.Context, params *cloudformation.ListChangeSetsInput, optFns ...func(*cloudformation.Options)) (*cloudformation.ListChangeSetsOutput, error)
}

// Deployability is the all-or-nothing verdict over a set of stacks.
type Deployability struct {
	CanDeploy bool
	Message   string
}

// DeployabilityChecker decides whether the named stacks permit a new deploy.
type DeployabilityChecker struct {
	// NewClient builds a regional CloudFormation client. Overridable in tests.
	NewClient func(ctx context.Context, region string) (StackStatusAPI, error)
}

func NewDeployabilityChecker() *DeployabilityChecker {
	return &DeployabilityChecker{NewClient: defaultStackStatusClient}
}

func defaultStackStatusClient(ctx context.Context, region string) (StackStatusAPI, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return cloudformation.NewFromConfig(cfg), nil
}

// Check queries the status of every named stack. An absent stack is a
// first-time create and deployable; a stack mid-mutation by another process
// blocks the whole set. One blocked stack blocks the deploy: there is no
// per-stack partial proceed.
func (c *DeployabilityChecker) Check(ctx context.Context, region string, stackNames []string) (Deployability, error) {
	client, err := c.NewClient(ctx, region)
	if err != nil {
		return Deployability{}, err
	}

	for _, name := range stackNames {
		resp, err := client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
			StackName: aws.String(name),
		})
		if err != nil {
			if isStackMissing(err, name) {
				logging.Debug("stack absent, first-time create", "stack", name)
				continue
			}
			return Deployability{}, fmt.Errorf("failed to describe stack %s: %w", name, err)
		}
		if len(resp.Stacks) == 0 {
			continue
		}

		status := resp.Stacks[0].StackStatus
		switch {
		case status == cfntypes.StackStatusReviewInProgress:
			active, changeset, err := c.activeChangeSet(ctx, client, name)
			if err != nil {
				return Deployability{}, err
			}
			if active {
				return Deployability{
					Message: fmt.Sprintf("stack %s has change set %s in progress; wait for it to finish and retry", name, changeset),
				}, nil
			}
		case strings.HasSuffix(string(status), "_IN_PROGRESS"):
			return Deployability{
				Message: fmt.Sprintf("stack %s is in %s state; wait for the current operation to finish and retry", name, status),
			}, nil
		}
	}

	return Deployability{CanDeploy: true}, nil
}

func (c *DeployabilityChecker) activeChangeSet(ctx context.Context, client StackStatusAPI, stackName string) (bool, string, error) {
	resp, err := client.ListChangeSets(ctx, &cloudformation.ListChangeSetsInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return false, "", fmt.Errorf("failed to list change sets of stack %s: %w", stackName, err)
	}

	for _, cs := range resp.Summaries {
		if cs.Status == cfntypes.ChangeSetStatusCreateInProgress ||
			cs.Status == cfntypes.ChangeSetStatusCreatePending ||
			cs.Status == cfntypes.ChangeSetStatusDeleteInProgress ||
			cs.ExecutionStatus == cfntypes.ExecutionStatusExecuteInProgress {
			name := ""
			if cs.ChangeSetName != nil {
				name = *cs.ChangeSetName
			}
			return true, name, nil
		}
	}
	return false, "", nil
}

// CloudFormation reports an unknown stack as a ValidationError whose message
// names the stack.
func isStackMissing(err error, stackName string) bool {
	msg := err.Error()
	return strings.Contains(msg, "does not exist") && strings.Contains(msg, stackName)
}
