package reconcile

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/agentctl-io/agentctl/internal/target"
)

// CallerIdentityAPI is the slice of the STS client used by the credential
// preflight.
type CallerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// CredentialCheck verifies that the resolved AWS credentials belong to the
// target's account before anything touches the cloud.
type CredentialCheck struct {
	// NewClient builds a regional STS client. Overridable in tests.
	NewClient func(ctx context.Context, region string) (CallerIdentityAPI, error)
}

func NewCredentialCheck() *CredentialCheck {
	return &CredentialCheck{NewClient: defaultSTSClient}
}

func defaultSTSClient(ctx context.Context, region string) (CallerIdentityAPI, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return sts.NewFromConfig(cfg), nil
}

// Verify fails when the caller's account does not match the target. The
// mismatch message is reported as-is; a wrong account is an authorization
// problem, not a credential-freshness one.
func (c *CredentialCheck) Verify(ctx context.Context, t target.Target) error {
	client, err := c.NewClient(ctx, t.Region)
	if err != nil {
		return err
	}

	resp, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fmt.Errorf("failed to resolve caller identity: %w", err)
	}

	account := aws.ToString(resp.Account)
	if account != t.Account {
		return fmt.Errorf("credentials belong to account %s but target %q is account %s; switch profiles and retry", account, t.Name, t.Account)
	}
	return nil
}
