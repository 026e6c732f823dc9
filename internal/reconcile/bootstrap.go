package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/agentctl-io/agentctl/internal/logging"
	"github.com/agentctl-io/agentctl/internal/target"
)

const (
	// DefaultBootstrapQualifier is the toolchain's default bootstrap
	// qualifier; it names the shared bootstrap resources in an account/region.
	DefaultBootstrapQualifier = "hnb659fds"

	// MinBootstrapVersion is the lowest bootstrap-template version the
	// synthesis toolchain can deploy with.
	MinBootstrapVersion = 6
)

// SSMParameterAPI is the slice of the SSM client used by the detector.
type SSMParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// BootstrapCheck reports which targets still need the toolchain's shared
// bootstrap infrastructure.
type BootstrapCheck struct {
	NeedsBootstrap bool
	Pending        []target.Target
}

// BootstrapDetector probes each target's account/region for the bootstrap
// version parameter. The probe is read-only.
type BootstrapDetector struct {
	Qualifier  string
	MinVersion int

	// NewClient builds a regional SSM client. Overridable in tests.
	NewClient func(ctx context.Context, t target.Target) (SSMParameterAPI, error)
}

func NewBootstrapDetector() *BootstrapDetector {
	return &BootstrapDetector{
		Qualifier:  DefaultBootstrapQualifier,
		MinVersion: MinBootstrapVersion,
		NewClient:  defaultSSMClient,
	}
}

func defaultSSMClient(ctx context.Context, t target.Target) (SSMParameterAPI, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(t.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return ssm.NewFromConfig(cfg), nil
}

// NeedsBootstrap checks every target. A target is pending when the version
// parameter is absent or below the minimum. A failed probe (for example no
// credentials) is an error, never silently treated as "needs bootstrap".
func (d *BootstrapDetector) NeedsBootstrap(ctx context.Context, targets []target.Target) (BootstrapCheck, error) {
	check := BootstrapCheck{}
	paramName := fmt.Sprintf("/cdk-bootstrap/%s/version", d.Qualifier)

	for _, t := range targets {
		client, err := d.NewClient(ctx, t)
		if err != nil {
			return BootstrapCheck{}, err
		}

		resp, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name: aws.String(paramName),
		})
		if err != nil {
			var notFound *ssmtypes.ParameterNotFound
			if errors.As(err, &notFound) {
				logging.Debug("bootstrap parameter absent", "target", t.Name, "parameter", paramName)
				check.Pending = append(check.Pending, t)
				continue
			}
			return BootstrapCheck{}, fmt.Errorf("failed to check bootstrap of %s (%s/%s): %w", t.Name, t.Account, t.Region, err)
		}

		if resp.Parameter == nil || resp.Parameter.Value == nil {
			check.Pending = append(check.Pending, t)
			continue
		}

		version, err := strconv.Atoi(*resp.Parameter.Value)
		if err != nil {
			return BootstrapCheck{}, fmt.Errorf("bootstrap version parameter of %s has non-numeric value %q", t.Name, *resp.Parameter.Value)
		}
		if version < d.MinVersion {
			logging.Debug("bootstrap outdated", "target", t.Name, "version", version, "min", d.MinVersion)
			check.Pending = append(check.Pending, t)
		}
	}

	check.NeedsBootstrap = len(check.Pending) > 0
	return check, nil
}
