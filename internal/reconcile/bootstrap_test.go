package reconcile

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentctl-io/agentctl/internal/target"
)

type fakeSSM struct {
	// versions["*"] is the bootstrap version value; an empty map behaves as
	// an absent parameter.
	versions map[string]string
	err      error
}

func (f *fakeSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	version, ok := f.versions["*"]
	if !ok {
		return nil, &ssmtypes.ParameterNotFound{}
	}
	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{Value: aws.String(version)},
	}, nil
}

func detectorWith(f *fakeSSM) *BootstrapDetector {
	d := NewBootstrapDetector()
	d.NewClient = func(ctx context.Context, t target.Target) (SSMParameterAPI, error) {
		return f, nil
	}
	return d
}

var devTarget = target.Target{Name: "dev", Account: "111111111111", Region: "us-east-1"}

func TestNeedsBootstrapWhenParameterAbsent(t *testing.T) {
	d := detectorWith(&fakeSSM{versions: map[string]string{}})

	check, err := d.NeedsBootstrap(context.Background(), []target.Target{devTarget})
	require.NoError(t, err)
	assert.True(t, check.NeedsBootstrap)
	require.Len(t, check.Pending, 1)
	assert.Equal(t, "dev", check.Pending[0].Name)
}

func TestNeedsBootstrapWhenVersionTooOld(t *testing.T) {
	d := detectorWith(&fakeSSM{versions: map[string]string{"*": "5"}})

	check, err := d.NeedsBootstrap(context.Background(), []target.Target{devTarget})
	require.NoError(t, err)
	assert.True(t, check.NeedsBootstrap)
}

func TestNoBootstrapNeededWhenCurrent(t *testing.T) {
	d := detectorWith(&fakeSSM{versions: map[string]string{"*": "21"}})

	check, err := d.NeedsBootstrap(context.Background(), []target.Target{devTarget})
	require.NoError(t, err)
	assert.False(t, check.NeedsBootstrap)
	assert.Empty(t, check.Pending)
}

func TestBootstrapProbeFailurePropagates(t *testing.T) {
	d := detectorWith(&fakeSSM{err: apiError("ExpiredTokenException", "token expired")})

	_, err := d.NeedsBootstrap(context.Background(), []target.Target{devTarget})
	require.Error(t, err)

	// The failure must not be swallowed as "needs bootstrap"; classification
	// still recognizes the underlying condition.
	assert.Equal(t, CategoryExpiredCredentials, Classify(err).Category)
}

func TestBootstrapRejectsNonNumericVersion(t *testing.T) {
	d := detectorWith(&fakeSSM{versions: map[string]string{"*": "latest"}})

	_, err := d.NeedsBootstrap(context.Background(), []target.Target{devTarget})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-numeric")
}
