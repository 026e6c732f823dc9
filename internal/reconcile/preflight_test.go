package reconcile

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSTS struct {
	account string
	err     error
}

func (f *fakeSTS) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sts.GetCallerIdentityOutput{Account: aws.String(f.account)}, nil
}

func credentialCheckWith(f *fakeSTS) *CredentialCheck {
	c := NewCredentialCheck()
	c.NewClient = func(ctx context.Context, region string) (CallerIdentityAPI, error) {
		return f, nil
	}
	return c
}

func TestVerifyMatchingAccount(t *testing.T) {
	c := credentialCheckWith(&fakeSTS{account: "111111111111"})
	require.NoError(t, c.Verify(context.Background(), devTarget))
}

func TestVerifyAccountMismatch(t *testing.T) {
	c := credentialCheckWith(&fakeSTS{account: "999999999999"})

	err := c.Verify(context.Background(), devTarget)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "999999999999")
	assert.Contains(t, err.Error(), "111111111111")

	// A wrong account is an authorization problem, never an expiry one
	assert.Equal(t, CategoryUnclassified, Classify(err).Category)
}

func TestVerifyNoCredentials(t *testing.T) {
	c := credentialCheckWith(&fakeSTS{err: apiError("NoCredentialProviders", "no valid providers in chain")})

	err := c.Verify(context.Background(), devTarget)
	require.Error(t, err)
	assert.Equal(t, CategoryNoCredentials, Classify(err).Category)
}
