package target

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegistry(t *testing.T) {
	raw := []byte(`[
		{"name": "dev", "account": "111111111111", "region": "us-east-1"},
		{"name": "prod", "account": "222222222222", "region": "eu-west-1"}
	]`)

	reg, err := Parse(raw)
	require.NoError(t, err)

	dev, ok := reg.Lookup("dev")
	require.True(t, ok)
	assert.Equal(t, "111111111111", dev.Account)
	assert.Equal(t, "us-east-1", dev.Region)

	_, ok = reg.Lookup("staging")
	assert.False(t, ok)

	assert.Len(t, reg.All(), 2)
}

func TestParseRegistryRejectsDuplicateNames(t *testing.T) {
	raw := []byte(`[
		{"name": "dev", "account": "111111111111", "region": "us-east-1"},
		{"name": "dev", "account": "222222222222", "region": "us-west-2"}
	]`)

	_, err := Parse(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate target name")
}

func TestParseRegistryRejectsBadAccount(t *testing.T) {
	for _, account := range []string{"", "12345", "12345678901a"} {
		_, err := Parse([]byte(`[{"name": "dev", "account": "` + account + `", "region": "us-east-1"}]`))
		require.Error(t, err, "account %q should be rejected", account)
		assert.Contains(t, err.Error(), "12-digit")
	}
}

func TestLoadMissingRegistryIsEmpty(t *testing.T) {
	reg, err := Load(filepath.Join(t.TempDir(), "targets.json"))
	require.NoError(t, err)
	assert.Empty(t, reg.All())
}

func TestLoadRegistryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "dev", "account": "111111111111", "region": "us-east-1"}]`), 0644))

	reg, err := Load(path)
	require.NoError(t, err)
	_, ok := reg.Lookup("dev")
	assert.True(t, ok)
}
