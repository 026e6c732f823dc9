package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T, manifest string, files ...string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(manifest), 0644))
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("# agent entry\n"), 0644))
	}
	return root
}

func TestLoadAndValidate(t *testing.T) {
	root := writeProject(t, `{
		"name": "support-bot",
		"agents": [
			{"name": "assistant", "entry": "agents/assistant/main.py", "framework": "strands"},
			{"name": "reviewer", "entry": "agents/reviewer/main.py"}
		]
	}`, "agents/assistant/main.py", "agents/reviewer/main.py")

	pkg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "support-bot", pkg.Name)
	assert.Equal(t, []string{"assistant", "reviewer"}, pkg.AgentNames())

	require.NoError(t, Preflight{}.Validate(context.Background(), pkg))
}

func TestValidateMissingEntry(t *testing.T) {
	root := writeProject(t, `{
		"name": "support-bot",
		"agents": [{"name": "assistant", "entry": "agents/assistant/main.py"}]
	}`)

	pkg, err := Load(root)
	require.NoError(t, err)

	err = Preflight{}.Validate(context.Background(), pkg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry point")
}

func TestValidateDuplicateAgents(t *testing.T) {
	root := writeProject(t, `{
		"name": "support-bot",
		"agents": [{"name": "assistant"}, {"name": "assistant"}]
	}`)

	pkg, err := Load(root)
	require.NoError(t, err)

	err = Preflight{}.Validate(context.Background(), pkg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twice")
}

func TestLoadMissingManifest(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}
