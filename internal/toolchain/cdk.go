package toolchain

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/agentctl-io/agentctl/internal/logging"
	"github.com/agentctl-io/agentctl/internal/project"
	"github.com/agentctl-io/agentctl/internal/target"
)

// CDKCLI drives the AWS CDK command-line toolchain. Synthesis writes a cloud
// assembly into a temp directory owned by the returned handle.
type CDKCLI struct {
	Bin string
}

func NewCDKCLI() *CDKCLI {
	return &CDKCLI{Bin: "cdk"}
}

func (c *CDKCLI) Synthesize(ctx context.Context, pkg *project.Package, t target.Target) (Handle, error) {
	assemblyDir, err := os.MkdirTemp("", "agentctl-assembly-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create assembly directory: %w", err)
	}

	h := &cdkHandle{
		bin:         c.Bin,
		projectRoot: pkg.Root,
		assemblyDir: assemblyDir,
		env: []string{
			"CDK_DEFAULT_ACCOUNT=" + t.Account,
			"CDK_DEFAULT_REGION=" + t.Region,
		},
	}

	logging.Debug("synthesizing cloud assembly", "project", pkg.Name, "target", t.Name, "dir", assemblyDir)
	if _, err := h.run(ctx, "synth", "--all", "--output", assemblyDir); err != nil {
		h.Dispose()
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	stacks, err := readAssemblyStacks(assemblyDir)
	if err != nil {
		h.Dispose()
		return nil, err
	}
	if len(stacks) == 0 {
		h.Dispose()
		return nil, &NoStacksError{Project: pkg.Name}
	}
	h.stacks = stacks

	return h, nil
}

// cdkHandle wraps one synthesized cloud assembly. All commands run against
// the frozen assembly, not the project source, so the deploy matches what
// was synthesized even if the project changes mid-run.
type cdkHandle struct {
	bin         string
	projectRoot string
	assemblyDir string
	env         []string
	stacks      []string

	disposeOnce sync.Once
	disposeErr  error
}

func (h *cdkHandle) StackNames() []string {
	return h.stacks
}

func (h *cdkHandle) Deploy(ctx context.Context) error {
	args := []string{"deploy", "--all", "--app", h.assemblyDir, "--require-approval", "never", "--ci"}
	if _, err := h.run(ctx, args...); err != nil {
		return fmt.Errorf("deploy failed: %w", err)
	}
	return nil
}

func (h *cdkHandle) Bootstrap(ctx context.Context, t target.Target) error {
	env := fmt.Sprintf("aws://%s/%s", t.Account, t.Region)
	if _, err := h.run(ctx, "bootstrap", env, "--app", h.assemblyDir); err != nil {
		return fmt.Errorf("bootstrap of %s failed: %w", env, err)
	}
	return nil
}

func (h *cdkHandle) Dispose() error {
	h.disposeOnce.Do(func() {
		if h.assemblyDir != "" {
			h.disposeErr = os.RemoveAll(h.assemblyDir)
		}
	})
	return h.disposeErr
}

func (h *cdkHandle) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, h.bin, args...)
	cmd.Dir = h.projectRoot
	cmd.Env = append(os.Environ(), h.env...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s %s: %w\n%s", h.bin, args[0], err, tail(string(out), 20))
	}
	return string(out), nil
}

// readAssemblyStacks lists the CloudFormation stack artifacts declared in
// the cloud assembly manifest.
func readAssemblyStacks(assemblyDir string) ([]string, error) {
	raw, err := os.ReadFile(filepath.Join(assemblyDir, "manifest.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read cloud assembly manifest: %w", err)
	}

	var manifest struct {
		Artifacts map[string]struct {
			Type string `json:"type"`
		} `json:"artifacts"`
	}
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse cloud assembly manifest: %w", err)
	}

	var stacks []string
	for name, artifact := range manifest.Artifacts {
		if artifact.Type == "aws:cloudformation:stack" {
			stacks = append(stacks, name)
		}
	}
	sort.Strings(stacks)
	return stacks, nil
}

func tail(s string, lines int) string {
	all := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(all) > lines {
		all = all[len(all)-lines:]
	}
	return strings.Join(all, "\n")
}
