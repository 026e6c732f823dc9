package toolchain

import (
	"context"
	"fmt"

	"github.com/agentctl-io/agentctl/internal/project"
	"github.com/agentctl-io/agentctl/internal/target"
)

// Synthesizer turns a project package into a deployable cloud assembly.
// This is the boundary to the external infrastructure-synthesis toolchain;
// the reconciler treats it as a black box.
type Synthesizer interface {
	Synthesize(ctx context.Context, pkg *project.Package, t target.Target) (Handle, error)
}

// Handle is the synthesized assembly, exclusively owned by one
// reconciliation run. It must be disposed exactly once per run; Dispose is
// idempotent and always safe to call.
type Handle interface {
	// StackNames lists the stacks the assembly will create or update.
	StackNames() []string

	// Deploy converges cloud state to the synthesized assembly.
	Deploy(ctx context.Context) error

	// Bootstrap provisions the toolchain's shared account/region
	// infrastructure for the given target.
	Bootstrap(ctx context.Context, t target.Target) error

	// Dispose releases the assembly. Idempotent.
	Dispose() error
}

// NoStacksError reports a synthesis that produced no stacks, which leaves
// nothing to plan or deploy.
type NoStacksError struct {
	Project string
}

func (e *NoStacksError) Error() string {
	return fmt.Sprintf("synthesis of project %q produced no stacks", e.Project)
}

// OutputsFetcher reads the raw key/value outputs of a deployed stack.
type OutputsFetcher interface {
	StackOutputs(ctx context.Context, region, stackName string) (map[string]string, error)
}
