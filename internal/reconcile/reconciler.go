package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/agentctl-io/agentctl/internal/deploystate"
	"github.com/agentctl-io/agentctl/internal/logging"
	"github.com/agentctl-io/agentctl/internal/project"
	"github.com/agentctl-io/agentctl/internal/target"
	"github.com/agentctl-io/agentctl/internal/toolchain"
)

// PlanRequest is one reconciliation run: plan the named target, optionally
// deploying the result.
type PlanRequest struct {
	TargetName  string
	Deploy      bool
	AutoConfirm bool
}

// PlanResult is the outcome of a run. No error escapes Plan as a panic or
// return value; failures are carried here.
type PlanResult struct {
	Success    bool
	TargetName string
	StackNames []string
	StackName  string
	Outputs    map[string]string
	Message    string
	Err        error
}

// Reconciler sequences resolve → validate → synthesize → bootstrap-check →
// deploy → parse-outputs → persist against the external toolchain. One
// instance serves one run; every step blocks until its external operation
// finishes.
type Reconciler struct {
	Registry      *target.Registry
	Project       *project.Package
	Validator     project.Validator
	Synthesizer   toolchain.Synthesizer
	Outputs       toolchain.OutputsFetcher
	Bootstrap     *BootstrapDetector
	Deployability *DeployabilityChecker
	Credentials   *CredentialCheck
	State         deploystate.Backend
}

// Plan runs the full reconciliation state machine for one target.
func (r *Reconciler) Plan(ctx context.Context, req PlanRequest) PlanResult {
	t, ok := r.Registry.Lookup(req.TargetName)
	if !ok {
		return r.fail(req, fmt.Errorf("target %q not found in the target registry; run `agentctl targets` to list known targets", req.TargetName))
	}
	logging.Info("reconciling target", "target", t.Name, "account", t.Account, "region", t.Region, "deploy", req.Deploy)

	if r.Credentials != nil {
		if err := r.Credentials.Verify(ctx, t); err != nil {
			return r.fail(req, err)
		}
	}
	if err := r.Validator.Validate(ctx, r.Project); err != nil {
		return r.fail(req, fmt.Errorf("project validation failed: %w", err))
	}

	handle, err := r.Synthesizer.Synthesize(ctx, r.Project, t)
	if err != nil {
		return r.fail(req, err)
	}
	// The handle is owned by this run and must be released on every exit
	// path, success or failure. Dispose is idempotent.
	defer handle.Dispose()

	stacks := handle.StackNames()
	logging.Info("synthesized stacks", "target", t.Name, "stacks", stacks)

	if !req.Deploy {
		return PlanResult{
			Success:    true,
			TargetName: t.Name,
			StackNames: stacks,
			Message:    fmt.Sprintf("Synthesized %d stack(s) for target %q. Re-run with --deploy to deploy them.", len(stacks), t.Name),
		}
	}

	// The deployed-state document is read once per run and written once, at
	// the end, after a fully successful deploy and output parse.
	if err := r.State.Lock(); err != nil {
		return r.fail(req, err)
	}
	defer r.State.Unlock()

	stateDoc, err := r.State.Read(ctx)
	if err != nil {
		return r.fail(req, err)
	}

	check, err := r.Bootstrap.NeedsBootstrap(ctx, []target.Target{t})
	if err != nil {
		return r.fail(req, err)
	}
	if check.NeedsBootstrap {
		if !req.AutoConfirm {
			return r.fail(req, fmt.Errorf("target %q (%s/%s) is not bootstrapped for deployments; re-run with --yes to provision the bootstrap infrastructure", t.Name, t.Account, t.Region))
		}
		for _, pending := range check.Pending {
			logging.Info("bootstrapping target environment", "target", pending.Name, "account", pending.Account, "region", pending.Region)
			if err := handle.Bootstrap(ctx, pending); err != nil {
				return r.fail(req, err)
			}
		}
	}

	deployability, err := r.Deployability.Check(ctx, t.Region, stacks)
	if err != nil {
		return r.fail(req, err)
	}
	if !deployability.CanDeploy {
		return r.fail(req, errors.New(deployability.Message))
	}

	logging.Info("deploying", "target", t.Name, "stacks", stacks)
	if err := handle.Deploy(ctx); err != nil {
		return r.fail(req, err)
	}

	outputs, err := r.collectOutputs(ctx, t.Region, stacks)
	if err != nil {
		return r.fail(req, err)
	}
	agents := ParseAgentOutputs(outputs, r.Project.AgentNames(), stacks[0])

	merged := deploystate.Merge(stateDoc, t.Name, stacks[0], agents)
	if err := r.State.Write(ctx, merged); err != nil {
		return r.fail(req, err)
	}

	return PlanResult{
		Success:    true,
		TargetName: t.Name,
		StackNames: stacks,
		StackName:  stacks[0],
		Outputs:    outputs,
		Message:    fmt.Sprintf("Deployed %d agent runtime(s) to target %q (stack %s).", len(agents), t.Name, stacks[0]),
	}
}

// collectOutputs merges the raw outputs of every synthesized stack. The
// first stack is the primary one recorded in deployed state; later stacks
// win on key collisions.
func (r *Reconciler) collectOutputs(ctx context.Context, region string, stacks []string) (map[string]string, error) {
	merged := make(map[string]string)
	for _, stack := range stacks {
		outputs, err := r.Outputs.StackOutputs(ctx, region, stack)
		if err != nil {
			return nil, err
		}
		for k, v := range outputs {
			merged[k] = v
		}
	}
	return merged, nil
}

// fail converts any failure into a result value. External errors pass
// through the classifier so the message carries retry or re-auth guidance;
// unclassified errors surface verbatim.
func (r *Reconciler) fail(req PlanRequest, err error) PlanResult {
	classified := Classify(err)
	message := classified.Error()
	if guidance := classified.Guidance(); guidance != "" {
		message = fmt.Sprintf("%s %s", message, guidance)
	}
	logging.Error("reconciliation failed", "target", req.TargetName, "category", string(classified.Category), "error", err)
	return PlanResult{
		TargetName: req.TargetName,
		Message:    message,
		Err:        classified,
	}
}
