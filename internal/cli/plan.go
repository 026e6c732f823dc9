package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentctl-io/agentctl/internal/deploystate"
	"github.com/agentctl-io/agentctl/internal/project"
	"github.com/agentctl-io/agentctl/internal/reconcile"
	"github.com/agentctl-io/agentctl/internal/toolchain"
)

var (
	planTarget string
	planDeploy bool
	planYes    bool
)

var planCmd = &cobra.Command{
	Use:   "plan [path]",
	Short: "Synthesize the project for a target, optionally deploying it",
	Long: `Synthesizes the project into deployable stacks for one deployment target.

With --deploy, converges the target's cloud state to the synthesized stacks
and records the resulting agent runtimes in the deployed-state document.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planTarget, "target", "t", "", "Deployment target name (required)")
	planCmd.Flags().BoolVar(&planDeploy, "deploy", false, "Deploy the synthesized stacks after planning")
	planCmd.Flags().BoolVarP(&planYes, "yes", "y", false, "Auto-confirm bootstrap provisioning if the target needs it")
	planCmd.MarkFlagRequired("target")
}

func runPlan(cmd *cobra.Command, args []string) error {
	root, err := resolveProjectRoot(args)
	if err != nil {
		return err
	}

	fmt.Print("Loading project... ")
	pkg, err := project.Load(root)
	if err != nil {
		fmt.Println("FAILED")
		return err
	}
	fmt.Println("OK")

	registry, err := loadRegistry(root)
	if err != nil {
		return err
	}

	rec := &reconcile.Reconciler{
		Registry:      registry,
		Project:       pkg,
		Validator:     project.Preflight{},
		Synthesizer:   toolchain.NewCDKCLI(),
		Outputs:       toolchain.NewCFNOutputs(),
		Bootstrap:     reconcile.NewBootstrapDetector(),
		Deployability: reconcile.NewDeployabilityChecker(),
		Credentials:   reconcile.NewCredentialCheck(),
		State:         deploystate.NewManager(statePath(root)),
	}

	result := rec.Plan(cmd.Context(), reconcile.PlanRequest{
		TargetName:  planTarget,
		Deploy:      planDeploy,
		AutoConfirm: planYes,
	})

	if !result.Success {
		return errors.New(result.Message)
	}
	renderPlanResult(result)
	return nil
}
