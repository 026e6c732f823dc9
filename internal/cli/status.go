package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/agentctl-io/agentctl/internal/deploystate"
	"github.com/agentctl-io/agentctl/internal/runtime"
)

var (
	statusTarget string
	statusRemote bool
)

var statusCmd = &cobra.Command{
	Use:   "status [path]",
	Short: "Show what is deployed, per target",
	Long: `Renders the deployed-state document: recorded stacks and agent runtimes
per target. With --remote, each recorded runtime is additionally checked
against the agent runtime control plane for its live status.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusTarget, "target", "t", "", "Limit output to one target")
	statusCmd.Flags().BoolVar(&statusRemote, "remote", false, "Query the control plane for live runtime status")
}

func runStatus(cmd *cobra.Command, args []string) error {
	root, err := resolveProjectRoot(args)
	if err != nil {
		return err
	}

	doc, err := deploystate.NewManager(statePath(root)).Read(cmd.Context())
	if err != nil {
		return err
	}
	if len(doc.Targets) == 0 {
		fmt.Println("Nothing deployed yet.")
		return nil
	}

	registry, err := loadRegistry(root)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(doc.Targets))
	for name := range doc.Targets {
		if statusTarget != "" && name != statusTarget {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return fmt.Errorf("no deployed state recorded for target %q", statusTarget)
	}

	inspector := runtime.NewInspector()
	for _, name := range names {
		rec := doc.Targets[name]
		if err := renderTargetRecord(name, rec); err != nil {
			return err
		}

		if !statusRemote {
			continue
		}
		t, ok := registry.Lookup(name)
		if !ok {
			fmt.Printf("  %s(target no longer in registry, skipping live status)%s\n", colorYellow, colorReset)
			continue
		}
		agents, err := rec.Agents()
		if err != nil {
			return err
		}
		for agentName, rt := range agents {
			status, err := inspector.RuntimeStatus(cmd.Context(), t.Region, rt.RuntimeID)
			if err != nil {
				fmt.Printf("  %s: %slive status unavailable: %v%s\n", agentName, colorRed, err, colorReset)
				continue
			}
			fmt.Printf("  %s: %s%s%s\n", agentName, colorGreen, status, colorReset)
		}
	}
	return nil
}
