package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentctl-io/agentctl/internal/deploystate"
)

var targetsCmd = &cobra.Command{
	Use:   "targets [path]",
	Short: "List the declared deployment targets",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTargets,
}

func runTargets(cmd *cobra.Command, args []string) error {
	root, err := resolveProjectRoot(args)
	if err != nil {
		return err
	}

	registry, err := loadRegistry(root)
	if err != nil {
		return err
	}
	if len(registry.All()) == 0 {
		fmt.Printf("No targets declared. Add them to %s\n", registryPath(root))
		return nil
	}

	doc, err := deploystate.NewManager(statePath(root)).Read(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("%-20s %-14s %-16s %s\n", "NAME", "ACCOUNT", "REGION", "DEPLOYED")
	for _, t := range registry.All() {
		deployed := "-"
		if rec, ok := doc.Targets[t.Name]; ok {
			deployed = colorGreen + rec.StackName + colorReset
		}
		fmt.Printf("%-20s %-14s %-16s %s\n", t.Name, t.Account, t.Region, deployed)
	}
	return nil
}
