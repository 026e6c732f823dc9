package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentctl-io/agentctl/internal/deploystate"
	"github.com/agentctl-io/agentctl/internal/runtime"
)

var (
	logsTarget string
	logsAgent  string
	logsSince  time.Duration
)

var logsCmd = &cobra.Command{
	Use:   "logs [path]",
	Short: "Print recent logs of a deployed agent runtime",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().StringVarP(&logsTarget, "target", "t", "", "Deployment target name (required)")
	logsCmd.Flags().StringVarP(&logsAgent, "agent", "a", "", "Agent name (required)")
	logsCmd.Flags().DurationVar(&logsSince, "since", time.Hour, "How far back to read logs")
	logsCmd.MarkFlagRequired("target")
	logsCmd.MarkFlagRequired("agent")
}

func runLogs(cmd *cobra.Command, args []string) error {
	root, err := resolveProjectRoot(args)
	if err != nil {
		return err
	}

	registry, err := loadRegistry(root)
	if err != nil {
		return err
	}
	t, ok := registry.Lookup(logsTarget)
	if !ok {
		return fmt.Errorf("target %q not found in the target registry", logsTarget)
	}

	doc, err := deploystate.NewManager(statePath(root)).Read(cmd.Context())
	if err != nil {
		return err
	}
	rec, ok := doc.Targets[logsTarget]
	if !ok {
		return fmt.Errorf("nothing deployed to target %q yet", logsTarget)
	}
	agents, err := rec.Agents()
	if err != nil {
		return err
	}
	rt, ok := agents[logsAgent]
	if !ok {
		return fmt.Errorf("agent %q has no recorded runtime on target %q", logsAgent, logsTarget)
	}

	return runtime.NewLogTailer().Tail(cmd.Context(), t.Region, rt.RuntimeID, logsSince, os.Stdout)
}
