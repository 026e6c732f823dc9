package cli

import (
	"github.com/spf13/cobra"

	"github.com/agentctl-io/agentctl/internal/logging"
)

var rootLogLevel string

var rootCmd = &cobra.Command{
	Use:   "agentctl",
	Short: "Deploy agent applications to a managed cloud runtime",
	Long: `Agentctl scaffolds and deploys agent applications onto a managed cloud
agent runtime through an infrastructure-synthesis toolchain.

It keeps an authoritative per-target record of what has actually been
deployed, and converges cloud state to the declared project:
  • Declarative targets (account/region pairs) in a JSON registry
  • Synthesize once, then plan or deploy the frozen assembly
  • Deployed state written only after a fully successful deploy`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(func() {
		logging.Init(rootLogLevel)
	})
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(versionCmd)
}
