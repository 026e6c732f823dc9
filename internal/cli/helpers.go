package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/agentctl-io/agentctl/internal/deploystate"
	"github.com/agentctl-io/agentctl/internal/reconcile"
	"github.com/agentctl-io/agentctl/internal/target"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
)

// resolveProjectRoot returns the project directory: the first positional
// argument if given, the working directory otherwise.
func resolveProjectRoot(args []string) (string, error) {
	if len(args) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return wd, nil
	}

	absPath, err := filepath.Abs(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", args[0], err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat path %s: %w", args[0], err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", args[0])
	}
	return absPath, nil
}

func registryPath(root string) string {
	return filepath.Join(root, ".agentctl", "targets.json")
}

func statePath(root string) string {
	return filepath.Join(root, ".agentctl", "deployed-state.json")
}

func loadRegistry(root string) (*target.Registry, error) {
	return target.Load(registryPath(root))
}

// renderPlanResult prints a reconciliation result in plan/deploy form.
func renderPlanResult(result reconcile.PlanResult) {
	if result.Message != "" {
		fmt.Println(result.Message)
	}
	if len(result.StackNames) > 0 {
		fmt.Println("\nStacks:")
		for _, name := range result.StackNames {
			marker := " "
			if name == result.StackName {
				marker = colorGreen + "*" + colorReset
			}
			fmt.Printf("  %s %s\n", marker, name)
		}
	}
	if len(result.Outputs) > 0 {
		fmt.Println("\nOutputs:")
		keys := make([]string, 0, len(result.Outputs))
		for k := range result.Outputs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", k, result.Outputs[k])
		}
	}
}

// renderTargetRecord prints one target's slice of the deployed state.
func renderTargetRecord(name string, rec *deploystate.TargetRecord) error {
	fmt.Printf("%s%s%s (stack %s)\n", colorGreen, name, colorReset, rec.StackName)

	agents, err := rec.Agents()
	if err != nil {
		return err
	}
	if len(agents) == 0 {
		fmt.Println("  no agent runtimes recorded")
		return nil
	}

	names := make([]string, 0, len(agents))
	for n := range agents {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %s\n", n)
		fmt.Printf("    runtimeId:  %s\n", agents[n].RuntimeID)
		fmt.Printf("    runtimeArn: %s\n", agents[n].RuntimeARN)
	}
	return nil
}
