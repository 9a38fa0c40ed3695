package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seastack/hostpanel/internal/app"
	"github.com/seastack/hostpanel/internal/config"
	"github.com/seastack/hostpanel/internal/provision"
	"github.com/seastack/hostpanel/pkg/logger"
)

const version = "1.0.0"

var (
	flagProvider string
	flagVerbose  bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "hostpanelctl",
		Short:        "hostpanelctl drives hosting provisioning operations against a configured vendor",
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "Vendor adapter to use (enhance, twentyi)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")

	rootCmd.AddCommand(
		newCreateCmd(),
		newSuspendCmd(),
		newUnsuspendCmd(),
		newTerminateCmd(),
		newInfoCmd(),
		newUsageCmd(),
		newChangePasswordCmd(),
		newChangePackageCmd(),
		newLoginURLCmd(),
	)

	return rootCmd
}

// provisioner loads configuration, builds the vendor registry, and returns
// the adapter selected by --provider.
func provisioner() (provision.Provisioner, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logLevel := "warn"
	if flagVerbose {
		logLevel = "debug"
	}
	log := logger.New(logLevel, "console")

	manager := app.NewManager(cfg, log)
	return manager.Get(flagProvider)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
