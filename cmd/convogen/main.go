// convogen - synthetic two-persona conversation generator
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/dialoglab/convogen/pkg/config"
	"github.com/dialoglab/convogen/pkg/logger"
)

var (
	version   = "dev"
	gitCommit string
	buildTime string
)

var configPath string

func formatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

// loadConfig reads the global config. Only the implicit default path may be
// missing; a file named with --config has to exist.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return config.LoadConfig(path)
}

func newRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "convogen",
		Short:         "Generate synthetic two-persona conversations from JSON interface files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			level := cfg.Logging.Level
			if logLevel != "" {
				level = logLevel
			}
			if level != "" {
				logger.SetLevel(logger.ParseLevel(level))
			}
			if cfg.Logging.File != "" {
				if err := logger.EnableFileLogging(cfg.Logging.File); err != nil {
					logger.WarnCF("cli", "File logging disabled", map[string]any{"error": err.Error()})
				}
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.convogen/config.json)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newGenerateCommand(),
		newDatasetCommand(),
		newExtractCommand(),
		newValidateCommand(),
		newModifiersCommand(),
		newChatCommand(),
		newRunsCommand(),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("convogen %s\n", formatVersion())
			if buildTime != "" {
				fmt.Printf("  Build: %s\n", buildTime)
			}
			fmt.Printf("  Go: %s\n", runtime.Version())
		},
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
