package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pipforge/pipforge/pkg/buildinfo"
)

func rootMain(command *cobra.Command, arguments []string) {
	if rootConfiguration.version {
		fmt.Println(buildinfo.Version)
		return
	}
	command.Help()
}

var rootCommand = &cobra.Command{
	Use:   "pipforge",
	Short: "pipforge orchestrates content-addressed, cacheable, distributable builds",
	Run:   rootMain,
}

var rootConfiguration struct {
	help    bool
	version bool
}

func init() {
	flags := rootCommand.Flags()
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")
	flags.BoolVarP(&rootConfiguration.version, "version", "V", false, "Show version information")

	cobra.EnableCommandSorting = false
	cobra.MousetrapHelpText = ""

	rootCommand.AddCommand(
		buildCommand,
		orchestrateCommand,
		versionCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
