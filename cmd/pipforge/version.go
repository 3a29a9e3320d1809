package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pipforge/pipforge/pkg/buildinfo"
	"github.com/pipforge/pipforge/pkg/cmd"
)

func versionMain(command *cobra.Command, arguments []string) error {
	fmt.Println(buildinfo.Version)
	return nil
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run:   cmd.Mainify(versionMain),
}

func init() {
	versionCommand.Flags().SortFlags = false
}
