package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/sprefs/cmd/prefs"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "sprefs",
		Short: "simple typed preferences",
		Long: fmt.Sprintf(`sprefs (v%s)

A small library and command-line tool for typed key-value preferences,
stored per application in named namespace files.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of sprefs",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sprefs v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(prefs.PrefsCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
