package prefs

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/sprefs/cmd/util"
	"github.com/ValentinKolb/sprefs/lib/common"
	"github.com/ValentinKolb/sprefs/lib/host"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Logger is the logger of the cli commands
var Logger = logger.GetLogger(common.LoggerCLI)

var (
	app *host.App

	// PrefsCommands represents the preferences command group
	PrefsCommands = &cobra.Command{
		Use:                "prefs",
		Short:              "Inspect and edit preference namespaces",
		PersistentPreRunE:  setupPreferences,
		PersistentPostRunE: teardownPreferences,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	util.SetupNamespaceFlags(PrefsCommands)
	PrefsCommands.PersistentFlags().String("metrics-out", "", util.WrapString("Write the metrics of the run in Prometheus format to this file (- for stdout)"))

	// Add subcommands
	PrefsCommands.AddCommand(getCmd)
	PrefsCommands.AddCommand(putCmd)
	PrefsCommands.AddCommand(removeCmd)
	PrefsCommands.AddCommand(containsCmd)
	PrefsCommands.AddCommand(listCmd)
	PrefsCommands.AddCommand(clearCmd)
	PrefsCommands.AddCommand(infoCmd)
	PrefsCommands.AddCommand(exportCmd)
	PrefsCommands.AddCommand(importCmd)
	PrefsCommands.AddCommand(perfTestCmd)
}

// setupPreferences installs the configured namespace as the process-wide preferences
func setupPreferences(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	conf := util.GetCLIConfig()
	if err := util.SetupLogging(conf); err != nil {
		return err
	}

	var err error
	app, err = util.InitPreferences(conf)
	if err != nil {
		return err
	}
	Logger.Debugf("running %s on package %s (data dir %s)", cmd.CommandPath(), conf.Host.PackageName, app.DataDir())
	return nil
}

// teardownPreferences flushes and closes all namespaces and writes the metrics if requested
func teardownPreferences(_ *cobra.Command, _ []string) error {
	if app != nil {
		if err := app.Close(); err != nil {
			Logger.Errorf("closing namespaces failed: %v", err)
			return err
		}
	}

	out := viper.GetString("metrics-out")
	switch out {
	case "":
		return nil
	case "-":
		metrics.WritePrometheus(os.Stdout, false)
		return nil
	default:
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create metrics file: %w", err)
		}
		defer f.Close()
		metrics.WritePrometheus(f, false)
		Logger.Infof("wrote metrics to %s", out)
		return nil
	}
}
