package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/ValentinKolb/sprefs/lib/common"
	"github.com/ValentinKolb/sprefs/lib/host"
	"github.com/ValentinKolb/sprefs/lib/prefs"
	"github.com/ValentinKolb/sprefs/lib/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupNamespaceFlags adds the flags selecting the namespace to a command
func SetupNamespaceFlags(cmd *cobra.Command) {
	key := "package"
	cmd.PersistentFlags().String(key, "", WrapString("Package name of the application owning the preferences (required)"))

	key = "data-dir"
	cmd.PersistentFlags().String(key, "", WrapString("Directory of the namespace files (default $XDG_DATA_HOME/<package>/shared_prefs)"))

	key = "namespace"
	cmd.PersistentFlags().String(key, "", WrapString("Name of the namespace, empty selects the package name"))

	key = "mode"
	cmd.PersistentFlags().String(key, "private", WrapString("Access mode (private, world-readable, world-writable, multi-process)"))

	key = "default-suffix"
	cmd.PersistentFlags().Bool(key, false, WrapString("Append _simple_preferences to the namespace name"))

	key = "shards"
	cmd.PersistentFlags().Int(key, 0, WrapString("Number of engine shards per namespace (0 = default)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("Log level (debug, info, warn, error)"))

	key = "log-format"
	cmd.PersistentFlags().String(key, "console", WrapString("Log format (console, json)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("sprefs")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetCLIConfig reads the cli configuration from viper
func GetCLIConfig() *common.CLIConfig {
	return &common.CLIConfig{
		Host: common.HostConfig{
			PackageName: viper.GetString("package"),
			DataDir:     viper.GetString("data-dir"),
			Shards:      viper.GetInt("shards"),
		},
		Namespace:        viper.GetString("namespace"),
		Mode:             viper.GetString("mode"),
		UseDefaultSuffix: viper.GetBool("default-suffix"),
		LogLevel:         viper.GetString("log-level"),
		LogFormat:        viper.GetString("log-format"),
	}
}

// SetupLogging configures the library loggers
func SetupLogging(conf *common.CLIConfig) error {
	switch conf.LogFormat {
	case "console", "":
	case "json":
		common.SetLogOutput(os.Stderr)
	default:
		return fmt.Errorf("invalid log format %s (expected console or json)", conf.LogFormat)
	}
	return common.InitLoggers(conf.LogLevel)
}

// InitPreferences creates the host for conf and installs the configured
// namespace as the process-wide preferences. The caller closes the host.
func InitPreferences(conf *common.CLIConfig) (*host.App, error) {
	if conf.Host.PackageName == "" {
		return nil, fmt.Errorf("no package name configured (use --package or SPREFS_PACKAGE)")
	}
	mode, err := store.ParseMode(conf.Mode)
	if err != nil {
		return nil, err
	}

	app, err := host.NewApp(conf.Host)
	if err != nil {
		return nil, err
	}

	err = prefs.NewBuilder().
		SetContext(app).
		SetNamespace(conf.Namespace).
		SetMode(mode).
		SetUseDefaultSuffix(conf.UseDefaultSuffix).
		Build()
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
