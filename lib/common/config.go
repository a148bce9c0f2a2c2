package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Host configuration struct
// --------------------------------------------------------------------------

// HostConfig describes the application that owns the preference files
type HostConfig struct {
	// PackageName identifies the application, it is also the default namespace name
	PackageName string
	// DataDir is the directory holding the namespace files.
	// If empty, $XDG_DATA_HOME/<PackageName>/shared_prefs is used.
	DataDir string
	// Shards is the number of maple shards per namespace (0 = engine default)
	Shards int
}

// String returns a formatted string representation of the host configuration
func (c *HostConfig) String() string {
	var sb strings.Builder
	writeHostSection(&sb, c)
	return sb.String()
}

// --------------------------------------------------------------------------
// CLI configuration struct
// --------------------------------------------------------------------------

type CLIConfig struct {
	Host HostConfig

	// namespace selection
	Namespace        string
	Mode             string
	UseDefaultSuffix bool

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// String returns a formatted string representation of the cli configuration
func (c *CLIConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	writeHostSection(&sb, &c.Host)

	addSection("Namespace")
	namespace := c.Namespace
	if namespace == "" {
		namespace = "(package name)"
	}
	addField("Name", namespace)
	addField("Mode", c.Mode)
	addField("Default Suffix", strconv.FormatBool(c.UseDefaultSuffix))

	addSection("Logging")
	addField("Log Level", c.LogLevel)
	addField("Log Format", c.LogFormat)

	return sb.String()
}

func writeHostSection(sb *strings.Builder, c *HostConfig) {
	sb.WriteString("\nHOST\n")
	dataDir := c.DataDir
	if dataDir == "" {
		dataDir = "(xdg default)"
	}
	shards := "default"
	if c.Shards > 0 {
		shards = strconv.Itoa(c.Shards)
	}
	sb.WriteString(fmt.Sprintf("  %-22s: %s\n", "Package Name", c.PackageName))
	sb.WriteString(fmt.Sprintf("  %-22s: %s\n", "Data Directory", dataDir))
	sb.WriteString(fmt.Sprintf("  %-22s: %s\n", "Engine Shards", shards))
}
