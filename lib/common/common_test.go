package common

import (
	"bytes"
	"testing"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]logger.LogLevel{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		"error":   logger.ERROR,
	}
	for in, want := range tests {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLogLevel("loud")
	assert.Error(t, err)
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	prev := output
	SetLogOutput(&buf)
	defer SetLogOutput(prev)

	l := CreateLogger("test")
	l.Debugf("hidden %d", 1)
	assert.Empty(t, buf.String(), "debug must be filtered at info level")

	l.Infof("visible %d", 2)
	assert.Contains(t, buf.String(), "visible 2")
	assert.Contains(t, buf.String(), `"component":"test"`)

	l.SetLevel(logger.ERROR)
	buf.Reset()
	l.Warningf("dropped")
	assert.Empty(t, buf.String())
}

func TestInitLoggersRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, InitLoggers("verbose"))
	assert.NoError(t, InitLoggers("warn"))
}

func TestConfigString(t *testing.T) {
	c := CLIConfig{
		Host:      HostConfig{PackageName: "com.example.app"},
		Mode:      "private",
		LogLevel:  "info",
		LogFormat: "console",
	}
	s := c.String()
	assert.Contains(t, s, "com.example.app")
	assert.Contains(t, s, "(xdg default)")
	assert.Contains(t, s, "(package name)")
	assert.Contains(t, s, "NAMESPACE")
}
