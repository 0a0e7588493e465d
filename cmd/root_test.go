package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"serve", "analyze", "lock"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "star-engine", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.Equal(t, version, rootCmd.Version)
	assert.NotEmpty(t, rootCmd.Version)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestAnalyzeCommand_Flags(t *testing.T) {
	for _, name := range []string{"alignment", "separation", "dt", "omega-truth", "resistance", "i1", "i4"} {
		require.NotNil(t, analyzeCmd.Flags().Lookup(name), "analyze command should have --%s flag", name)
	}
	assert.Equal(t, "1", analyzeCmd.Flags().Lookup("dt").DefValue)
}

func TestParseContextPairs(t *testing.T) {
	ctx, err := parseContextPairs([]string{"alignment=1.5", "separation=0.5"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"alignment": 1.5, "separation": 0.5}, ctx)
}

func TestParseContextPairs_Empty(t *testing.T) {
	ctx, err := parseContextPairs(nil)
	require.NoError(t, err)
	assert.Nil(t, ctx)
}

func TestParseContextPairs_Malformed(t *testing.T) {
	_, err := parseContextPairs([]string{"no-equals"})
	assert.Error(t, err)

	_, err = parseContextPairs([]string{"key=notanumber"})
	assert.Error(t, err)
}
