package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := GetRootCmd()

	assert.Equal(t, "bloom", cmd.Use)
	assert.Equal(t, version, cmd.Version)

	flag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	flag = cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, flag)
}

func TestServeCommandRegistered(t *testing.T) {
	names := []string{}
	for _, c := range GetRootCmd().Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
}
