package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_HasServe(t *testing.T) {
	cmd, _, err := mcpCmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, mcpServeCmd, cmd)
}

func TestMCPServeCmd_PortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_Long(t *testing.T) {
	assert.Contains(t, mcpServeCmd.Long, "docqa mcp serve")
	assert.Contains(t, mcpServeCmd.Long, "list_corpus")
}

func TestMCPServeCmd_NoConversationService(t *testing.T) {
	prev := newConversation
	newConversation = nil
	defer func() { newConversation = prev }()

	err := runMCPServe(mcpServeCmd, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "conversation service not configured")
}
