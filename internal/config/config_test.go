package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMap_Defaults(t *testing.T) {
	cfg, err := LoadFromMap(map[string]string{"DISCORD_TOKEN": "tok"})
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.DiscordToken)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Empty(t, cfg.Owners)
	assert.Equal(t, "7289da", cfg.Embed.HexColor)
	assert.True(t, cfg.Embed.ShowAuthor)
	assert.True(t, cfg.Embed.SetTimestamp)
	assert.Equal(t, "❌", cfg.Emojis.CrossMark)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.RegisterCommandsOnBot)
	assert.InDelta(t, 1.0, cfg.CommandRate, 0)
	assert.Equal(t, 5, cfg.CommandBurst)
}

func TestLoadFromMap_MissingToken(t *testing.T) {
	_, err := LoadFromMap(map[string]string{})
	require.Error(t, err)

	var cerr ErrConfig
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Error(), "DISCORD_TOKEN")
}

func TestLoadFromMap_OwnersAndColor(t *testing.T) {
	cfg, err := LoadFromMap(map[string]string{
		"DISCORD_TOKEN":     "tok",
		"OWNERS":            "111, 222,,333",
		"EMBED_COLOR":       "#FF00aa",
		"EMBED_SHOW_AUTHOR": "false",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"111", "222", "333"}, cfg.Owners)
	assert.Equal(t, "ff00aa", cfg.Embed.HexColor)
	assert.False(t, cfg.Embed.ShowAuthor)
}

func TestLoadFromMap_InvalidColor(t *testing.T) {
	_, err := LoadFromMap(map[string]string{
		"DISCORD_TOKEN": "tok",
		"EMBED_COLOR":   "blurple",
	})
	require.Error(t, err)
	assert.IsType(t, ErrConfig(""), err)
}

func TestLoadFromMap_OwnersDeduplicated(t *testing.T) {
	cfg, err := LoadFromMap(map[string]string{
		"DISCORD_TOKEN": "tok",
		"OWNERS":        "1,2,1, 2,3",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, cfg.Owners)
}
