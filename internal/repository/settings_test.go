package repository

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_TypedReaders(t *testing.T) {
	var s Settings
	require.NoError(t, json.Unmarshal([]byte(`{"n": 12, "f": 1.5, "b": true, "s": "x"}`), &s))

	assert.Equal(t, 12, s.Int("n", 0))
	assert.Equal(t, 7, s.Int("f", 7), "non-integral numbers fall back")
	assert.Equal(t, 7, s.Int("missing", 7))
	assert.True(t, s.Bool("b", false))
	assert.True(t, s.Bool("s", true), "wrong type falls back")
	assert.Equal(t, "x", s.String("s", ""))
}

func TestSettings_MergeDoesNotAlias(t *testing.T) {
	base := Settings{"a": 1, "b": 2}
	out := base.Merge(Settings{"b": nil, "c": 3})

	assert.Equal(t, Settings{"a": 1, "c": 3}, out)
	assert.Equal(t, Settings{"a": 1, "b": 2}, base)
}

func TestGuildColor(t *testing.T) {
	g := &Guild{EmbedColor: "7289da"}
	c, ok := g.Color()
	assert.True(t, ok)
	assert.Equal(t, 0x7289da, c)

	g.EmbedColor = "zzzzzz"
	_, ok = g.Color()
	assert.False(t, ok)

	var nilGuild *Guild
	_, ok = nilGuild.Color()
	assert.False(t, ok)
}

func TestGuildQueuePageSizeBounds(t *testing.T) {
	g := &Guild{Settings: Settings{SettingQueuePageSize: 99}}
	assert.Equal(t, DefaultQueuePageSize, g.QueuePageSize())

	g.Settings[SettingQueuePageSize] = 5
	assert.Equal(t, 5, g.QueuePageSize())
}
