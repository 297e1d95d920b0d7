package ui

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/sonroyaalmerol/aurorabot/internal/config"
	"github.com/sonroyaalmerol/aurorabot/internal/player"
	"github.com/sonroyaalmerol/aurorabot/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexColor(t *testing.T) {
	for in, want := range map[string]string{
		"#FF0000":  "ff0000",
		"ff0000":   "ff0000",
		" #aBc123": "abc123",
	} {
		got, err := ParseHexColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "#fff", "gg0000", "##ff0000", "ff00001"} {
		_, err := ParseHexColor(in)
		assert.ErrorIs(t, err, ErrInvalidColor, in)
	}
}

func TestFormatReply(t *testing.T) {
	assert.Equal(t, "❌ | You're in AFK channel.", FormatReply("You're in AFK channel.", "❌"))
	assert.Equal(t, "plain", FormatReply("plain", ""))
}

func TestEmbedColorAndFooter(t *testing.T) {
	b := NewBuilder(config.EmbedConfig{HexColor: "7289da", ShowAuthor: true, SetTimestamp: false})
	user := &discordgo.User{ID: "1", Username: "aurora"}

	e := b.Embed(user, nil)
	assert.Equal(t, 0x7289da, e.Color)
	require.NotNil(t, e.Footer)
	assert.Empty(t, e.Timestamp)

	e = b.Embed(user, &repository.Guild{GuildID: "g1", EmbedColor: "ff0000"})
	assert.Equal(t, 0xff0000, e.Color)
}

func TestEmbedWithoutAuthor(t *testing.T) {
	b := NewBuilder(config.EmbedConfig{HexColor: "7289da", SetTimestamp: true})
	e := b.Embed(&discordgo.User{ID: "1", Username: "aurora"}, nil)
	assert.Nil(t, e.Footer)
	assert.NotEmpty(t, e.Timestamp)
}

func TestBuildQueueEmbed(t *testing.T) {
	b := NewBuilder(config.EmbedConfig{HexColor: "7289da"})
	p := player.NewPlayer("g1")

	_, err := b.BuildQueueEmbed(nil, nil, p, 1, 10)
	require.Error(t, err)

	for _, title := range []string{"now", "a", "b", "c"} {
		p.Add(player.Track{Query: title, Title: title, RequestedBy: "u1"}, false)
	}
	e, err := b.BuildQueueEmbed(nil, nil, p, 2, 2)
	require.NoError(t, err)
	assert.Contains(t, e.Description, "`3.` c")
	assert.Equal(t, "3 songs", e.Fields[0].Value)
	assert.Equal(t, "2 out of 2", e.Fields[1].Value)

	_, err = b.BuildQueueEmbed(nil, nil, p, 3, 2)
	require.Error(t, err)
}

func TestBuildPlayingEmbed(t *testing.T) {
	b := NewBuilder(config.EmbedConfig{HexColor: "7289da"})
	p := player.NewPlayer("g1")
	assert.Equal(t, "Nothing Playing", b.BuildPlayingEmbed(nil, nil, p).Title)

	p.Add(player.Track{Query: "https://example.com/x", Title: "x", RequestedBy: "u1"}, false)
	e := b.BuildPlayingEmbed(nil, nil, p)
	assert.Equal(t, "Now Playing", e.Title)
	assert.Contains(t, e.Description, "[x](https://example.com/x)")

	require.NoError(t, p.Pause())
	assert.Equal(t, "Paused", b.BuildPlayingEmbed(nil, nil, p).Title)
}

func TestBuildSettingsEmbed(t *testing.T) {
	b := NewBuilder(config.EmbedConfig{HexColor: "7289da"})
	g := &repository.Guild{GuildID: "g1", Settings: repository.Settings{
		repository.SettingQueuePageSize:      float64(5),
		repository.SettingLeaveIfNoListeners: true,
	}}
	e := b.BuildSettingsEmbed(nil, g)
	assert.Equal(t, "default", e.Fields[0].Value)
	assert.Equal(t, "5", e.Fields[1].Value)
	assert.Equal(t, "Yes", e.Fields[2].Value)
	assert.Equal(t, "No", e.Fields[3].Value)
}

func TestBuildQueueEmbedClampsPage(t *testing.T) {
	b := NewBuilder(config.EmbedConfig{HexColor: "7289da"})
	p := player.NewPlayer("g1")
	for _, title := range []string{"now", "a", "b"} {
		p.Add(player.Track{Query: title, Title: title, RequestedBy: "u1"}, false)
	}

	for _, page := range []int{0, -3} {
		e, err := b.BuildQueueEmbed(nil, nil, p, page, 10)
		require.NoError(t, err)
		assert.Contains(t, e.Description, "`1.` a")
		assert.NotContains(t, e.Description, "-")
		assert.Equal(t, "1 out of 1", e.Fields[1].Value)
	}
}
