package handlers

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandDefinitionsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range commandDefinitions() {
		assert.False(t, seen[c.Name], "duplicate command %q", c.Name)
		seen[c.Name] = true
		assert.NotEmpty(t, c.Description, c.Name)
	}
	for _, name := range []string{"play", "skip", "stop", "queue", "opts", "info", "profile", "owner"} {
		assert.True(t, seen[name], name)
	}
}

func TestVoiceRequirements(t *testing.T) {
	for name := range voiceRequirements {
		found := false
		for _, c := range commandDefinitions() {
			if c.Name == name {
				found = true
			}
		}
		assert.True(t, found, "requirements for unregistered command %q", name)
	}

	assert.Zero(t, voiceRequirements["play"])

	skip := voiceRequirements["skip"]
	assert.True(t, skip.RequireConnection)
	assert.True(t, skip.RequireQueue)
	assert.True(t, skip.RejectLastTrack)

	stop := voiceRequirements["stop"]
	assert.True(t, stop.RequireConnection)
	assert.True(t, stop.RequireQueue)
	assert.False(t, stop.RejectLastTrack)

	assert.True(t, voiceRequirements["shuffle"].RejectLastTrack)
}

func TestOptions(t *testing.T) {
	opts := options([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "page", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
		{Name: "immediate", Type: discordgo.ApplicationCommandOptionBoolean, Value: true},
		{Name: "query", Type: discordgo.ApplicationCommandOptionString, Value: "lofi"},
	})

	assert.Equal(t, 3, opts.Int("page", 1))
	assert.Equal(t, 1, opts.Int("missing", 1))
	assert.True(t, opts.Bool("immediate", false))
	assert.Equal(t, "lofi", opts.Str("query", ""))
	assert.Equal(t, "def", opts.Str("missing", "def"))
}

func TestInteractionUser(t *testing.T) {
	guildUser := &discordgo.User{ID: "g"}
	dmUser := &discordgo.User{ID: "d"}

	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{Member: &discordgo.Member{User: guildUser}}}
	assert.Equal(t, "g", userIDOf(i))

	i = &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{User: dmUser}}
	assert.Equal(t, "d", userIDOf(i))

	assert.Equal(t, "", userIDOf(nil))
}

func TestNonBotListeners(t *testing.T) {
	st := discordgo.NewState()
	human := &discordgo.User{ID: "u1"}
	other := &discordgo.User{ID: "u2"}
	bot := &discordgo.User{ID: "b1", Bot: true}
	require.NoError(t, st.GuildAdd(&discordgo.Guild{
		ID: "g1",
		Members: []*discordgo.Member{
			{GuildID: "g1", User: human},
			{GuildID: "g1", User: other},
			{GuildID: "g1", User: bot},
		},
		VoiceStates: []*discordgo.VoiceState{
			{GuildID: "g1", UserID: "u1", ChannelID: "vc1"},
			{GuildID: "g1", UserID: "b1", ChannelID: "vc1"},
			{GuildID: "g1", UserID: "u2", ChannelID: "vc2"},
		},
	}))

	assert.Equal(t, 1, nonBotListeners(st, "g1", "vc1"))
	assert.Equal(t, 1, nonBotListeners(st, "g1", "vc2"))
	assert.Equal(t, 0, nonBotListeners(st, "g1", "vc3"))
	assert.Equal(t, 0, nonBotListeners(st, "missing", "vc1"))
}

func TestQueuePageHasMinimum(t *testing.T) {
	for _, c := range commandDefinitions() {
		if c.Name != "queue" {
			continue
		}
		require.Len(t, c.Options, 1)
		require.NotNil(t, c.Options[0].MinValue)
		assert.InDelta(t, 1.0, *c.Options[0].MinValue, 0)
		return
	}
	t.Fatal("queue command not registered")
}
