package checks

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayback struct {
	connected map[string]bool
	queues    map[string]int
}

func (f fakePlayback) HasConnection(guildID string) bool { return f.connected[guildID] }

func (f fakePlayback) QueueLength(guildID string) (int, bool) {
	n, ok := f.queues[guildID]
	return n, ok
}

func newState(t *testing.T, g *discordgo.Guild) *discordgo.State {
	t.Helper()
	st := discordgo.NewState()
	st.User = &discordgo.User{ID: "bot"}
	require.NoError(t, st.GuildAdd(g))
	return st
}

func TestGather(t *testing.T) {
	st := newState(t, &discordgo.Guild{
		ID:           "g1",
		AfkChannelID: "afk",
		VoiceStates: []*discordgo.VoiceState{
			{GuildID: "g1", UserID: "u1", ChannelID: "vc1", SelfDeaf: true},
			{GuildID: "g1", UserID: "bot", ChannelID: "vc2"},
			{GuildID: "g1", UserID: "u3", ChannelID: "vc1", Deaf: true},
		},
	})
	pb := fakePlayback{
		connected: map[string]bool{"g1": true},
		queues:    map[string]int{"g1": 3},
	}

	v := Gather(st, pb, "g1", "u1")

	assert.Equal(t, "vc1", v.ChannelID)
	assert.Equal(t, "afk", v.AFKChannelID)
	assert.True(t, v.SelfDeaf)
	assert.False(t, v.ServerDeaf)
	assert.Equal(t, "vc2", v.BotChannelID)
	assert.True(t, v.HasConnection)
	assert.True(t, v.QueueExists)
	assert.Equal(t, 3, v.QueueLength)

	f := NewPipeline().Evaluate(v, Options{})
	require.NotNil(t, f)
	assert.Equal(t, ReasonSelfDeafened, f.Reason)
}

func TestGather_UnknownGuild(t *testing.T) {
	st := newState(t, &discordgo.Guild{ID: "g1"})

	v := Gather(st, fakePlayback{}, "other", "u1")

	assert.Empty(t, v.ChannelID)
	assert.False(t, v.QueueExists)
	f := NewPipeline().Evaluate(v, Options{})
	require.NotNil(t, f)
	assert.Equal(t, ReasonNotInVoice, f.Reason)
}
