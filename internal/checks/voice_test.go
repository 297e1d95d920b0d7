package checks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingResponder struct {
	messages []string
	err      error
}

func (r *recordingResponder) RespondEphemeral(_ context.Context, msg string) error {
	r.messages = append(r.messages, msg)
	return r.err
}

func healthy() VoiceState {
	return VoiceState{
		GuildID:      "g1",
		UserID:       "u1",
		ChannelID:    "vc-x",
		AFKChannelID: "vc-afk",
	}
}

func TestPipeline_ShortCircuitsOnFirstFailure(t *testing.T) {
	p := NewPipeline()
	v := healthy()
	v.ChannelID = ""
	v.SelfDeaf = true

	resp := &recordingResponder{}
	ok := p.Check(context.Background(), v, Options{}, resp)

	assert.False(t, ok)
	require.Len(t, resp.messages, 1)
	assert.Equal(t, DefaultMessage(ReasonNotInVoice), resp.messages[0])
}

func TestPipeline_SuccessSendsNothing(t *testing.T) {
	p := NewPipeline()
	resp := &recordingResponder{}

	ok := p.Check(context.Background(), healthy(), Options{}, resp)

	assert.True(t, ok)
	assert.Empty(t, resp.messages)
}

func TestPipeline_Order(t *testing.T) {
	p := NewPipeline()

	tests := []struct {
		name   string
		mutate func(*VoiceState)
		opts   Options
		want   Reason
	}{
		{"not in voice", func(v *VoiceState) { v.ChannelID = "" }, Options{}, ReasonNotInVoice},
		{"afk beats deafen", func(v *VoiceState) { v.ChannelID = "vc-afk"; v.SelfDeaf = true }, Options{}, ReasonInAFKChannel},
		{"self deaf beats server deaf", func(v *VoiceState) { v.SelfDeaf = true; v.ServerDeaf = true }, Options{}, ReasonSelfDeafened},
		{"server deaf", func(v *VoiceState) { v.ServerDeaf = true }, Options{}, ReasonServerDeafened},
		{"bot elsewhere", func(v *VoiceState) { v.BotChannelID = "vc-y" }, Options{RequireConnection: true}, ReasonOtherChannel},
		{"no connection", func(v *VoiceState) {}, Options{RequireConnection: true, RequireQueue: true}, ReasonNoConnection},
		{"queue empty", func(v *VoiceState) { v.HasConnection = true }, Options{RequireConnection: true, RequireQueue: true}, ReasonQueueEmpty},
		{"last track without queue", func(v *VoiceState) {}, Options{RejectLastTrack: true}, ReasonLastTrack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := healthy()
			tt.mutate(&v)
			f := p.Evaluate(v, tt.opts)
			require.NotNil(t, f)
			assert.Equal(t, tt.want, f.Reason)
		})
	}
}

func TestPipeline_NoAFKChannelConfigured(t *testing.T) {
	p := NewPipeline()
	v := healthy()
	v.AFKChannelID = ""

	assert.Nil(t, p.Evaluate(v, Options{}))
}

func TestPipeline_BotInSameChannel(t *testing.T) {
	p := NewPipeline()
	v := healthy()
	v.BotChannelID = v.ChannelID

	assert.Nil(t, p.Evaluate(v, Options{}))
}

func TestPipeline_PlaybackChecksOnlyWhenRequested(t *testing.T) {
	p := NewPipeline()
	v := healthy()

	assert.Nil(t, p.Evaluate(v, Options{}))
	assert.NotNil(t, p.Evaluate(v, Options{RequireQueue: true}))
}

func TestPipeline_LastTrackGuard(t *testing.T) {
	p := NewPipeline()
	opts := Options{RequireConnection: true, RequireQueue: true, RejectLastTrack: true}

	v := healthy()
	v.BotChannelID = v.ChannelID
	v.HasConnection = true
	v.QueueExists = true
	v.QueueLength = 1

	resp := &recordingResponder{}
	assert.False(t, p.Check(context.Background(), v, opts, resp))
	require.Len(t, resp.messages, 1)
	assert.Contains(t, resp.messages[0], "last one in the queue")

	v.QueueLength = 2
	resp = &recordingResponder{}
	assert.True(t, p.Check(context.Background(), v, opts, resp))
	assert.Empty(t, resp.messages)
}

func TestPipeline_CustomMessagesAndFormatter(t *testing.T) {
	p := NewPipeline(
		WithMessage(ReasonNotInVoice, "join a channel first"),
		WithFormatter(func(s string) string { return "❌ | " + s }),
	)
	v := healthy()
	v.ChannelID = ""

	f := p.Evaluate(v, Options{})
	require.NotNil(t, f)
	assert.Equal(t, "❌ | join a channel first", f.Message)
	assert.Equal(t, f.Message, f.Error())
}

func TestPipeline_ReplyErrorStillFails(t *testing.T) {
	p := NewPipeline()
	v := healthy()
	v.ServerDeaf = true

	resp := &recordingResponder{err: errors.New("unknown interaction")}
	assert.False(t, p.Check(context.Background(), v, Options{}, resp))
	assert.Len(t, resp.messages, 1)
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "last_track", ReasonLastTrack.String())
	assert.Equal(t, "not_owner", ReasonNotOwner.String())
	assert.Equal(t, "unknown", Reason(99).String())
}
