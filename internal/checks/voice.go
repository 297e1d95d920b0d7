// Package checks holds the guard conditions music and privileged commands run
// before they act.
package checks

import (
	"context"
	"log/slog"
)

type Reason int

const (
	ReasonNone Reason = iota
	ReasonNotInVoice
	ReasonInAFKChannel
	ReasonSelfDeafened
	ReasonServerDeafened
	ReasonOtherChannel
	ReasonNoConnection
	ReasonQueueEmpty
	ReasonLastTrack
	ReasonOwnersEmpty
	ReasonNotOwner
)

var reasonNames = [...]string{
	ReasonNone:           "none",
	ReasonNotInVoice:     "not_in_voice",
	ReasonInAFKChannel:   "afk_channel",
	ReasonSelfDeafened:   "self_deafened",
	ReasonServerDeafened: "server_deafened",
	ReasonOtherChannel:   "other_channel",
	ReasonNoConnection:   "no_connection",
	ReasonQueueEmpty:     "queue_empty",
	ReasonLastTrack:      "last_track",
	ReasonOwnersEmpty:    "owners_empty",
	ReasonNotOwner:       "not_owner",
}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}
	return reasonNames[r]
}

var defaultMessages = map[Reason]string{
	ReasonNotInVoice:     "You're not in a voice channel.",
	ReasonInAFKChannel:   "You're in AFK channel.",
	ReasonSelfDeafened:   "You've deafened yourself.",
	ReasonServerDeafened: "You're deafened server-wide.",
	ReasonOtherChannel:   "You're not in the same voice channel as me.",
	ReasonNoConnection:   "There's no voice connection in this server.",
	ReasonQueueEmpty:     "The queue is empty.",
	ReasonLastTrack:      "The current track is the last one in the queue.\nIf you want to destroy the voice connection, use `/stop` instead.",
	ReasonOwnersEmpty:    "Owners list is empty, please check your config file.",
	ReasonNotOwner:       "You're not included in owners list.",
}

// DefaultMessage returns the built-in explanation for a reason.
func DefaultMessage(r Reason) string {
	return defaultMessages[r]
}

// VoiceState is the caller's voice situation plus the playback state of the
// guild, captured for a single invocation.
type VoiceState struct {
	GuildID      string
	UserID       string
	ChannelID    string // empty when the caller is not connected
	AFKChannelID string
	SelfDeaf     bool
	ServerDeaf   bool
	BotChannelID string

	HasConnection bool
	QueueExists   bool
	QueueLength   int
}

// Options enables the playback checks. The voice checks always run.
type Options struct {
	RequireConnection bool
	RequireQueue      bool
	RejectLastTrack   bool
}

type Failure struct {
	Reason  Reason
	Message string
}

func (f *Failure) Error() string { return f.Message }

// Responder delivers a reply only the invoking user can see.
type Responder interface {
	RespondEphemeral(ctx context.Context, message string) error
}

type rule struct {
	reason  Reason
	enabled func(Options) bool
	failed  func(VoiceState) bool
}

func always(Options) bool { return true }

// rules run in order; the first failing one decides the outcome.
var rules = []rule{
	{ReasonNotInVoice, always, func(v VoiceState) bool {
		return v.ChannelID == ""
	}},
	{ReasonInAFKChannel, always, func(v VoiceState) bool {
		return v.AFKChannelID != "" && v.ChannelID == v.AFKChannelID
	}},
	{ReasonSelfDeafened, always, func(v VoiceState) bool {
		return v.SelfDeaf
	}},
	{ReasonServerDeafened, always, func(v VoiceState) bool {
		return v.ServerDeaf
	}},
	{ReasonOtherChannel, always, func(v VoiceState) bool {
		return v.BotChannelID != "" && v.BotChannelID != v.ChannelID
	}},
	{ReasonNoConnection, func(o Options) bool { return o.RequireConnection }, func(v VoiceState) bool {
		return !v.HasConnection
	}},
	{ReasonQueueEmpty, func(o Options) bool { return o.RequireQueue }, func(v VoiceState) bool {
		return !v.QueueExists
	}},
	{ReasonLastTrack, func(o Options) bool { return o.RejectLastTrack }, func(v VoiceState) bool {
		return !v.QueueExists || v.QueueLength <= 1
	}},
}

type Pipeline struct {
	messages map[Reason]string
	format   func(string) string
}

type PipelineOption func(*Pipeline)

// WithMessage overrides the text shown for one reason.
func WithMessage(r Reason, msg string) PipelineOption {
	return func(p *Pipeline) { p.messages[r] = msg }
}

// WithFormatter decorates every failure message, e.g. with an emoji prefix.
func WithFormatter(fn func(string) string) PipelineOption {
	return func(p *Pipeline) { p.format = fn }
}

func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{messages: make(map[Reason]string, len(defaultMessages))}
	for r, m := range defaultMessages {
		p.messages[r] = m
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Evaluate returns the first failing check, or nil when every enabled check passes.
func (p *Pipeline) Evaluate(v VoiceState, opts Options) *Failure {
	for _, r := range rules {
		if !r.enabled(opts) || !r.failed(v) {
			continue
		}
		return p.failure(r.reason)
	}
	return nil
}

// Check evaluates the pipeline and, on failure, sends exactly one ephemeral
// reply. It reports whether the command may proceed.
func (p *Pipeline) Check(ctx context.Context, v VoiceState, opts Options, resp Responder) bool {
	f := p.Evaluate(v, opts)
	if f == nil {
		return true
	}
	slog.Debug("voice check failed", "guildID", v.GuildID, "userID", v.UserID, "reason", f.Reason)
	if err := resp.RespondEphemeral(ctx, f.Message); err != nil {
		slog.Warn("voice check reply failed", "guildID", v.GuildID, "userID", v.UserID, "err", err)
	}
	return false
}

func (p *Pipeline) failure(r Reason) *Failure {
	msg := p.messages[r]
	if p.format != nil {
		msg = p.format(msg)
	}
	return &Failure{Reason: r, Message: msg}
}
