package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sonroyaalmerol/aurorabot/internal/checks"
	plib "github.com/sonroyaalmerol/aurorabot/internal/player"
	"github.com/sonroyaalmerol/aurorabot/internal/repository"
	"github.com/sonroyaalmerol/aurorabot/internal/utils"
)

var (
	connected     = checks.Options{RequireConnection: true, RequireQueue: true}
	needsNextSong = checks.Options{RequireConnection: true, RequireQueue: true, RejectLastTrack: true}
)

// voiceRequirements maps each music command to the playback checks it runs
// after the voice checks.
var voiceRequirements = map[string]checks.Options{
	"play":    {},
	"skip":    needsNextSong,
	"stop":    connected,
	"pause":   connected,
	"resume":  connected,
	"loop":    connected,
	"clear":   connected,
	"shuffle": needsNextSong,
	"move":    connected,
	"remove":  connected,
}

func (h *CommandHandler) cmdPlay(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	v, ok := h.voiceCheck(ctx, s, i)
	if !ok {
		return
	}
	opts := options(i.ApplicationCommandData().Options)
	query := strings.TrimSpace(opts.Str("query", ""))
	immediate := opts.Bool("immediate", false)
	if query == "" {
		h.fail(ctx, s, i, "Give me something to play.")
		return
	}

	guild, err := h.repo.GetGuild(ctx, i.GuildID)
	if err != nil {
		h.fail(ctx, s, i, "Couldn't load this server's settings, try again later.")
		return
	}

	player := h.pm.Get(i.GuildID)
	if player.ChannelID() != v.ChannelID {
		if err := s.ChannelVoiceJoinManual(i.GuildID, v.ChannelID, false, true); err != nil {
			slog.Warn("voice connect failed", "guildID", i.GuildID, "channelID", v.ChannelID, "err", err)
			h.fail(ctx, s, i, "Couldn't connect to your voice channel.")
			return
		}
		player.Join(v.ChannelID)
	}

	userID := userIDOf(i)
	player.Add(plib.Track{
		Query:       query,
		Title:       query,
		RequestedBy: userID,
		AddedInChan: i.ChannelID,
	}, immediate)

	if _, err := h.repo.IncrUserCounter(ctx, userID, i.GuildID, repository.SettingTracksQueued, 1); err != nil {
		slog.Warn("track counter not updated", "guildID", i.GuildID, "userID", userID, "err", err)
	}

	where := "queue"
	if immediate {
		where = "front of the queue"
	}
	slog.Info("cmd play", "guildID", i.GuildID, "userID", userID, "query", query, "immediate", immediate)
	h.replyIn(s, i, guild, h.cfg.Emojis.Music,
		fmt.Sprintf("**%s** added to the %s", utils.EscapeMd(query), where),
		guild.QueueAddEphemeral())
}

func (h *CommandHandler) cmdSkip(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if _, ok := h.voiceCheck(ctx, s, i); !ok {
		return
	}
	next, err := h.pm.Get(i.GuildID).Skip()
	if err != nil {
		slog.Debug("skip failed", "guildID", i.GuildID, "err", err)
		h.fail(ctx, s, i, utils.Capitalize(err.Error()))
		return
	}
	slog.Info("cmd skip", "guildID", i.GuildID, "userID", userIDOf(i))
	h.ok(ctx, s, i, fmt.Sprintf("Skipped. Now playing **%s**", utils.EscapeMd(next.Title)))
}

func (h *CommandHandler) cmdStop(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if _, ok := h.voiceCheck(ctx, s, i); !ok {
		return
	}
	h.leaveVoice(s, i.GuildID)
	slog.Info("cmd stop", "guildID", i.GuildID, "userID", userIDOf(i))
	h.ok(ctx, s, i, "Stopped and left the voice channel.")
}

func (h *CommandHandler) cmdPause(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if _, ok := h.voiceCheck(ctx, s, i); !ok {
		return
	}
	if err := h.pm.Get(i.GuildID).Pause(); err != nil {
		h.fail(ctx, s, i, utils.Capitalize(err.Error()))
		return
	}
	slog.Info("cmd pause", "guildID", i.GuildID, "userID", userIDOf(i))
	h.ok(ctx, s, i, "Paused.")
}

func (h *CommandHandler) cmdResume(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if _, ok := h.voiceCheck(ctx, s, i); !ok {
		return
	}
	if err := h.pm.Get(i.GuildID).Resume(); err != nil {
		h.fail(ctx, s, i, utils.Capitalize(err.Error()))
		return
	}
	slog.Info("cmd resume", "guildID", i.GuildID, "userID", userIDOf(i))
	h.ok(ctx, s, i, "Resumed.")
}

func (h *CommandHandler) cmdLoop(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if _, ok := h.voiceCheck(ctx, s, i); !ok {
		return
	}
	player := h.pm.Get(i.GuildID)
	queue := options(i.ApplicationCommandData().Options).Bool("queue", false)

	toggle, what := player.ToggleLoopSong, "track"
	if queue {
		toggle, what = player.ToggleLoopQueue, "queue"
	}
	on, err := toggle()
	if err != nil {
		slog.Debug("toggle loop failed", "guildID", i.GuildID, "queue", queue, "err", err)
		h.fail(ctx, s, i, utils.Capitalize(err.Error()))
		return
	}
	slog.Info("cmd loop", "guildID", i.GuildID, "userID", userIDOf(i), "queue", queue, "on", on)
	if on {
		h.ok(ctx, s, i, fmt.Sprintf("Looping the %s.", what))
	} else {
		h.ok(ctx, s, i, fmt.Sprintf("Stopped looping the %s.", what))
	}
}

func (h *CommandHandler) cmdClear(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if _, ok := h.voiceCheck(ctx, s, i); !ok {
		return
	}
	h.pm.Get(i.GuildID).Clear()
	slog.Info("cmd clear", "guildID", i.GuildID, "userID", userIDOf(i))
	h.ok(ctx, s, i, "Cleared the queue.")
}

func (h *CommandHandler) cmdShuffle(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if _, ok := h.voiceCheck(ctx, s, i); !ok {
		return
	}
	n := h.pm.Get(i.GuildID).Shuffle()
	slog.Info("cmd shuffle", "guildID", i.GuildID, "userID", userIDOf(i), "count", n)
	h.ok(ctx, s, i, fmt.Sprintf("Shuffled %d tracks.", n))
}

func (h *CommandHandler) cmdMove(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if _, ok := h.voiceCheck(ctx, s, i); !ok {
		return
	}
	opts := options(i.ApplicationCommandData().Options)
	from, to := opts.Int("from", 0), opts.Int("to", 0)

	item, err := h.pm.Get(i.GuildID).Move(from, to)
	if err != nil {
		slog.Debug("move failed", "guildID", i.GuildID, "from", from, "to", to, "err", err)
		h.fail(ctx, s, i, utils.Capitalize(err.Error()))
		return
	}
	slog.Info("cmd move", "guildID", i.GuildID, "userID", userIDOf(i), "from", from, "to", to, "title", item.Title)
	h.ok(ctx, s, i, fmt.Sprintf("Moved **%s** to position %d.", utils.EscapeMd(item.Title), to))
}

func (h *CommandHandler) cmdRemove(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if _, ok := h.voiceCheck(ctx, s, i); !ok {
		return
	}
	opts := options(i.ApplicationCommandData().Options)
	pos, cnt := opts.Int("position", 1), opts.Int("range", 1)

	if err := h.pm.Get(i.GuildID).RemoveFromQueue(pos, cnt); err != nil {
		slog.Debug("remove from queue failed", "guildID", i.GuildID, "pos", pos, "cnt", cnt, "err", err)
		h.fail(ctx, s, i, utils.Capitalize(err.Error()))
		return
	}
	slog.Info("cmd remove", "guildID", i.GuildID, "userID", userIDOf(i), "pos", pos, "cnt", cnt)
	h.ok(ctx, s, i, "Removed.")
}

func (h *CommandHandler) cmdNowPlaying(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	player := h.pm.Peek(i.GuildID)
	if player == nil || player.GetCurrent() == nil {
		h.fail(ctx, s, i, checks.DefaultMessage(checks.ReasonQueueEmpty))
		return
	}
	embed := h.embeds.BuildPlayingEmbed(interactionUser(i), h.guildForEmbed(ctx, i.GuildID), player)
	if err := h.respondEmbed(s, i, embed, false); err != nil {
		slog.Warn("now playing respond failed", "guildID", i.GuildID, "err", err)
	}
}

func (h *CommandHandler) cmdQueue(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	guild, err := h.repo.GetGuild(ctx, i.GuildID)
	if err != nil {
		h.fail(ctx, s, i, "Couldn't load this server's settings, try again later.")
		return
	}
	page := max(options(i.ApplicationCommandData().Options).Int("page", 1), 1)
	pageSize := guild.QueuePageSize()

	player := h.pm.Peek(i.GuildID)
	if player == nil {
		h.replyIn(s, i, guild, h.cfg.Emojis.CrossMark, checks.DefaultMessage(checks.ReasonQueueEmpty), true)
		return
	}
	embed, err := h.embeds.BuildQueueEmbed(interactionUser(i), guild, player, page, pageSize)
	if err != nil {
		slog.Debug("build queue embed failed", "guildID", i.GuildID, "page", page, "pageSize", pageSize, "err", err)
		h.replyIn(s, i, guild, h.cfg.Emojis.CrossMark, utils.Capitalize(err.Error()), true)
		return
	}
	if err := h.respondEmbed(s, i, embed, false); err != nil {
		slog.Warn("queue respond failed", "guildID", i.GuildID, "err", err)
	}
	slog.Debug("cmd queue", "guildID", i.GuildID, "userID", userIDOf(i), "page", page, "pageSize", pageSize)
}
