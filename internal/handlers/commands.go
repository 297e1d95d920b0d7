package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sonroyaalmerol/aurorabot/internal/checks"
	"github.com/sonroyaalmerol/aurorabot/internal/config"
	plib "github.com/sonroyaalmerol/aurorabot/internal/player"
	"github.com/sonroyaalmerol/aurorabot/internal/repository"
	"github.com/sonroyaalmerol/aurorabot/internal/ui"
)

const interactionTimeout = 10 * time.Second

type CommandHandler struct {
	cfg      *config.Config
	repo     *repository.Repo
	pm       *plib.PlayerManager
	embeds   *ui.Builder
	pipeline *checks.Pipeline
	owners   *checks.OwnerGate
	limiter  *userLimiter
}

func NewCommandHandler(cfg *config.Config, repo *repository.Repo, pm *plib.PlayerManager) *CommandHandler {
	pipeline := checks.NewPipeline(checks.WithFormatter(func(msg string) string {
		return ui.FormatReply(msg, cfg.Emojis.CrossMark)
	}))
	return &CommandHandler{
		cfg:      cfg,
		repo:     repo,
		pm:       pm,
		embeds:   ui.NewBuilder(cfg.Embed),
		pipeline: pipeline,
		owners:   checks.NewOwnerGate(cfg.Owners, pipeline),
		limiter:  newUserLimiter(cfg.CommandRate, cfg.CommandBurst),
	}
}

func boolOpt(name, desc string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Name: name, Description: desc, Type: discordgo.ApplicationCommandOptionBoolean, Required: required}
}

func intOpt(name, desc string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Name: name, Description: desc, Type: discordgo.ApplicationCommandOptionInteger, Required: required}
}

func subCmd(name, desc string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionSubCommand, Name: name, Description: desc, Options: opts}
}

func commandDefinitions() []*discordgo.ApplicationCommand {
	manageGuild := int64(discordgo.PermissionManageGuild)
	minPageSize, maxPageSize := float64(1), float64(30)
	minPage := float64(1)

	return []*discordgo.ApplicationCommand{
		{
			Name:        "play",
			Description: "Add a track to the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{Name: "query", Description: "query or URL", Type: discordgo.ApplicationCommandOptionString, Required: true},
				boolOpt("immediate", "add to front of queue", false),
			},
		},
		{Name: "skip", Description: "skip to the next track"},
		{Name: "stop", Description: "stop playback and leave the voice channel"},
		{Name: "pause", Description: "pause the current track"},
		{Name: "resume", Description: "resume playback"},
		{
			Name:        "loop",
			Description: "toggle looping the current track",
			Options:     []*discordgo.ApplicationCommandOption{boolOpt("queue", "loop the whole queue instead", false)},
		},
		{Name: "clear", Description: "clear the queue except the current track"},
		{Name: "shuffle", Description: "shuffle the upcoming tracks"},
		{
			Name:        "move",
			Description: "move a track within the queue",
			Options: []*discordgo.ApplicationCommandOption{
				intOpt("from", "position of the track to move", true),
				intOpt("to", "position to move the track to", true),
			},
		},
		{
			Name:        "remove",
			Description: "remove tracks from the queue",
			Options: []*discordgo.ApplicationCommandOption{
				intOpt("position", "position of the track to remove [default: 1]", false),
				intOpt("range", "number of tracks to remove [default: 1]", false),
			},
		},
		{Name: "nowplaying", Description: "show the current track"},
		{
			Name:        "queue",
			Description: "show the current queue",
			Options: []*discordgo.ApplicationCommandOption{{
				Name: "page", Description: "page of queue to show [default: 1]", Type: discordgo.ApplicationCommandOptionInteger,
				MinValue: &minPage,
			}},
		},
		{
			Name:                     "opts",
			Description:              "server settings",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				subCmd("get", "show settings"),
				subCmd("embed-color", "set the embed color", &discordgo.ApplicationCommandOption{
					Name: "color", Description: "hex color, e.g. #ff0000", Type: discordgo.ApplicationCommandOptionString, Required: true,
				}),
				subCmd("reset-embed-color", "use the default embed color"),
				subCmd("queue-page-size", "tracks per queue page", &discordgo.ApplicationCommandOption{
					Name: "size", Description: "1-30", Type: discordgo.ApplicationCommandOptionInteger, Required: true,
					MinValue: &minPageSize, MaxValue: maxPageSize,
				}),
				subCmd("leave-if-no-listeners", "leave when nobody is listening", boolOpt("value", "true/false", true)),
				subCmd("queue-add-hidden", "only show queue-add replies to the requester", boolOpt("value", "true/false", true)),
			},
		},
		{
			Name:        "info",
			Description: "information commands",
			Options:     []*discordgo.ApplicationCommandOption{subCmd("server", "show server information")},
		},
		{Name: "profile", Description: "show your profile in this server"},
		{
			Name:        "owner",
			Description: "bot owner commands",
			Options: []*discordgo.ApplicationCommandOption{
				subCmd("forget-guild", "delete a server's stored data", &discordgo.ApplicationCommandOption{
					Name: "guild_id", Description: "server id [default: this server]", Type: discordgo.ApplicationCommandOptionString,
				}),
				subCmd("forget-user", "delete a member's stored data in this server", &discordgo.ApplicationCommandOption{
					Name: "user", Description: "member", Type: discordgo.ApplicationCommandOptionUser, Required: true,
				}),
			},
		},
	}
}

func (h *CommandHandler) RegisterCommands(s *discordgo.Session, appID string, guildID string) error {
	start := time.Now()
	slog.Info("registering application commands", "appID", appID, "guildID", guildID)

	cmds := commandDefinitions()
	for _, c := range cmds {
		if _, err := s.ApplicationCommandCreate(appID, guildID, c); err != nil {
			slog.Error("failed to create application command", "guildID", guildID, "command", c.Name, "err", err)
			return err
		}
		slog.Debug("registered command", "guildID", guildID, "command", c.Name)
	}

	slog.Info("finished registering commands", "guildID", guildID, "count", len(cmds), "took", time.Since(start))
	return nil
}

func (h *CommandHandler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		slog.Debug("interaction: ignored type", "type", i.Type, "guildID", i.GuildID)
		return
	}
	data := i.ApplicationCommandData()
	slog.Debug("interaction: application command", "guildID", i.GuildID, "userID", userIDOf(i), "command", data.Name)

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	if i.GuildID == "" {
		h.reply(ctx, s, i, h.cfg.Emojis.CrossMark, "This command only works in a server.", true)
		return
	}
	if !h.limiter.Allow(userIDOf(i)) {
		slog.Debug("command rate limited", "guildID", i.GuildID, "userID", userIDOf(i), "command", data.Name)
		h.fail(ctx, s, i, "You're sending commands too fast, slow down a bit.")
		return
	}

	switch data.Name {
	case "play":
		h.cmdPlay(ctx, s, i)
	case "skip":
		h.cmdSkip(ctx, s, i)
	case "stop":
		h.cmdStop(ctx, s, i)
	case "pause":
		h.cmdPause(ctx, s, i)
	case "resume":
		h.cmdResume(ctx, s, i)
	case "loop":
		h.cmdLoop(ctx, s, i)
	case "clear":
		h.cmdClear(ctx, s, i)
	case "shuffle":
		h.cmdShuffle(ctx, s, i)
	case "move":
		h.cmdMove(ctx, s, i)
	case "remove":
		h.cmdRemove(ctx, s, i)
	case "nowplaying":
		h.cmdNowPlaying(ctx, s, i)
	case "queue":
		h.cmdQueue(ctx, s, i)
	case "opts":
		h.cmdOpts(ctx, s, i)
	case "info":
		h.cmdInfo(ctx, s, i)
	case "profile":
		h.cmdProfile(ctx, s, i)
	case "owner":
		h.cmdOwner(ctx, s, i)
	default:
		slog.Debug("unknown command", "name", data.Name, "guildID", i.GuildID, "userID", userIDOf(i))
	}
}

func (h *CommandHandler) respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  flags,
		},
	})
}

// reply sends "emoji | content" in an embed coloured for the guild.
func (h *CommandHandler) reply(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, emoji, content string, ephemeral bool) {
	h.replyIn(s, i, h.guildForEmbed(ctx, i.GuildID), emoji, content, ephemeral)
}

func (h *CommandHandler) replyIn(s *discordgo.Session, i *discordgo.InteractionCreate, guild *repository.Guild, emoji, content string, ephemeral bool) {
	embed := h.embeds.Embed(interactionUser(i), guild)
	embed.Description = ui.FormatReply(content, emoji)
	if err := h.respondEmbed(s, i, embed, ephemeral); err != nil {
		slog.Warn("reply failed", "guildID", i.GuildID, "userID", userIDOf(i), "err", err)
	}
}

func (h *CommandHandler) fail(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	h.reply(ctx, s, i, h.cfg.Emojis.CrossMark, content, true)
}

func (h *CommandHandler) ok(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	h.reply(ctx, s, i, h.cfg.Emojis.CheckMark, content, false)
}

// guildForEmbed looks up the colour override without creating a record.
func (h *CommandHandler) guildForEmbed(ctx context.Context, guildID string) *repository.Guild {
	g, err := h.repo.FindGuild(ctx, guildID)
	if err != nil {
		return nil
	}
	return g
}

// interactionResponder sends check failures back to the invoking user.
type interactionResponder struct {
	h *CommandHandler
	s *discordgo.Session
	i *discordgo.InteractionCreate
}

func (r interactionResponder) RespondEphemeral(ctx context.Context, message string) error {
	embed := r.h.embeds.Embed(interactionUser(r.i), r.h.guildForEmbed(ctx, r.i.GuildID))
	embed.Description = message
	return r.h.respondEmbed(r.s, r.i, embed, true)
}

func (h *CommandHandler) responder(s *discordgo.Session, i *discordgo.InteractionCreate) checks.Responder {
	return interactionResponder{h: h, s: s, i: i}
}

// voiceCheck gathers a fresh voice snapshot for the caller and runs the
// pipeline with the requirements registered for the command.
func (h *CommandHandler) voiceCheck(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (checks.VoiceState, bool) {
	v := checks.Gather(s.State, h.pm, i.GuildID, userIDOf(i))
	opts := voiceRequirements[i.ApplicationCommandData().Name]
	return v, h.pipeline.Check(ctx, v, opts, h.responder(s, i))
}

// leaveVoice asks the gateway to disconnect and drops the guild's player.
func (h *CommandHandler) leaveVoice(s *discordgo.Session, guildID string) {
	if err := s.ChannelVoiceJoinManual(guildID, "", false, false); err != nil {
		slog.Warn("voice leave failed", "guildID", guildID, "err", err)
	}
	h.pm.Remove(guildID)
}

type optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption

func options(opts []*discordgo.ApplicationCommandInteractionDataOption) optionMap {
	m := make(optionMap, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func (m optionMap) Int(name string, def int) int {
	if o, ok := m[name]; ok {
		return int(o.IntValue())
	}
	return def
}

func (m optionMap) Bool(name string, def bool) bool {
	if o, ok := m[name]; ok {
		return o.BoolValue()
	}
	return def
}

func (m optionMap) Str(name, def string) string {
	if o, ok := m[name]; ok {
		return o.StringValue()
	}
	return def
}

// subcommand returns the invoked subcommand and its options.
func subcommand(i *discordgo.InteractionCreate) (string, optionMap) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return "", optionMap{}
	}
	sub := data.Options[0]
	return sub.Name, options(sub.Options)
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i == nil {
		return nil
	}
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func userIDOf(i *discordgo.InteractionCreate) string {
	if u := interactionUser(i); u != nil {
		return u.ID
	}
	return ""
}
