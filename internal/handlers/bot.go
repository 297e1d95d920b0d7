package handlers

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/sonroyaalmerol/aurorabot/internal/config"
	"github.com/sonroyaalmerol/aurorabot/internal/player"
	"github.com/sonroyaalmerol/aurorabot/internal/repository"
)

type Bot struct {
	cfg  *config.Config
	repo *repository.Repo
	pm   *player.PlayerManager
	cmd  *CommandHandler
}

func NewBot(cfg *config.Config, repo *repository.Repo, pm *player.PlayerManager) *Bot {
	return &Bot{
		cfg: cfg, repo: repo, pm: pm, cmd: NewCommandHandler(cfg, repo, pm),
	}
}

func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates | discordgo.IntentsGuildMembers

	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.onReady(ctx, s)
	})
	dg.AddHandler(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		b.onGuildCreate(ctx, s, g)
	})
	dg.AddHandler(func(s *discordgo.Session, g *discordgo.GuildDelete) {
		b.onGuildDelete(ctx, s, g)
	})
	dg.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
		b.onMemberRemove(ctx, m)
	})
	dg.AddHandler(func(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
		b.onVoiceStateUpdate(ctx, s, vs)
	})
	dg.AddHandler(b.cmd.HandleInteraction)

	if err := dg.Open(); err != nil {
		return err
	}
	defer dg.Close()

	<-ctx.Done()
	return nil
}

// onReady registers commands and makes sure every guild the bot is in has a record.
func (b *Bot) onReady(ctx context.Context, s *discordgo.Session) {
	slog.Info("connected", "user", s.State.User.Username, "guilds", len(s.State.Guilds))
	appID := s.State.User.ID

	if b.cfg.RegisterCommandsOnBot {
		if err := b.cmd.RegisterCommands(s, appID, ""); err != nil {
			slog.Error("register global commands", "err", err)
		} else {
			slog.Info("registered global application commands")
		}
	}

	var wg sync.WaitGroup
	for _, g := range s.State.Guilds {
		wg.Add(1)
		go func(guildID string) {
			defer wg.Done()
			b.provisionGuild(ctx, guildID)
			if b.cfg.RegisterCommandsOnBot {
				return
			}
			if err := b.cmd.RegisterCommands(s, appID, guildID); err != nil {
				slog.Error("register guild commands", "guildID", guildID, "err", err)
			}
		}(g.ID)
	}
	wg.Wait()

	if !b.cfg.RegisterCommandsOnBot {
		_, err := s.ApplicationCommandBulkOverwrite(appID, "", []*discordgo.ApplicationCommand{})
		if err != nil {
			slog.Error("clear global commands", "err", err)
		} else {
			slog.Info("cleared global application commands")
		}
		slog.Info("registered commands on all guilds")
	}
}

func (b *Bot) onGuildCreate(ctx context.Context, s *discordgo.Session, g *discordgo.GuildCreate) {
	b.provisionGuild(ctx, g.ID)
	if b.cfg.RegisterCommandsOnBot || s.State.User == nil {
		return
	}
	if err := b.cmd.RegisterCommands(s, s.State.User.ID, g.ID); err != nil {
		slog.Error("register guild commands on join", "guildID", g.ID, "err", err)
	} else {
		slog.Info("registered commands on new guild", "guildID", g.ID)
	}
}

// onGuildDelete forgets a guild the bot was removed from. Outages arrive as
// unavailable guilds and keep their data.
func (b *Bot) onGuildDelete(ctx context.Context, s *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Guild == nil || g.Unavailable {
		return
	}
	if b.pm.Peek(g.ID) != nil {
		b.cmd.leaveVoice(s, g.ID)
	}
	if err := b.repo.DeleteGuild(ctx, g.ID); err != nil {
		return
	}
	slog.Info("removed from guild", "guildID", g.ID)
}

func (b *Bot) onMemberRemove(ctx context.Context, m *discordgo.GuildMemberRemove) {
	if m.Member == nil || m.User == nil {
		return
	}
	if err := b.repo.RemoveUser(ctx, m.User.ID, m.GuildID); err != nil {
		return
	}
	slog.Debug("member left", "guildID", m.GuildID, "userID", m.User.ID)
}

func (b *Bot) onVoiceStateUpdate(ctx context.Context, s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	gid := vs.GuildID
	p := b.pm.Peek(gid)
	if p == nil || p.ChannelID() == "" {
		return
	}

	// the bot itself was moved or disconnected
	if s.State.User != nil && vs.UserID == s.State.User.ID {
		if vs.ChannelID == "" {
			slog.Info("disconnected from voice", "guildID", gid)
			b.pm.Remove(gid)
		} else {
			p.Join(vs.ChannelID)
		}
		return
	}

	guild, err := b.repo.GetGuild(ctx, gid)
	if err != nil || !guild.LeaveIfNoListeners() {
		return
	}
	if nonBotListeners(s.State, gid, p.ChannelID()) == 0 {
		slog.Info("leaving empty voice channel", "guildID", gid, "channelID", p.ChannelID())
		b.cmd.leaveVoice(s, gid)
	}
}

func (b *Bot) provisionGuild(ctx context.Context, guildID string) {
	if _, err := b.repo.GetGuild(ctx, guildID); err != nil && !errors.Is(err, repository.ErrMissingKey) {
		slog.Warn("guild record not provisioned", "guildID", guildID, "err", err)
	}
}

func nonBotListeners(st *discordgo.State, guildID, channelID string) int {
	g, _ := st.Guild(guildID)
	if g == nil {
		return 0
	}
	n := 0
	for _, vs := range g.VoiceStates {
		if vs.ChannelID != channelID {
			continue
		}
		m := vs.Member
		if m == nil {
			m, _ = st.Member(guildID, vs.UserID)
		}
		if m != nil && m.User != nil && !m.User.Bot {
			n++
		}
	}
	return n
}
