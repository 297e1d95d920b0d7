package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/sonroyaalmerol/aurorabot/internal/repository"
	"github.com/sonroyaalmerol/aurorabot/internal/ui"
	"github.com/sonroyaalmerol/aurorabot/internal/utils"
)

func (h *CommandHandler) cmdOpts(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub, opts := subcommand(i)

	var (
		patch repository.GuildPatch
		done  string
	)
	switch sub {
	case "get":
		guild, err := h.repo.GetGuild(ctx, i.GuildID)
		if err != nil {
			h.fail(ctx, s, i, "Couldn't load this server's settings, try again later.")
			return
		}
		if err := h.respondEmbed(s, i, h.embeds.BuildSettingsEmbed(interactionUser(i), guild), true); err != nil {
			slog.Warn("opts get respond failed", "guildID", i.GuildID, "err", err)
		}
		return
	case "embed-color":
		color, err := ui.ParseHexColor(opts.Str("color", ""))
		if err != nil {
			h.fail(ctx, s, i, "That isn't a valid hex color, try something like `#ff0000`.")
			return
		}
		patch.EmbedColor = &color
		done = fmt.Sprintf("Embed color set to `#%s`.", color)
	case "reset-embed-color":
		none := ""
		patch.EmbedColor = &none
		done = "Embed color reset to the default."
	case "queue-page-size":
		size := opts.Int("size", repository.DefaultQueuePageSize)
		if size < 1 || size > 30 {
			h.fail(ctx, s, i, "Page size must be between 1 and 30.")
			return
		}
		patch.Settings = repository.Settings{repository.SettingQueuePageSize: size}
		done = fmt.Sprintf("Queue page size set to %d.", size)
	case "leave-if-no-listeners":
		val := opts.Bool("value", false)
		patch.Settings = repository.Settings{repository.SettingLeaveIfNoListeners: val}
		done = fmt.Sprintf("Leave if no listeners: %s.", utils.YesNo(val))
	case "queue-add-hidden":
		val := opts.Bool("value", false)
		patch.Settings = repository.Settings{repository.SettingQueueAddEphemeral: val}
		done = fmt.Sprintf("Hide queue-add replies: %s.", utils.YesNo(val))
	default:
		slog.Debug("unknown opts subcommand", "guildID", i.GuildID, "sub", sub)
		return
	}

	guild, err := h.repo.UpdateGuild(ctx, i.GuildID, patch)
	if err != nil {
		h.fail(ctx, s, i, "Couldn't save the setting, try again later.")
		return
	}
	slog.Info("opts updated", "guildID", i.GuildID, "userID", userIDOf(i), "sub", sub)

	emoji := h.cfg.Emojis.CheckMark
	if patch.EmbedColor != nil {
		emoji = h.cfg.Emojis.Art
	}
	h.replyIn(s, i, guild, emoji, done, false)
}
