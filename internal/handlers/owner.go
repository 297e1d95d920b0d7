package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (h *CommandHandler) cmdOwner(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.owners.Check(ctx, userIDOf(i), h.responder(s, i)) {
		return
	}

	sub, opts := subcommand(i)
	switch sub {
	case "forget-guild":
		guildID := strings.TrimSpace(opts.Str("guild_id", i.GuildID))
		if err := h.repo.DeleteGuild(ctx, guildID); err != nil {
			h.fail(ctx, s, i, "Couldn't delete the server's data.")
			return
		}
		slog.Info("owner forgot guild", "guildID", guildID, "userID", userIDOf(i))
		h.reply(ctx, s, i, h.cfg.Emojis.CheckMark, fmt.Sprintf("Deleted stored data for server `%s`.", guildID), true)
	case "forget-user":
		o, ok := opts["user"]
		if !ok {
			h.fail(ctx, s, i, "Pick a member.")
			return
		}
		target := o.UserValue(nil).ID
		if err := h.repo.RemoveUser(ctx, target, i.GuildID); err != nil {
			h.fail(ctx, s, i, "Couldn't delete the member's data.")
			return
		}
		slog.Info("owner forgot user", "guildID", i.GuildID, "userID", userIDOf(i), "target", target)
		h.reply(ctx, s, i, h.cfg.Emojis.CheckMark, fmt.Sprintf("Deleted stored data for <@%s>.", target), true)
	default:
		slog.Debug("unknown owner subcommand", "guildID", i.GuildID, "sub", sub)
	}
}
