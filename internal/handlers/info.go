package handlers

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

func (h *CommandHandler) cmdInfo(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub, _ := subcommand(i)
	if sub != "server" {
		slog.Debug("unknown info subcommand", "guildID", i.GuildID, "sub", sub)
		return
	}

	g, err := s.State.Guild(i.GuildID)
	if err != nil {
		g, err = s.Guild(i.GuildID)
	}
	if err != nil {
		slog.Warn("guild lookup failed", "guildID", i.GuildID, "err", err)
		h.fail(ctx, s, i, "Couldn't fetch this server.")
		return
	}
	// a nil record falls back to the default colour
	record, _ := h.repo.GetGuild(ctx, i.GuildID)

	if err := h.respondEmbed(s, i, h.embeds.BuildServerEmbed(interactionUser(i), record, g), false); err != nil {
		slog.Warn("server info respond failed", "guildID", i.GuildID, "err", err)
	}
}

func (h *CommandHandler) cmdProfile(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := userIDOf(i)
	u, err := h.repo.GetUser(ctx, userID, i.GuildID)
	if err != nil {
		h.fail(ctx, s, i, "Couldn't load your profile, try again later.")
		return
	}
	embed := h.embeds.BuildProfileEmbed(interactionUser(i), h.guildForEmbed(ctx, i.GuildID), u)
	if err := h.respondEmbed(s, i, embed, true); err != nil {
		slog.Warn("profile respond failed", "guildID", i.GuildID, "userID", userID, "err", err)
	}
}
