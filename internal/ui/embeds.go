package ui

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sonroyaalmerol/aurorabot/internal/config"
	"github.com/sonroyaalmerol/aurorabot/internal/player"
	"github.com/sonroyaalmerol/aurorabot/internal/repository"
	"github.com/sonroyaalmerol/aurorabot/internal/utils"
)

var ErrInvalidColor = errors.New("invalid hex color")

var hexColorRe = regexp.MustCompile(`(?i)^#?([0-9a-f]{6})$`)

// ParseHexColor accepts "#FF0000" or "ff0000" and returns the lowercase
// digits without the leading '#'.
func ParseHexColor(s string) (string, error) {
	m := hexColorRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", ErrInvalidColor
	}
	return strings.ToLower(m[1]), nil
}

// FormatReply prefixes content with an emoji the way every bot reply is shown.
func FormatReply(content, emoji string) string {
	if emoji == "" {
		return content
	}
	return emoji + " | " + content
}

// Builder creates embeds carrying the configured footer, colour and timestamp.
type Builder struct {
	cfg          config.EmbedConfig
	defaultColor int
}

func NewBuilder(cfg config.EmbedConfig) *Builder {
	c, err := strconv.ParseUint(cfg.HexColor, 16, 32)
	if err != nil {
		c = 0x7289da
	}
	return &Builder{cfg: cfg, defaultColor: int(c)}
}

// Embed starts an embed for a reply to user. The guild's colour override wins
// over the configured default; guild may be nil.
func (b *Builder) Embed(user *discordgo.User, guild *repository.Guild) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{Color: b.Color(guild)}
	if b.cfg.ShowAuthor && user != nil {
		e.Footer = &discordgo.MessageEmbedFooter{
			Text:    user.String(),
			IconURL: user.AvatarURL(""),
		}
	}
	if b.cfg.SetTimestamp {
		e.Timestamp = time.Now().Format(time.RFC3339)
	}
	return e
}

func (b *Builder) Color(guild *repository.Guild) int {
	if c, ok := guild.Color(); ok {
		return c
	}
	return b.defaultColor
}

func trackLink(t player.Track) string {
	title := utils.EscapeMd(t.Title)
	if strings.HasPrefix(t.Query, "http://") || strings.HasPrefix(t.Query, "https://") {
		return fmt.Sprintf("[%s](%s)", title, t.Query)
	}
	return title
}

func (b *Builder) BuildPlayingEmbed(user *discordgo.User, guild *repository.Guild, p *player.Player) *discordgo.MessageEmbed {
	e := b.Embed(user, guild)
	cur := p.GetCurrent()
	if cur == nil {
		e.Title = "Nothing Playing"
		e.Description = "No playing song found"
		return e
	}

	button := "⏹️"
	title := "Now Playing"
	if p.GetStatus() != player.StatusPlaying {
		button = "▶️"
		title = "Paused"
	}
	loop := ""
	if song, queue := p.Looping(); song {
		loop = "🔂"
	} else if queue {
		loop = "🔁"
	}
	queued := utils.PrettyTime(int(time.Since(cur.AddedAt).Seconds()))

	e.Title = title
	e.Description = fmt.Sprintf("**%s**\nRequested by: <@%s>\n\n%s `[ queued %s ago ]` %s",
		trackLink(*cur),
		cur.RequestedBy,
		button, queued, loop,
	)
	return e
}

func (b *Builder) BuildQueueEmbed(
	user *discordgo.User,
	guild *repository.Guild,
	p *player.Player,
	page int,
	pageSize int,
) (*discordgo.MessageEmbed, error) {
	cur := p.GetCurrent()
	if cur == nil {
		return nil, fmt.Errorf("queue is empty")
	}
	page = max(page, 1)
	total := p.QueueSize()
	maxPage := max((total+pageSize-1)/pageSize, 1)
	if page > maxPage {
		return nil, fmt.Errorf("the queue isn't that big")
	}
	items, _ := p.GetQueuePage(page, pageSize)

	out := ""
	begin := (page - 1) * pageSize
	for idx, s := range items {
		out += fmt.Sprintf("`%d.` %s (<@%s>)\n", begin+idx+1, trackLink(s), s.RequestedBy)
	}

	desc := fmt.Sprintf("**%s**\nRequested by: <@%s>\n\n", trackLink(*cur), cur.RequestedBy)
	if len(items) > 0 {
		desc += "**Up next:**\n" + out
	}

	loop := ""
	if song, queue := p.Looping(); song {
		loop = " (loop on)"
	} else if queue {
		loop = " (queue loop on)"
	}

	e := b.Embed(user, guild)
	e.Title = fmt.Sprintf("Now Playing%s", loop)
	e.Description = desc
	e.Fields = []*discordgo.MessageEmbedField{
		{Name: "In queue", Value: queueInfo(total), Inline: true},
		{Name: "Page", Value: fmt.Sprintf("%d out of %d", page, maxPage), Inline: true},
	}
	return e, nil
}

func queueInfo(n int) string {
	if n == 0 {
		return "-"
	}
	if n == 1 {
		return "1 song"
	}
	return fmt.Sprintf("%d songs", n)
}

// BuildServerEmbed renders the /info server card.
func (b *Builder) BuildServerEmbed(user *discordgo.User, record *repository.Guild, g *discordgo.Guild) *discordgo.MessageEmbed {
	e := b.Embed(user, record)
	e.Title = utils.EscapeMd(g.Name)
	if icon := g.IconURL(""); icon != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: icon}
	}

	created := "-"
	if ts, err := discordgo.SnowflakeTimestamp(g.ID); err == nil {
		created = fmt.Sprintf("<t:%d:R>", ts.Unix())
	}
	owner := "-"
	if g.OwnerID != "" {
		owner = "<@" + g.OwnerID + ">"
	}
	color := "default"
	if record != nil && record.EmbedColor != "" {
		color = "#" + record.EmbedColor
	}

	e.Fields = []*discordgo.MessageEmbedField{
		{Name: "ID", Value: g.ID, Inline: true},
		{Name: "Owner", Value: owner, Inline: true},
		{Name: "Created", Value: created, Inline: true},
		{Name: "Members", Value: strconv.Itoa(g.MemberCount), Inline: true},
		{Name: "Channels", Value: strconv.Itoa(len(g.Channels)), Inline: true},
		{Name: "Roles", Value: strconv.Itoa(len(g.Roles)), Inline: true},
		{Name: "Boost tier", Value: strconv.Itoa(int(g.PremiumTier)), Inline: true},
		{Name: "Embed color", Value: color, Inline: true},
	}
	return e
}

// BuildSettingsEmbed renders the /opts get card.
func (b *Builder) BuildSettingsEmbed(user *discordgo.User, g *repository.Guild) *discordgo.MessageEmbed {
	color := "default"
	if g.EmbedColor != "" {
		color = "#" + g.EmbedColor
	}
	e := b.Embed(user, g)
	e.Title = "Settings"
	e.Fields = []*discordgo.MessageEmbedField{
		{Name: "Embed color", Value: color, Inline: true},
		{Name: "Queue page size", Value: strconv.Itoa(g.QueuePageSize()), Inline: true},
		{Name: "Leave if no listeners", Value: utils.YesNo(g.LeaveIfNoListeners()), Inline: true},
		{Name: "Hide queue-add replies", Value: utils.YesNo(g.QueueAddEphemeral()), Inline: true},
	}
	return e
}

func (b *Builder) BuildProfileEmbed(user *discordgo.User, guild *repository.Guild, u *repository.User) *discordgo.MessageEmbed {
	e := b.Embed(user, guild)
	e.Title = "Profile"
	if user != nil {
		e.Title = utils.EscapeMd(user.Username)
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("")}
	}
	e.Fields = []*discordgo.MessageEmbedField{
		{Name: "Tracks queued", Value: strconv.Itoa(u.TracksQueued()), Inline: true},
		{Name: "Member since", Value: fmt.Sprintf("<t:%d:D>", u.CreatedAt.Unix()), Inline: true},
	}
	return e
}
