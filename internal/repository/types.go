package repository

import (
	"database/sql"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrMissingKey is returned, without touching storage, when a guild or user id is empty.
	ErrMissingKey = errors.New("missing record key")
	// ErrNotFound means the record is confirmed absent.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned by the Add operations when the key already exists.
	ErrDuplicate = errors.New("record already exists")
)

// Guild setting keys.
const (
	SettingQueuePageSize      = "queue_page_size"
	SettingLeaveIfNoListeners = "leave_if_no_listeners"
	SettingQueueAddEphemeral  = "queue_add_ephemeral"
)

// User setting keys.
const (
	SettingTracksQueued = "tracks_queued"
)

const DefaultQueuePageSize = 10

type Repo struct {
	db     *sql.DB
	logger *slog.Logger

	flight singleflight.Group
	locks  keyLocks
}

type Guild struct {
	GuildID    string
	EmbedColor string // 6 hex digits without '#', empty when unset
	Settings   Settings
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Color decodes the embed colour override.
func (g *Guild) Color() (int, bool) {
	if g == nil || g.EmbedColor == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(g.EmbedColor, 16, 32)
	if err != nil || v > 0xffffff {
		return 0, false
	}
	return int(v), true
}

func (g *Guild) QueuePageSize() int {
	n := g.Settings.Int(SettingQueuePageSize, DefaultQueuePageSize)
	if n < 1 || n > 30 {
		return DefaultQueuePageSize
	}
	return n
}

func (g *Guild) LeaveIfNoListeners() bool {
	return g.Settings.Bool(SettingLeaveIfNoListeners, false)
}

func (g *Guild) QueueAddEphemeral() bool {
	return g.Settings.Bool(SettingQueueAddEphemeral, false)
}

func (g *Guild) clone() *Guild {
	cp := *g
	cp.Settings = g.Settings.clone()
	return &cp
}

type User struct {
	UserID    string
	GuildID   string
	Settings  Settings
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) TracksQueued() int {
	return u.Settings.Int(SettingTracksQueued, 0)
}

func (u *User) clone() *User {
	cp := *u
	cp.Settings = u.Settings.clone()
	return &cp
}

// GuildPatch is merged over an existing guild. A nil EmbedColor leaves the
// override untouched, a pointer to "" clears it.
type GuildPatch struct {
	EmbedColor *string
	Settings   Settings
}

type UserPatch struct {
	Settings Settings
}
