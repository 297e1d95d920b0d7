package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mattn/go-sqlite3"
)

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db, logger: slog.Default().With("component", "store")}
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const guildColumns = `guild_id, embed_color, settings, created_at, updated_at`

// GetGuild returns the guild record, creating a default one on first access.
// Concurrent first accesses for the same guild share a single round trip.
func (r *Repo) GetGuild(ctx context.Context, guildID string) (*Guild, error) {
	if guildID == "" {
		return nil, ErrMissingKey
	}
	v, err, _ := r.flight.Do("guild:"+guildID, func() (any, error) {
		if err := insertGuildIfAbsent(ctx, r.db, guildID); err != nil {
			return nil, err
		}
		return scanGuild(ctx, r.db, guildID)
	})
	if err != nil {
		r.logger.Error("get guild failed", "guildID", guildID, "err", err)
		return nil, fmt.Errorf("get guild %s: %w", guildID, err)
	}
	return v.(*Guild).clone(), nil
}

// FindGuild reads the guild without creating it.
func (r *Repo) FindGuild(ctx context.Context, guildID string) (*Guild, error) {
	if guildID == "" {
		return nil, ErrMissingKey
	}
	g, err := scanGuild(ctx, r.db, guildID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		r.logger.Error("find guild failed", "guildID", guildID, "err", err)
		return nil, fmt.Errorf("find guild %s: %w", guildID, err)
	}
	return g, nil
}

// AddGuild inserts a default guild record; an existing one yields ErrDuplicate.
func (r *Repo) AddGuild(ctx context.Context, guildID string) (*Guild, error) {
	if guildID == "" {
		return nil, ErrMissingKey
	}
	now := time.Now().Unix()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO guilds(guild_id, settings, created_at, updated_at) VALUES (?, '{}', ?, ?)`,
		guildID, now, now,
	); err != nil {
		if isDuplicate(err) {
			r.logger.Warn("add guild: already exists", "guildID", guildID)
			return nil, ErrDuplicate
		}
		r.logger.Error("add guild failed", "guildID", guildID, "err", err)
		return nil, fmt.Errorf("add guild %s: %w", guildID, err)
	}
	return &Guild{
		GuildID:   guildID,
		Settings:  Settings{},
		CreatedAt: time.Unix(now, 0),
		UpdatedAt: time.Unix(now, 0),
	}, nil
}

// UpdateGuild applies patch to the guild, creating it first when absent. The
// create and the patch happen in one transaction.
func (r *Repo) UpdateGuild(ctx context.Context, guildID string, patch GuildPatch) (*Guild, error) {
	if guildID == "" {
		return nil, ErrMissingKey
	}
	unlock := r.locks.Lock("guild:" + guildID)
	defer unlock()

	g, err := r.updateGuildTx(ctx, guildID, patch)
	if err != nil {
		r.logger.Error("update guild failed", "guildID", guildID, "err", err)
		return nil, fmt.Errorf("update guild %s: %w", guildID, err)
	}
	return g, nil
}

func (r *Repo) updateGuildTx(ctx context.Context, guildID string, patch GuildPatch) (*Guild, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertGuildIfAbsent(ctx, tx, guildID); err != nil {
		return nil, err
	}
	g, err := scanGuild(ctx, tx, guildID)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	if patch.EmbedColor != nil {
		g.EmbedColor = *patch.EmbedColor
	}
	g.Settings = g.Settings.Merge(patch.Settings)
	g.UpdatedAt = time.Unix(now, 0)

	raw, err := g.Settings.encode()
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE guilds SET embed_color=?, settings=?, updated_at=? WHERE guild_id=?`,
		nullString(g.EmbedColor), raw, now, guildID,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return g, nil
}

// DeleteGuild removes the guild and every user record kept for it. Deleting
// an unknown guild is not an error.
func (r *Repo) DeleteGuild(ctx context.Context, guildID string) error {
	if guildID == "" {
		return ErrMissingKey
	}
	unlock := r.locks.Lock("guild:" + guildID)
	defer unlock()

	err := func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE guild_id=?`, guildID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM guilds WHERE guild_id=?`, guildID); err != nil {
			return err
		}
		return tx.Commit()
	}()
	if err != nil {
		r.logger.Error("delete guild failed", "guildID", guildID, "err", err)
		return fmt.Errorf("delete guild %s: %w", guildID, err)
	}
	return nil
}

func insertGuildIfAbsent(ctx context.Context, e execer, guildID string) error {
	now := time.Now().Unix()
	_, err := e.ExecContext(ctx,
		`INSERT INTO guilds(guild_id, settings, created_at, updated_at) VALUES (?, '{}', ?, ?)
		 ON CONFLICT(guild_id) DO NOTHING`, guildID, now, now,
	)
	return err
}

func scanGuild(ctx context.Context, q queryRower, guildID string) (*Guild, error) {
	row := q.QueryRowContext(ctx, `SELECT `+guildColumns+` FROM guilds WHERE guild_id = ?`, guildID)

	var (
		g                Guild
		color            sql.NullString
		raw              string
		created, updated int64
	)
	if err := row.Scan(&g.GuildID, &color, &raw, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	settings, err := decodeSettings(raw)
	if err != nil {
		return nil, err
	}
	g.EmbedColor = color.String
	g.Settings = settings
	g.CreatedAt = time.Unix(created, 0)
	g.UpdatedAt = time.Unix(updated, 0)
	return &g, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isDuplicate(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
