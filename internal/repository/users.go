package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const userColumns = `user_id, guild_id, settings, created_at, updated_at`

func userKey(userID, guildID string) string {
	return "user:" + guildID + ":" + userID
}

// GetUser returns the user's record for the guild, creating it on first access.
func (r *Repo) GetUser(ctx context.Context, userID, guildID string) (*User, error) {
	if userID == "" || guildID == "" {
		return nil, ErrMissingKey
	}
	v, err, _ := r.flight.Do(userKey(userID, guildID), func() (any, error) {
		if err := insertUserIfAbsent(ctx, r.db, userID, guildID); err != nil {
			return nil, err
		}
		return scanUser(ctx, r.db, userID, guildID)
	})
	if err != nil {
		r.logger.Error("get user failed", "guildID", guildID, "userID", userID, "err", err)
		return nil, fmt.Errorf("get user %s/%s: %w", guildID, userID, err)
	}
	return v.(*User).clone(), nil
}

func (r *Repo) FindUser(ctx context.Context, userID, guildID string) (*User, error) {
	if userID == "" || guildID == "" {
		return nil, ErrMissingKey
	}
	u, err := scanUser(ctx, r.db, userID, guildID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		r.logger.Error("find user failed", "guildID", guildID, "userID", userID, "err", err)
		return nil, fmt.Errorf("find user %s/%s: %w", guildID, userID, err)
	}
	return u, nil
}

// AddUser inserts a user record seeded with extra settings; an existing one
// yields ErrDuplicate.
func (r *Repo) AddUser(ctx context.Context, userID, guildID string, extra Settings) (*User, error) {
	if userID == "" || guildID == "" {
		return nil, ErrMissingKey
	}
	raw, err := extra.encode()
	if err != nil {
		return nil, err
	}
	now := time.Now().Unix()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO users(user_id, guild_id, settings, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		userID, guildID, raw, now, now,
	); err != nil {
		if isDuplicate(err) {
			r.logger.Warn("add user: already exists", "guildID", guildID, "userID", userID)
			return nil, ErrDuplicate
		}
		r.logger.Error("add user failed", "guildID", guildID, "userID", userID, "err", err)
		return nil, fmt.Errorf("add user %s/%s: %w", guildID, userID, err)
	}
	return &User{
		UserID:    userID,
		GuildID:   guildID,
		Settings:  Settings{}.Merge(extra),
		CreatedAt: time.Unix(now, 0),
		UpdatedAt: time.Unix(now, 0),
	}, nil
}

// UpdateUser merges patch into the user's record, creating it when absent.
// The guild must already have a record.
func (r *Repo) UpdateUser(ctx context.Context, userID, guildID string, patch UserPatch) (*User, error) {
	if userID == "" || guildID == "" {
		return nil, ErrMissingKey
	}
	u, err := r.mutateUser(ctx, userID, guildID, func(u *User) {
		u.Settings = u.Settings.Merge(patch.Settings)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil {
		r.logger.Error("update user failed", "guildID", guildID, "userID", userID, "err", err)
		return nil, fmt.Errorf("update user %s/%s: %w", guildID, userID, err)
	}
	return u, nil
}

// IncrUserCounter adds delta to an integer setting and returns the new value.
func (r *Repo) IncrUserCounter(ctx context.Context, userID, guildID, key string, delta int) (int, error) {
	if userID == "" || guildID == "" {
		return 0, ErrMissingKey
	}
	var n int
	_, err := r.mutateUser(ctx, userID, guildID, func(u *User) {
		n = u.Settings.Int(key, 0) + delta
		u.Settings = u.Settings.Merge(Settings{key: n})
	})
	if errors.Is(err, ErrNotFound) {
		return 0, err
	}
	if err != nil {
		r.logger.Error("increment user counter failed", "guildID", guildID, "userID", userID, "key", key, "err", err)
		return 0, fmt.Errorf("increment %s for %s/%s: %w", key, guildID, userID, err)
	}
	return n, nil
}

// RemoveUser deletes the (user, guild) record only.
func (r *Repo) RemoveUser(ctx context.Context, userID, guildID string) error {
	if userID == "" || guildID == "" {
		return ErrMissingKey
	}
	unlock := r.locks.Lock(userKey(userID, guildID))
	defer unlock()

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE user_id=? AND guild_id=?`, userID, guildID,
	); err != nil {
		r.logger.Error("remove user failed", "guildID", guildID, "userID", userID, "err", err)
		return fmt.Errorf("remove user %s/%s: %w", guildID, userID, err)
	}
	return nil
}

// mutateUser runs fn over the user's record inside one transaction. The guild
// must still have a record; otherwise ErrNotFound is returned and nothing is
// written, so a write racing DeleteGuild cannot bring the user row back.
func (r *Repo) mutateUser(ctx context.Context, userID, guildID string, fn func(*User)) (*User, error) {
	unlock := r.locks.Lock(userKey(userID, guildID))
	defer unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM guilds WHERE guild_id = ?`, guildID,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	if err := insertUserIfAbsent(ctx, tx, userID, guildID); err != nil {
		return nil, err
	}
	u, err := scanUser(ctx, tx, userID, guildID)
	if err != nil {
		return nil, err
	}

	fn(u)
	now := time.Now().Unix()
	u.UpdatedAt = time.Unix(now, 0)

	raw, err := u.Settings.encode()
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET settings=?, updated_at=? WHERE user_id=? AND guild_id=?`,
		raw, now, userID, guildID,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return u, nil
}

func insertUserIfAbsent(ctx context.Context, e execer, userID, guildID string) error {
	now := time.Now().Unix()
	_, err := e.ExecContext(ctx,
		`INSERT INTO users(user_id, guild_id, settings, created_at, updated_at) VALUES (?, ?, '{}', ?, ?)
		 ON CONFLICT(user_id, guild_id) DO NOTHING`,
		userID, guildID, now, now,
	)
	return err
}

func scanUser(ctx context.Context, q queryRower, userID, guildID string) (*User, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ? AND guild_id = ?`, userID, guildID)

	var (
		u                User
		raw              string
		created, updated int64
	)
	if err := row.Scan(&u.UserID, &u.GuildID, &raw, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	settings, err := decodeSettings(raw)
	if err != nil {
		return nil, err
	}
	u.Settings = settings
	u.CreatedAt = time.Unix(created, 0)
	u.UpdatedAt = time.Unix(updated, 0)
	return &u, nil
}
