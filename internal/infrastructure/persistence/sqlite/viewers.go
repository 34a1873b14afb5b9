package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"voxbot/internal/domain"
)

// ViewerStore implements domain.ViewerRepository on the shared database.
type ViewerStore struct {
	store *Store
}

func NewViewerStore(store *Store) *ViewerStore {
	return &ViewerStore{store: store}
}

func (v *ViewerStore) Get(ctx context.Context, viewerID string) (*domain.ViewerRestriction, error) {
	const query = `
SELECT username, is_muted, mute_expires_at, has_cooldown, cooldown_gap_seconds, cooldown_expires_at, last_tts_at
FROM viewers
WHERE viewer_id = ?
LIMIT 1;
`

	row := v.store.db.QueryRowContext(ctx, query, viewerID)

	var (
		username                                  sql.NullString
		isMuted, hasCooldown                      bool
		gapSeconds                                int
		muteExpiresAt, cooldownExpiresAt, lastTTS sql.NullTime
	)

	if err := row.Scan(&username, &isMuted, &muteExpiresAt, &hasCooldown, &gapSeconds, &cooldownExpiresAt, &lastTTS); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: get viewer %s: %w", viewerID, err)
	}

	return &domain.ViewerRestriction{
		ViewerID:           viewerID,
		Username:           username.String,
		IsMuted:            isMuted,
		MuteExpiresAt:      timePtr(muteExpiresAt),
		HasCooldown:        hasCooldown,
		CooldownGapSeconds: gapSeconds,
		CooldownExpiresAt:  timePtr(cooldownExpiresAt),
		LastTTSAt:          timePtr(lastTTS),
	}, nil
}

func (v *ViewerStore) Save(ctx context.Context, record *domain.ViewerRestriction) error {
	if record == nil {
		return fmt.Errorf("sqlite: nil viewer record")
	}

	const stmt = `
INSERT INTO viewers (viewer_id, username, is_muted, mute_expires_at, has_cooldown, cooldown_gap_seconds, cooldown_expires_at, last_tts_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(viewer_id) DO UPDATE SET
	username=excluded.username,
	is_muted=excluded.is_muted,
	mute_expires_at=excluded.mute_expires_at,
	has_cooldown=excluded.has_cooldown,
	cooldown_gap_seconds=excluded.cooldown_gap_seconds,
	cooldown_expires_at=excluded.cooldown_expires_at,
	last_tts_at=excluded.last_tts_at,
	updated_at=excluded.updated_at;
`

	_, err := v.store.db.ExecContext(
		ctx,
		stmt,
		record.ViewerID,
		record.Username,
		record.IsMuted,
		nullTime(record.MuteExpiresAt),
		record.HasCooldown,
		record.CooldownGapSeconds,
		nullTime(record.CooldownExpiresAt),
		nullTime(record.LastTTSAt),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save viewer %s: %w", record.ViewerID, err)
	}
	return nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time
	return &value
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
