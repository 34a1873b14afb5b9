// Package restriction manages per-viewer mute and cooldown state.
// Expiries are lazy: they are applied on read, with the resulting flag
// change written back through the repository.
package restriction

import (
	"context"
	"fmt"
	"time"

	"voxbot/internal/domain"
)

type Service struct {
	repo domain.ViewerRepository
	now  func() time.Time
}

func NewService(repo domain.ViewerRepository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) get(ctx context.Context, viewerID string) (*domain.ViewerRestriction, error) {
	record, err := s.repo.Get(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("restriction: load viewer %s: %w", viewerID, err)
	}
	if record == nil {
		record = &domain.ViewerRestriction{ViewerID: viewerID}
	}
	return record, nil
}

// Mute silences a viewer. A period of zero or less means permanent.
func (s *Service) Mute(ctx context.Context, viewerID string, period time.Duration) error {
	record, err := s.get(ctx, viewerID)
	if err != nil {
		return err
	}

	record.IsMuted = true
	record.MuteExpiresAt = nil
	if period > 0 {
		expires := s.now().Add(period)
		record.MuteExpiresAt = &expires
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return fmt.Errorf("restriction: save mute for %s: %w", viewerID, err)
	}
	return nil
}

func (s *Service) Unmute(ctx context.Context, viewerID string) error {
	record, err := s.get(ctx, viewerID)
	if err != nil {
		return err
	}

	record.IsMuted = false
	record.MuteExpiresAt = nil

	if err := s.repo.Save(ctx, record); err != nil {
		return fmt.Errorf("restriction: save unmute for %s: %w", viewerID, err)
	}
	return nil
}

// IsMuted reads the stored flag, clearing and persisting an expired mute
// before answering.
func (s *Service) IsMuted(ctx context.Context, viewerID string) (bool, error) {
	record, err := s.get(ctx, viewerID)
	if err != nil {
		return false, err
	}

	active, updated, changed := record.ExpireMute(s.now())
	if changed {
		if err := s.repo.Save(ctx, &updated); err != nil {
			return false, fmt.Errorf("restriction: persist mute expiry for %s: %w", viewerID, err)
		}
	}
	return active, nil
}

// SetCooldown forces a minimum gap between the viewer's spoken messages.
// A duration of zero or less means the rule itself never expires; the gap
// is always per message.
func (s *Service) SetCooldown(ctx context.Context, viewerID string, gap, duration time.Duration) error {
	record, err := s.get(ctx, viewerID)
	if err != nil {
		return err
	}

	record.HasCooldown = true
	record.CooldownGapSeconds = int(gap / time.Second)
	record.CooldownExpiresAt = nil
	if duration > 0 {
		expires := s.now().Add(duration)
		record.CooldownExpiresAt = &expires
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return fmt.Errorf("restriction: save cooldown for %s: %w", viewerID, err)
	}
	return nil
}

func (s *Service) ClearCooldown(ctx context.Context, viewerID string) error {
	record, err := s.get(ctx, viewerID)
	if err != nil {
		return err
	}

	record.HasCooldown = false
	record.CooldownExpiresAt = nil

	if err := s.repo.Save(ctx, record); err != nil {
		return fmt.Errorf("restriction: save cooldown clear for %s: %w", viewerID, err)
	}
	return nil
}

// CooldownRemaining returns how long the viewer still has to wait under a
// moderator-assigned cooldown, zero when they may speak. Expired cooldown
// rules are cleared and persisted on the way.
func (s *Service) CooldownRemaining(ctx context.Context, viewerID string) (time.Duration, error) {
	record, err := s.get(ctx, viewerID)
	if err != nil {
		return 0, err
	}

	now := s.now()
	active, updated, changed := record.ExpireCooldown(now)
	if changed {
		if err := s.repo.Save(ctx, &updated); err != nil {
			return 0, fmt.Errorf("restriction: persist cooldown expiry for %s: %w", viewerID, err)
		}
	}
	if !active || updated.LastTTSAt == nil {
		return 0, nil
	}

	gap := time.Duration(updated.CooldownGapSeconds) * time.Second
	if remaining := gap - now.Sub(*updated.LastTTSAt); remaining > 0 {
		return remaining, nil
	}
	return 0, nil
}

// RecordSpeak stamps the viewer's last speak time; the queue calls this
// after every successfully spoken item.
func (s *Service) RecordSpeak(ctx context.Context, viewerID string) error {
	record, err := s.get(ctx, viewerID)
	if err != nil {
		return err
	}

	now := s.now()
	record.LastTTSAt = &now

	if err := s.repo.Save(ctx, record); err != nil {
		return fmt.Errorf("restriction: save speak time for %s: %w", viewerID, err)
	}
	return nil
}
