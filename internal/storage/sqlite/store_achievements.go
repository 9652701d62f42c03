package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/stoneveil/bastion/internal/encounter/domain"
)

// Grant inserts one achievement unlock. Granting an already-held
// achievement is a no-op; the return reports whether a new row landed.
func (s *Store) Grant(ctx context.Context, playerID, achievementID string, unlockedAt time.Time) (bool, error) {
	result, err := s.sqlDB.ExecContext(ctx, `
INSERT OR IGNORE INTO achievement_unlocks (player_id, achievement_id, unlocked_at) VALUES (?, ?, ?)
`, playerID, achievementID, toMillis(unlockedAt))
	if err != nil {
		return false, fmt.Errorf("grant achievement %s/%s: %w", playerID, achievementID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("grant achievement %s/%s: %w", playerID, achievementID, err)
	}
	return affected > 0, nil
}

// ListAchievements loads every unlock held by a player, oldest first.
func (s *Store) ListAchievements(ctx context.Context, playerID string) ([]domain.AchievementUnlock, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT player_id, achievement_id, unlocked_at FROM achievement_unlocks
WHERE player_id = ? ORDER BY unlocked_at, achievement_id
`, playerID)
	if err != nil {
		return nil, fmt.Errorf("list achievements %s: %w", playerID, err)
	}
	defer rows.Close()

	var unlocks []domain.AchievementUnlock
	for rows.Next() {
		var unlock domain.AchievementUnlock
		var unlockedAt int64
		if err := rows.Scan(&unlock.PlayerID, &unlock.AchievementID, &unlockedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		unlock.UnlockedAt = fromMillis(unlockedAt)
		unlocks = append(unlocks, unlock)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list achievements %s: %w", playerID, err)
	}
	return unlocks, nil
}
