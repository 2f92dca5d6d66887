package grant

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Take records the grant inside the caller's transaction. It returns false
// when the (userID, grantID) pair was already taken, which is how every
// one-time reward stays one-time under concurrent attempts: the insert
// either lands or hits the unique index, never both.
func Take(ctx context.Context, tx *gorm.DB, genID *snowflake.Node, userID, grantID string, now time.Time) (bool, error) {
	res := tx.WithContext(ctx).Exec(
		`INSERT INTO grants (id, user_id, grant_id, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, grant_id) DO NOTHING`,
		genID.Generate(),
		userID,
		grantID,
		now,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Taken reports whether the grant has already been recorded.
func Taken(ctx context.Context, tx *gorm.DB, userID, grantID string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&Grant{}).
		Where("user_id = ? AND grant_id = ?", userID, grantID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
