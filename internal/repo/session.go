package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"gorm.io/gorm/clause"
)

func (r *GormRepo) RevokeSession(ctx context.Context, jti, userID string, at time.Time) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.RevokedSession{JTI: jti, UserID: userID, RevokedAt: at}).Error
}

func (r *GormRepo) SessionRevoked(ctx context.Context, jti string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.RevokedSession{}).Where("jti = ?", jti).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// PurgeRevokedSessions drops denylist rows older than any cookie could live.
func (r *GormRepo) PurgeRevokedSessions(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Where("revoked_at < ?", before).Delete(&models.RevokedSession{})
	return res.RowsAffected, res.Error
}
