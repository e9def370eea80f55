package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

func (r *GormRepo) CreateUserIfNotExists(ctx context.Context, u *models.User) error {
	tx := r.DB.WithContext(ctx).Where("email = ?", u.Email).FirstOrCreate(u)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExist
		}
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrUserAlreadyExist
	}
	return nil
}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SetResetToken writes token and expiry in one statement so the pair never
// diverges.
func (r *GormRepo) SetResetToken(ctx context.Context, userID, token string, expiry int64) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"reset_token": token, "reset_token_expiry": expiry})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindUserByResetToken matches only tokens whose expiry is after nowMs.
func (r *GormRepo) FindUserByResetToken(ctx context.Context, token string, nowMs int64) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Where("reset_token = ? AND reset_token_expiry > ?", token, nowMs).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ConsumeResetToken sets the new password and clears the reset pair, but only
// while the token is still the one on record. A concurrent redemption loses
// with ErrStaleResetToken.
func (r *GormRepo) ConsumeResetToken(ctx context.Context, userID, token, passwordHash string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND reset_token = ?", userID, token).
		Updates(map[string]any{
			"password":           passwordHash,
			"reset_token":        nil,
			"reset_token_expiry": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleResetToken
	}
	return nil
}

func (r *GormRepo) ClearExpiredResetTokens(ctx context.Context, nowMs int64) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("reset_token_expiry IS NOT NULL AND reset_token_expiry <= ?", nowMs).
		Updates(map[string]any{"reset_token": nil, "reset_token_expiry": nil})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) UpdatePermissions(ctx context.Context, userID string, perms []string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			return err
		}
		user.Permissions = pq.StringArray(perms)
		return tx.Model(&user).Update("permissions", user.Permissions).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
