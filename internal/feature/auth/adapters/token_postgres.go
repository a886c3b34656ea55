package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskandtime_backend/internal/feature/auth/domain/entity"
	"taskandtime_backend/internal/feature/auth/usecase"
)

// retired は終端状態（失効済みかつ期限切れ）のカラム値です。
var retired = map[string]any{"expired": true, "revoked": true}

// tokenPostgres はTokenRepositoryインターフェースのPostgreSQL実装です。
type tokenPostgres struct {
	db *gorm.DB
}

// tokenPostgresがTokenRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.TokenRepository = (*tokenPostgres)(nil)

// NewTokenPostgres はtokenPostgresの新しいインスタンスを生成します。
func NewTokenPostgres(db *gorm.DB) *tokenPostgres {
	return &tokenPostgres{db: db}
}

// FindValidByUserID はユーザーの有効なトークンを取得します。
func (r *tokenPostgres) FindValidByUserID(ctx context.Context, userID uint) ([]*entity.AccessToken, error) {
	var models []TokenModel
	if err := validFor(r.db.WithContext(ctx), userID).
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	tokens := make([]*entity.AccessToken, len(models))
	for i := range models {
		tokens[i] = models[i].ToEntity()
	}
	return tokens, nil
}

// FindByToken は署名済みトークン文字列でトークンを取得します。
func (r *tokenPostgres) FindByToken(ctx context.Context, raw string) (*entity.AccessToken, error) {
	var model TokenModel
	if err := r.db.WithContext(ctx).Where("token = ?", raw).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrTokenNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// RotateForUser はユーザーの有効なトークンをすべて失効させ、tokenを挿入します。
// 両方ともコミットされるか、どちらもされないかのいずれかです。
// 先にユーザー行をロックするため、同一ユーザーの並行ローテーションは直列に実行され、
// 後続は先行が挿入したトークンも失効させます。
func (r *tokenPostgres) RotateForUser(ctx context.Context, userID uint, token *entity.AccessToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return usecase.ErrUserNotFound
			}
			return err
		}

		if err := validFor(tx.Model(&TokenModel{}), userID).Updates(retired).Error; err != nil {
			return err
		}

		model := TokenModelFromEntity(token)
		model.UserID = userID
		model.Expired, model.Revoked = false, false
		if err := tx.Create(model).Error; err != nil {
			return err
		}

		token.ID = model.ID
		token.UserID = userID
		token.CreatedAt = model.CreatedAt
		return nil
	})
}

// RevokeAllByUserID はユーザーの有効なトークンをすべて失効させます。
func (r *tokenPostgres) RevokeAllByUserID(ctx context.Context, userID uint) (int64, error) {
	result := validFor(r.db.WithContext(ctx).Model(&TokenModel{}), userID).Updates(retired)
	return result.RowsAffected, result.Error
}

// Revoke はトークンを1つ失効させます。失効済みのトークンはそのままです。
func (r *tokenPostgres) Revoke(ctx context.Context, raw string) error {
	result := r.db.WithContext(ctx).
		Model(&TokenModel{}).
		Where("token = ?", raw).
		Updates(retired)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrTokenNotFound
	}
	return nil
}

// lockUser はユーザー行をSELECT ... FOR UPDATEでロックします。
// SQLiteは行ロックを持たず書き込みを自前で直列化するため、ドライバーが句を省略します。
func lockUser(tx *gorm.DB, userID uint) *gorm.DB {
	var owner entity.User
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", userID).
		Take(&owner)
}

func validFor(db *gorm.DB, userID uint) *gorm.DB {
	return db.Where("user_id = ? AND expired = ? AND revoked = ?", userID, false, false)
}
