package adapters

import (
	"time"

	"taskandtime_backend/internal/feature/auth/domain/entity"
)

// TokenModel はaccess_tokensテーブルのGORMモデルです。
type TokenModel struct {
	ID        uint      `gorm:"primaryKey"`
	Token     string    `gorm:"uniqueIndex;size:1024;not null"`
	UserID    uint      `gorm:"index;not null"`
	Expired   bool      `gorm:"not null;default:false"`
	Revoked   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName はGORMが使用するテーブル名を返します。
func (TokenModel) TableName() string {
	return "access_tokens"
}

// ToEntity はGORMモデルをドメインエンティティに変換します。
func (m *TokenModel) ToEntity() *entity.AccessToken {
	return &entity.AccessToken{
		ID:        m.ID,
		Token:     m.Token,
		UserID:    m.UserID,
		Expired:   m.Expired,
		Revoked:   m.Revoked,
		CreatedAt: m.CreatedAt,
	}
}

// TokenModelFromEntity はドメインエンティティをGORMモデルに変換します。
func TokenModelFromEntity(t *entity.AccessToken) *TokenModel {
	return &TokenModel{
		ID:        t.ID,
		Token:     t.Token,
		UserID:    t.UserID,
		Expired:   t.Expired,
		Revoked:   t.Revoked,
		CreatedAt: t.CreatedAt,
	}
}
