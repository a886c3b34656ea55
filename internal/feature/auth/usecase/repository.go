package usecase

import (
	"context"

	"taskandtime_backend/internal/feature/auth/domain/entity"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail はメールアドレスに完全一致するユーザーを取得します。存在しない場合はErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDのユーザーを取得します。存在しない場合はErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// FindAll は全ユーザーをID順に返します。
	FindAll(ctx context.Context) ([]entity.User, error)

	// Save は既存ユーザーの全フィールドを書き込みます。
	// 変更後のメールアドレスが他のユーザーと重複する場合、ErrEmailAlreadyExistsを返します。
	Save(ctx context.Context, user *entity.User) error

	// Delete は指定されたIDのユーザーを削除します。存在しないIDはエラーになりません。
	Delete(ctx context.Context, id uint) error
}

// TokenRepository はアクセストークン台帳を抽象化します。
type TokenRepository interface {
	// FindValidByUserID はユーザーの有効な（期限切れでも失効済みでもない）トークンを返します。
	FindValidByUserID(ctx context.Context, userID uint) ([]*entity.AccessToken, error)

	// FindByToken は署名済みトークン文字列で検索します。存在しない場合はErrTokenNotFoundを返します。
	FindByToken(ctx context.Context, raw string) (*entity.AccessToken, error)

	// RotateForUser はユーザーの有効なトークンをすべて失効させ、tokenを新しい有効トークンとして保存します。
	// 両方の書き込みは1つのトランザクションで行われます。ユーザーが存在しない場合はErrUserNotFoundを返します。
	RotateForUser(ctx context.Context, userID uint, token *entity.AccessToken) error

	// RevokeAllByUserID はユーザーの有効なトークンをすべて失効させ、変更件数を返します。
	RevokeAllByUserID(ctx context.Context, userID uint) (int64, error)

	// Revoke はトークンを1つ失効させます。存在しない場合はErrTokenNotFoundを返します。
	Revoke(ctx context.Context, raw string) error
}

// PasswordHasher はパスワードのハッシュ化と照合を行います。
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(digest, plain string) bool
}

// JWTGenerator はJWTトークン生成のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type JWTGenerator interface {
	// GenerateToken はユーザーのIDとロールを含む署名済みトークンを生成します。
	GenerateToken(userID uint, email, role string) (string, error)
}
