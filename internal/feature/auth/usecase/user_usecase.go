package usecase

import (
	"context"
	"errors"
	"fmt"

	"taskandtime_backend/internal/feature/auth/domain/entity"
)

// ProfileInput は更新・部分更新リクエストのフィールドです。
// nilポインタはペイロードにフィールドが無かったことを表します。
type ProfileInput struct {
	Name     *string
	Email    *string
	Password *string
	Contact  *string
	Role     *entity.Role
}

// userUsecase はユーザープロフィールのCRUDを実装します。
type userUsecase struct {
	users  UserRepository
	ledger TokenRepository
	hasher PasswordHasher
}

// NewUserUsecase はuserUsecaseの新しいインスタンスを生成します。
func NewUserUsecase(users UserRepository, ledger TokenRepository, hasher PasswordHasher) *userUsecase {
	return &userUsecase{users: users, ledger: ledger, hasher: hasher}
}

// FindAll は全ユーザーを返します。
func (u *userUsecase) FindAll(ctx context.Context) ([]entity.User, error) {
	return u.users.FindAll(ctx)
}

// FindByID はユーザーを返します。存在しない場合はnilを返します。
func (u *userUsecase) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// FindIDByEmail はメールアドレスをユーザーIDに解決します。
func (u *userUsecase) FindIDByEmail(ctx context.Context, email string) (uint, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Update は名前・メールアドレス・連絡先を置き換えます。
// パスワードは空でない値が指定された場合のみ更新し、ロールは変更しません。
// ユーザーが存在しない場合はnilを返します。
func (u *userUsecase) Update(ctx context.Context, id uint, in ProfileInput) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}

	user.Name = deref(in.Name)
	user.Email = deref(in.Email)
	user.Contact = deref(in.Contact)
	if err := u.applyPassword(user, in.Password); err != nil {
		return nil, err
	}

	if err := u.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Patch は入力に含まれるフィールドのみを適用します。
// 空文字列もそのまま適用しますが、パスワードが空の場合は現在のダイジェストを維持します。
func (u *userUsecase) Patch(ctx context.Context, id uint, in ProfileInput) (*entity.User, error) {
	if in.Role != nil && !in.Role.Valid() {
		return nil, ErrInvalidRole
	}

	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Contact != nil {
		user.Contact = *in.Contact
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if err := u.applyPassword(user, in.Password); err != nil {
		return nil, err
	}

	if err := u.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete はユーザーの有効なトークンを失効させてからレコードを削除します。
func (u *userUsecase) Delete(ctx context.Context, id uint) error {
	if _, err := u.ledger.RevokeAllByUserID(ctx, id); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	if err := u.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (u *userUsecase) applyPassword(user *entity.User, password *string) error {
	if password == nil || *password == "" {
		return nil
	}
	hashed, err := u.hasher.Hash(*password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hashed
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
