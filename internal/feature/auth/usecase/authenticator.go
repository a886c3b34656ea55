package usecase

import (
	"context"
	"errors"
	"fmt"
)

// fallbackDummyHash はハッシャーがダミーダイジェストを生成できない場合にのみ使うcost 10のダイジェストです。
const fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

const dummyPlaintext = "unknown-user-timing-equalizer"

// Authenticator はログイン資格情報を検証します。
type Authenticator interface {
	// Authenticate は未登録のメールアドレスでもパスワード誤りでも
	// 同じErrInvalidCredentialsを返します。
	Authenticate(ctx context.Context, email, password string) error
}

// credentialAuthenticator はユーザーストアに対して資格情報を照合します。
type credentialAuthenticator struct {
	users  UserRepository
	hasher PasswordHasher
	// dummyDigest は未登録のメールアドレスの照合に使い、ユーザーの有無で応答時間が変わらないようにする
	dummyDigest string
}

var _ Authenticator = (*credentialAuthenticator)(nil)

// NewCredentialAuthenticator はユーザーリポジトリを使うAuthenticatorを生成します。
// ダミーダイジェストはhasherで生成するため、保存済みダイジェストと同じコストになります。
func NewCredentialAuthenticator(users UserRepository, hasher PasswordHasher) *credentialAuthenticator {
	dummy, err := hasher.Hash(dummyPlaintext)
	if err != nil || dummy == "" {
		dummy = fallbackDummyHash
	}
	return &credentialAuthenticator{users: users, hasher: hasher, dummyDigest: dummy}
}

// Authenticate はメールアドレスでユーザーを検索し、パスワードを検証します。
func (a *credentialAuthenticator) Authenticate(ctx context.Context, email, password string) error {
	user, err := a.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	digest := a.dummyDigest
	if err == nil {
		digest = user.Password
	}

	// 未登録ユーザーでも必ず照合する
	matched := a.hasher.Verify(digest, password)
	if err != nil || !matched {
		return ErrInvalidCredentials
	}
	return nil
}
