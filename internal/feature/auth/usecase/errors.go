// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import "errors"

var (
	// ErrUserNotFound はメールアドレスまたはIDでユーザーが見つからない場合に返されます。
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists は既に使われているメールアドレスでユーザーを保存しようとした場合に返されます。
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidCredentials は未登録のメールアドレスとパスワード誤りの両方で返されます。
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNoAuthenticatedPrincipal はコンテキストに認証済みユーザーが存在しない場合に返されます。
	ErrNoAuthenticatedPrincipal = errors.New("no authenticated user found")

	// ErrTokenNotFound はトークン台帳に該当トークンが存在しない場合に返されます。
	ErrTokenNotFound = errors.New("token not found")

	// ErrInvalidRole は未知のロールが指定された場合に返されます。
	ErrInvalidRole = errors.New("invalid role")
)
