// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// RegisterReq は/registerと/register/pmのリクエストボディを表します。
// 既存クライアントとの互換のためroleを受け付けますが無視します。ロールはエンドポイントが決定します。
type RegisterReq struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=72"`
	Contact  string `json:"contact" binding:"max=64"`
	Role     string `json:"role"`
}

// LoginReq は/loginエンドポイントのリクエストボディを表します。
type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// MessageRes は処理結果のメッセージを表します。
type MessageRes struct {
	Message string `json:"message"`
}

// TokenRes は発行されたアクセストークンを表します。
type TokenRes struct {
	Token string `json:"token"`
}

// ErrorRes はエラーレスポンスのボディです。
type ErrorRes struct {
	Error  string `json:"error"`
	Fields any    `json:"fields,omitempty"`
}
