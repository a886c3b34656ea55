package dto

import "taskandtime_backend/internal/feature/auth/domain/entity"

// UserPayload は更新・部分更新リクエストのボディです。
// ポインタにより、フィールドの欠落と空文字列を区別します。
type UserPayload struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Email    *string `json:"email" binding:"omitempty,max=255"`
	Password *string `json:"password" binding:"omitempty,max=72"`
	Contact  *string `json:"contact" binding:"omitempty,max=64"`
	Role     *string `json:"role"`
}

// UserRes はユーザーの公開用表現です。パスワードダイジェストは含みません。
type UserRes struct {
	UserID  uint   `json:"userid"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
	Role    string `json:"role"`
}

// NewUserRes はエンティティを変換します。nilの場合はnilを返します。
func NewUserRes(u *entity.User) *UserRes {
	if u == nil {
		return nil
	}
	return &UserRes{
		UserID:  u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Contact: u.Contact,
		Role:    u.Role.String(),
	}
}

// NewUserList はエンティティのスライスを変換します。
func NewUserList(users []entity.User) []UserRes {
	out := make([]UserRes, 0, len(users))
	for i := range users {
		out = append(out, *NewUserRes(&users[i]))
	}
	return out
}
