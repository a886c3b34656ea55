package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskandtime_backend/internal/feature/auth/domain/entity"
	"taskandtime_backend/internal/feature/auth/transport/http/dto"
	"taskandtime_backend/internal/feature/auth/usecase"
)

// UserUsecase はプロフィール操作のユースケースを定義します。
type UserUsecase interface {
	FindAll(ctx context.Context) ([]entity.User, error)
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	FindIDByEmail(ctx context.Context, email string) (uint, error)
	Update(ctx context.Context, id uint, in usecase.ProfileInput) (*entity.User, error)
	Patch(ctx context.Context, id uint, in usecase.ProfileInput) (*entity.User, error)
	Delete(ctx context.Context, id uint) error
}

// UserHandler はプロフィールCRUDのHTTPリクエストを処理します。
type UserHandler struct {
	users UserUsecase
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(users UserUsecase) *UserHandler {
	return &UserHandler{users: users}
}

// FindAll は全ユーザーを返します。
func (h *UserHandler) FindAll(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	users, err := h.users.FindAll(ctx)
	if err != nil {
		respondError(c, "find all users", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserList(users))
}

// FindByID はユーザーを返します。存在しないIDの場合はnullを返します。
func (h *UserHandler) FindByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.users.FindByID(ctx, id)
	if err != nil {
		respondError(c, "find user", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

// FindIDByEmail はクエリパラメータemailをユーザーIDに解決します。
func (h *UserHandler) FindIDByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "email is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, err := h.users.FindIDByEmail(ctx, email)
	if err != nil {
		respondError(c, "find id by email", err)
		return
	}
	c.JSON(http.StatusOK, id)
}

// Update はプロフィールを置き換えます。存在しないIDの場合はnullを返します。
func (h *UserHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// Replace はUpdateと同じですが、存在しないIDの場合は404を返します。
func (h *UserHandler) Replace(c *gin.Context) {
	h.update(c, true)
}

func (h *UserHandler) update(c *gin.Context, strict bool) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UserPayload
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.users.Update(ctx, id, profileInput(req))
	if err != nil {
		respondError(c, "update user", err)
		return
	}
	if user == nil && strict {
		respondError(c, "update user", usecase.ErrUserNotFound)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

// Patch はペイロードに含まれるフィールドのみを適用します。
func (h *UserHandler) Patch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UserPayload
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.users.Patch(ctx, id, profileInput(req))
	if err != nil {
		respondError(c, "patch user", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

// Delete はユーザーのトークンを失効させてから削除します。
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.users.Delete(ctx, id); err != nil {
		respondError(c, "delete user", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func profileInput(req dto.UserPayload) usecase.ProfileInput {
	in := usecase.ProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Contact:  req.Contact,
	}
	if req.Role != nil {
		r := entity.Role(*req.Role)
		in.Role = &r
	}
	return in
}
