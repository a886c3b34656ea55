// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskandtime_backend/internal/feature/auth/domain/entity"
	"taskandtime_backend/internal/feature/auth/transport/http/dto"
	"taskandtime_backend/internal/feature/auth/usecase"
	jwtmw "taskandtime_backend/internal/platform/jwt"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (usecase.RegisterOutcome, error)
	RegisterManager(ctx context.Context, in usecase.RegisterInput) (usecase.RegisterOutcome, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	CurrentUserID(ctx context.Context) (uint, error)
}

// AuthMetrics はログインと登録の結果を受け取ります。*observability.Promが実装します。
type AuthMetrics interface {
	ObserveLogin(result string)
	ObserveRegistration(role, result string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveLogin(string)               {}
func (noopMetrics) ObserveRegistration(string, string) {}

// AuthHandler は登録・ログイン・ログアウトのHTTPリクエストを処理します。
type AuthHandler struct {
	auth    AuthUsecase
	metrics AuthMetrics
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。metricsはnilでも構いません。
func NewAuthHandler(auth AuthUsecase, metrics AuthMetrics) *AuthHandler {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &AuthHandler{auth: auth, metrics: metrics}
}

// Register はチームメンバーのアカウントを作成します。
// - バリデーションエラー時は400を返却
// - メール重複時もメッセージ付きで200を返却
func (h *AuthHandler) Register(c *gin.Context) {
	h.register(c, entity.RoleTeamMember, h.auth.Register)
}

// RegisterManager はプロジェクトマネージャーのアカウントを作成します。
func (h *AuthHandler) RegisterManager(c *gin.Context) {
	h.register(c, entity.RoleProjectManager, h.auth.RegisterManager)
}

func (h *AuthHandler) register(
	c *gin.Context,
	role entity.Role,
	fn func(context.Context, usecase.RegisterInput) (usecase.RegisterOutcome, error),
) {
	var req dto.RegisterReq
	if !bindJSON(c, &req) {
		h.metrics.ObserveRegistration(role.String(), "invalid")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	out, err := fn(ctx, usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Contact:  req.Contact,
	})
	if err != nil {
		h.metrics.ObserveRegistration(role.String(), "error")
		respondError(c, "register", err)
		return
	}

	result := "created"
	if !out.Created {
		result = "duplicate"
	}
	h.metrics.ObserveRegistration(role.String(), result)
	slog.InfoContext(ctx, "registration handled", "role", role, "result", result, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.MessageRes{Message: out.Message})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - 認証失敗時は401を返却
// - 成功時はJWTトークン付きで200を返却し、以前のトークンは無効になる
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if !bindJSON(c, &req) {
		h.metrics.ObserveLogin("invalid")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	token, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			h.metrics.ObserveLogin("invalid_credentials")
		} else {
			h.metrics.ObserveLogin("error")
		}
		respondError(c, "login", err)
		return
	}

	h.metrics.ObserveLogin("success")
	slog.InfoContext(ctx, "user login successful", "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.TokenRes{Token: token})
}

// Logout はリクエストの認証に使われたトークンを失効させます。
func (h *AuthHandler) Logout(c *gin.Context) {
	raw, ok := jwtmw.TokenFromContext(c)
	if !ok {
		respondError(c, "logout", usecase.ErrNoAuthenticatedPrincipal)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.auth.Logout(ctx, raw); err != nil {
		respondError(c, "logout", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CurrentID は認証済みユーザーのIDをJSONの数値として返します。
func (h *AuthHandler) CurrentID(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, err := h.auth.CurrentUserID(ctx)
	if err != nil {
		respondError(c, "current id", err)
		return
	}
	c.JSON(http.StatusOK, id)
}
