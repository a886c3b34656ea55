package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskandtime_backend/internal/feature/auth/transport/http/dto"
	"taskandtime_backend/internal/feature/auth/usecase"
)

// requestTimeout はハンドラーからのユースケース呼び出しの上限時間です。
const requestTimeout = 3 * time.Second

// respondError はユースケースのエラーをステータスコードに変換します。
// 未知のエラーはログに記録し、詳細を含めず500を返します。
func respondError(c *gin.Context, op string, err error) {
	status, msg := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, usecase.ErrInvalidCredentials.Error()
	case errors.Is(err, usecase.ErrNoAuthenticatedPrincipal):
		status, msg = http.StatusUnauthorized, usecase.ErrNoAuthenticatedPrincipal.Error()
	case errors.Is(err, usecase.ErrTokenNotFound):
		status, msg = http.StatusUnauthorized, "invalid token"
	case errors.Is(err, usecase.ErrUserNotFound):
		status, msg = http.StatusNotFound, usecase.ErrUserNotFound.Error()
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		status, msg = http.StatusConflict, usecase.ErrEmailAlreadyExists.Error()
	case errors.Is(err, usecase.ErrInvalidRole):
		status, msg = http.StatusBadRequest, usecase.ErrInvalidRole.Error()
	case errors.Is(err, context.DeadlineExceeded):
		status, msg = http.StatusGatewayTimeout, "request timed out"
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), op+" failed", "error", err, "remote_addr", c.ClientIP())
	} else {
		slog.WarnContext(c.Request.Context(), op+" rejected", "error", err, "remote_addr", c.ClientIP())
	}
	c.JSON(status, dto.ErrorRes{Error: msg})
}

// parseID はパスパラメータ:idを読み取り、正の整数でない場合は400を書き込みます。
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid id"})
		return 0, false
	}
	return uint(id), true
}
