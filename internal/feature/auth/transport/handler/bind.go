package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"taskandtime_backend/internal/feature/auth/transport/http/dto"
)

// FieldError はリクエストボディで不正だったフィールドを表します。
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

var registerTagNames sync.Once

// useJSONFieldNames はバリデーションエラーのフィールド名をGoのフィールド名ではなくjson名にします。
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(sf reflect.StructField) string {
			name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return sf.Name
			}
			return name
		})
	})
}

// bindJSON はボディをoutにバインドし、失敗時は400を書き込みます。
func bindJSON(c *gin.Context, out any) bool {
	useJSONFieldNames()

	err := c.ShouldBindJSON(out)
	if err == nil {
		return true
	}

	res := dto.ErrorRes{Error: "invalid request"}
	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   fe.Field(),
				Rule:    fe.Tag(),
				Param:   fe.Param(),
				Message: validationMessage(fe.Tag(), fe.Param()),
			})
		}
		res.Fields = fields
	case errors.As(err, &typeErr):
		res.Fields = []FieldError{{Field: typeErr.Field, Rule: "type", Message: "must be of type " + typeErr.Type.String()}}
	}

	c.JSON(http.StatusBadRequest, res)
	return false
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + param + " characters"
	default:
		return "failed " + rule + " validation"
	}
}
