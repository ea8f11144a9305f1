package api

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var phoneStripPattern = regexp.MustCompile(`[\s\-()]`)

// CustomValidator はEcho用のカスタムバリデーター
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator は新しいバリデーターを作成する
// phone ルール: 空白・ハイフン・括弧を除去した上で10〜15桁の数字
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("phone", validatePhone)
	return &CustomValidator{validator: v}
}

// Validate はリクエストのバリデーションを実行する
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(400, err.Error())
	}
	return nil
}

func validatePhone(fl validator.FieldLevel) bool {
	normalized := phoneStripPattern.ReplaceAllString(fl.Field().String(), "")
	if len(normalized) < 10 || len(normalized) > 15 {
		return false
	}
	for _, r := range normalized {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
