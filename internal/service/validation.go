package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/snuggli/internal/apperr"
)

var inputValidator = validator.New(validator.WithRequiredStructEnabled())

// FieldError 描述单个字段的校验失败原因，作为 VALIDATION_ERROR 的 details。
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// validateInput 运行结构体上的 validate 标签，失败时返回带字段明细的校验错误。
func validateInput(input any) error {
	err := inputValidator.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.CodeValidation, err, "invalid input")
	}
	fields := make([]FieldError, 0, len(verrs))
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
		names = append(names, fe.Field())
	}
	return apperr.New(apperr.CodeValidation, fmt.Sprintf("invalid fields: %s", strings.Join(names, ", "))).WithDetails(fields)
}

func persistenceError(err error, action string) error {
	return apperr.Wrap(apperr.CodePersistence, err, action)
}
