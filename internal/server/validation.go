package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		vld := validator.New(validator.WithRequiredStructEnabled())
		vld.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		// decimal.Decimal is read directly by the rules below; registering
		// a custom type func for it would loop.
		for tag, fn := range decimalRules {
			mustRegister(vld, tag, fn)
		}
		validate = vld
	})
	return validate
}

var decimalRules = map[string]validator.Func{
	"positive_decimal": func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && value.IsPositive()
	},
	"nonnegative_decimal": func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && !value.IsNegative()
	},
}

func mustRegister(vld *validator.Validate, tag string, fn validator.Func) {
	if err := vld.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// bindJSON decodes the body into req and checks its validate tags.
func bindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return invalidRequestError()
	}
	return validateStruct(req)
}

func validateStruct(req any) error {
	err := requestValidator().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return invalidRequestError()
	}
	out := ValidationErrors{Errors: make([]ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fieldPath(fe.Namespace()),
			Code:    "invalid_" + fieldName(fe.Field()),
			Message: validationMessage(fe),
		})
	}
	return &out
}

var validationMessages = map[string]string{
	"required":            "is required",
	"min":                 "is too short",
	"max":                 "is too long",
	"oneof":               "must be one of [",
	"positive_decimal":    "must be a positive amount",
	"nonnegative_decimal": "must not be negative",
	"dive":                "is invalid",
}

func validationMessage(fe validator.FieldError) string {
	msg, ok := validationMessages[fe.Tag()]
	if !ok {
		return "failed '" + fe.Tag() + "' check"
	}
	if fe.Tag() == "oneof" {
		return msg + fe.Param() + "]"
	}
	return msg
}

// fieldPath drops the struct name from "createInvoiceRequest.lines[0].amount".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, part := range parts {
		parts[i] = toSnakeCase(part)
	}
	return strings.Join(parts, ".")
}

func fieldName(field string) string {
	name, _, _ := strings.Cut(field, "[")
	return toSnakeCase(name)
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
