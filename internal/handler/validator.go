package handler

import (
	"errors"
	"reflect"
	"strings"

	"pink-basket/internal/apperror"

	"github.com/go-playground/validator/v10"
)

// RequestValidator plugs go-playground/validator into echo's c.Validate and
// reports the first failing field by its JSON name.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &RequestValidator{validate: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.Validation("request", "invalid request")
	}

	fe := fieldErrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return apperror.Validation(field, "%s is required", field)
	case "email":
		return apperror.Validation(field, "%s must be a valid email address", field)
	case "gte", "min":
		return apperror.Validation(field, "%s must be at least %s", field, fe.Param())
	case "oneof":
		return apperror.Validation(field, "%s must be one of: %s", field, fe.Param())
	}
	return apperror.Validation(field, "%s is invalid", field)
}
