package action

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"todo-api/internal/core/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误里的字段名用 json 名
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func label(field string) string { return strings.ReplaceAll(field, "_", " ") }

func message(field, tag, param string) string {
	l := label(field)
	switch tag {
	case "required":
		return fmt.Sprintf("The %s field is required.", l)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", l)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", l, param)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", l, param)
	case "eqfield":
		return fmt.Sprintf("The %s field confirmation does not match.", l)
	case "string":
		return fmt.Sprintf("The %s field must be a string.", l)
	case "boolean":
		return fmt.Sprintf("The %s field must be true or false.", l)
	case "unique":
		return fmt.Sprintf("The %s has already been taken.", l)
	default:
		return fmt.Sprintf("The %s field is invalid.", l)
	}
}

// checkStruct 把 validator 的错误转成字段级错误
func checkStruct(in any, fields apperr.Fields) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	for _, fe := range ves {
		fields.Add(fe.Field(), message(fe.Field(), fe.Tag(), fe.Param()))
	}
	return nil
}

// checkVar validates a single value against tags; the first failing tag is reported.
func checkVar(fields apperr.Fields, field string, val any, tags string) {
	err := validate.Var(val, tags)
	if err == nil {
		return
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fields.Add(field, message(field, ves[0].Tag(), ves[0].Param()))
		return
	}
	fields.Add(field, message(field, "", ""))
}
