package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/geocoder89/bloghub/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

var registerJSONNames sync.Once

// useJSONNames makes validator report fields by their json tag, so error
// details name what the client actually sent.
func useJSONNames() {
	registerJSONNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(sf reflect.StructField) string {
			return jsonName(sf)
		})
	})
}

// BindJSON decodes and validates the request body. A missing required field
// answers 422 naming the first such field, a password confirmation mismatch
// answers PASSWORDS_NOT_SIMILAR, and anything else is a generic 400.
func BindJSON(ctx *gin.Context, out any) bool {
	useJSONNames()

	err := ctx.ShouldBindJSON(out)
	if err == nil {
		return true
	}

	details := bindErrorDetails(err, out)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		if fe, ok := firstWithTag(verrs, "required"); ok {
			appErr := apperr.MissingField(fe.Field())
			RespondError(ctx, appErr.Kind.Status(), appErr.Code, appErr.Message, details)
			return false
		}

		if _, ok := firstWithTag(verrs, "eqfield"); ok {
			appErr := apperr.ErrPasswordsNotSimilar
			RespondError(ctx, appErr.Kind.Status(), appErr.Code, appErr.Message, details)
			return false
		}
	}

	RespondBadRequest(ctx, "Invalid request body", details)

	return false
}

func firstWithTag(verrs validator.ValidationErrors, tag string) (validator.FieldError, bool) {
	for _, fe := range verrs {
		if fe.Tag() == tag {
			return fe, true
		}
	}

	return nil, false
}

func bindErrorDetails(err error, out any) any {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		root := structType(out)

		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			param := fe.Param()
			if fe.Tag() == "eqfield" {
				param = paramJSONName(root, param)
			}

			fields = append(fields, FieldError{
				Field:   fe.Field(),
				Rule:    fe.Tag(),
				Param:   param,
				Message: validationMessage(fe.Tag(), param),
			})
		}

		return gin.H{"fields": fields}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := strings.TrimSpace(typeErr.Field)

		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{{
				Field:   field,
				Rule:    "type",
				Message: fmt.Sprintf("must be of type %s", typeErr.Type.String()),
			}},
		}
	}

	return gin.H{"reason": err.Error()}
}

func structType(v any) reflect.Type {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	return t
}

// paramJSONName turns a sibling struct field name, as eqfield reports it,
// into that field's json name.
func paramJSONName(root reflect.Type, field string) string {
	if root == nil {
		return field
	}

	if sf, ok := root.FieldByName(field); ok {
		return jsonName(sf)
	}

	return field
}

func jsonName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return sf.Name
	}

	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "eqfield":
		return "must match " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
