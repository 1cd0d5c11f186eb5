package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// validate shares gin's "binding" tags so services check the same rules as
// request binding does.
var validate = newValidator()

var registerBinding sync.Once

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// RegisterBindingFieldNames makes gin's request binding report JSON field
// names, matching ValidateStruct. Call it before serving requests.
func RegisterBindingFieldNames() {
	registerBinding.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(jsonFieldName)
		}
	})
}

// ValidateStruct runs the binding rules of s and converts failures into a
// *ValidationError.
func ValidateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		return BindingError(err)
	}
	return nil
}

// BindingError converts a gin binding or validator error into a
// *ValidationError. Malformed bodies become a plain ErrValidation.
func BindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		ve := NewValidationError()
		for _, fe := range verrs {
			ve.Add(fieldPath(fe.Namespace()), fieldMessage(fe))
		}
		return ve
	}
	return fmt.Errorf("%w: malformed request body", ErrValidation)
}

// fieldPath turns "CheckoutRequest.Customer.Email" into "customer.email".
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		r, size := utf8.DecodeRuneInString(p)
		parts[i] = string(unicode.ToLower(r)) + p[size:]
	}
	return strings.Join(parts, ".")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "numeric":
		return "must contain digits only"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	}
	return "is invalid"
}
