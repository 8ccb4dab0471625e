package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strings"

	msuuid "github.com/fhuszti/filemgr-ms-go/internal/uuid"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var wxhPattern = regexp.MustCompile(`^[1-9]\d*x[1-9]\d*$`)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Tell the validator to use the JSON tag as the “field name”
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		// Grab the value of `json:"foo,omitempty"`
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			// fallback to the Go field name or skip
			return fld.Name
		}
		return name
	})

	// UUIDs are validated through their textual form
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if id, ok := field.Interface().(msuuid.UUID); ok {
			return id.String()
		}
		return nil
	}, msuuid.UUID{})

	// "WxH" rendition sizes
	_ = validate.RegisterValidation("wxh", func(fl validator.FieldLevel) bool {
		return wxhPattern.MatchString(fl.Field().String())
	})
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// ValidateVar validates a single value against a tag string.
func ValidateVar(v interface{}, tag string) error {
	return validate.Var(v, tag)
}

func ErrorsToJson(validationErrs error) (string, error) {
	errsMap := make(map[string]string)
	var fieldErrs validator.ValidationErrors
	if !errors.As(validationErrs, &fieldErrs) {
		return "", validationErrs
	}
	for _, fieldErr := range fieldErrs {
		errsMap[fieldErr.Field()] = fieldErr.Tag()
	}

	errsJson, err := json.Marshal(errsMap)
	if err != nil {
		return "", err
	}
	return string(errsJson), nil
}
