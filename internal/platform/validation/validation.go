// Package validation wraps go-playground/validator with English messages
// keyed by json field names.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"crewshift/internal/domain/apperr"
)

type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}
	return &Validator{validate: validate, trans: trans}
}

// Struct returns one issue per failing field, in declaration order.
func (v *Validator) Struct(value any) []apperr.FieldIssue {
	err := v.validate.Struct(value)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []apperr.FieldIssue{{Field: "", Reason: err.Error()}}
	}
	issues := make([]apperr.FieldIssue, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		issues = append(issues, apperr.FieldIssue{
			Field:  fieldErr.Field(),
			Reason: fieldErr.Translate(v.trans),
		})
	}
	return issues
}
