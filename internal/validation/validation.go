// Package validation wraps go-playground/validator with the custom tags used
// by request bodies and inferred candidates.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
)

// custom validation tags
const (
	notBlankTag = "notblank"
	categoryTag = "category"
	isoDateTag  = "isodate"
)

// Validator validates structs and renders field errors keyed by JSON name.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a validator with english messages and the custom tags registered.
func New() *Validator {
	validate := validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(fmt.Sprintf("validation: register default translations: %v", err))
	}

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(validate, notBlankTag, notBlankValidation)
	mustRegister(validate, categoryTag, categoryValidation)
	mustRegister(validate, isoDateTag, isoDateValidation)

	v := &Validator{validate: validate, translator: translator}
	v.registerCustomTranslations(notBlankTag, categoryTag, isoDateTag)
	return v
}

// mustRegister panics when a custom tag cannot be registered.
func mustRegister(validate *validator.Validate, tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Struct validates s. The returned error, if any, is validator.ValidationErrors.
func (v *Validator) Struct(s any) error {
	return v.validate.Struct(s)
}

// Errors flattens a validation error into field -> message.
// Errors that are not validation errors come back under the "_" key.
func (v *Validator) Errors(err error) map[string]string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(v.translator)
	}
	return out
}

// the default translations are already registered, so a noop register func is enough
func (v *Validator) registerCustomTranslations(tags ...string) {
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range tags {
		if err := v.validate.RegisterTranslation(tag, v.translator, registerFn, translateCustomErrs); err != nil {
			panic(fmt.Sprintf("validation: register translation %q: %v", tag, err))
		}
	}
}

func translateCustomErrs(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case categoryTag:
		return fe.Field() + " must be one of Exam, Assignment, Reading, Project, Other"
	case isoDateTag:
		return fe.Field() + " must be a valid date in YYYY-MM-DD format"
	default:
		return fe.Error()
	}
}

func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func categoryValidation(fl validator.FieldLevel) bool {
	return models.EventType(fl.Field().String()).Valid()
}

func isoDateValidation(fl validator.FieldLevel) bool {
	return models.Date(fl.Field().String()).Valid()
}
