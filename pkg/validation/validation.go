package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	appErrors "github.com/noah-isme/tutor-desk-api/pkg/errors"
)

var (
	decimalTag   = "decimal"
	decimalText  = "{0} must be a decimal number with at most two fractional digits"
	decimalRegex = regexp.MustCompile(`^-?\d+(\.\d{1,2})?$`)

	hexColorTag  = "hexcolor_short"
	hexColorText = "{0} must be a #rrggbb color"
	hexColorRe   = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

	requiredText = "{0} is required"
)

// Validator bundles a validator instance with its English translator.
type Validator struct {
	*validator.Validate
	translator ut.Translator
}

// New builds a validator using JSON field names and English messages.
func New() *Validator {
	validate := validator.New()
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(decimalTag, func(fl validator.FieldLevel) bool {
		return decimalRegex.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	registerTranslation(validate, translator, decimalTag, decimalText, false)

	_ = validate.RegisterValidation(hexColorTag, func(fl validator.FieldLevel) bool {
		return hexColorRe.MatchString(fl.Field().String())
	})
	registerTranslation(validate, translator, hexColorTag, hexColorText, false)

	registerTranslation(validate, translator, "required", requiredText, true)

	return &Validator{Validate: validate, translator: translator}
}

// Check validates the struct and converts failures into a typed validation error.
func (v *Validator) Check(payload interface{}, message string) error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}
	appErr := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fieldPath(fe)] = fe.Translate(v.translator)
		}
		appErr.Details = details
	}
	return appErr
}

// fieldPath drops the root struct name from the namespace, e.g. "CreateLessonRequest.studentId" -> "studentId".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override bool) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}
