package i18n

import (
	"errors"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// Localizer translates keys for one locale.
type Localizer struct {
	lang     string
	messages map[string]string
	fallback map[string]string
	trans    ut.Translator
}

// Lang returns the locale code, e.g. "en".
func (l *Localizer) Lang() string {
	return l.lang
}

// Translate returns the message for key, the default locale's message when
// this locale lacks it, or the key itself.
func (l *Localizer) Translate(key string) string {
	if msg, ok := l.messages[key]; ok {
		return msg
	}
	if msg, ok := l.fallback[key]; ok {
		return msg
	}
	return key
}

// FieldErrors renders validator errors keyed by field name. Errors that are
// not validator.ValidationErrors yield nil. The validator must have been
// passed to Bundle.RegisterValidation.
func (l *Localizer) FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(l.trans)
	}
	return out
}
