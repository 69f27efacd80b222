package delivery

import (
	"fmt"
	"html"
	"reflect"
	"strings"

	"github.com/dmitrymomot/notifykit/core/email"
	"github.com/dmitrymomot/notifykit/core/sanitizer"
	"github.com/dmitrymomot/notifykit/core/validator"
	"github.com/dmitrymomot/notifykit/pkg/inn"
)

func init() {
	validator.RegisterValidator("inn", func(field string, value reflect.Value, _ []string) validator.Rule {
		return validator.Rule{
			Check: func() bool { return value.String() == "" || inn.Validate(value.String()) },
			Error: validator.ValidationError{
				Field:             field,
				Message:           "must be a valid INN",
				TranslationKey:    "validation.inn",
				TranslationValues: map[string]any{"field": field},
			},
		}
	})
}

// Feedback is a contact form submission.
type Feedback struct {
	Name    string `json:"name" sanitize:"single_line" validate:"required;max:200"`
	Email   string `json:"email" sanitize:"trim" validate:"required;email"`
	Phone   string `json:"phone,omitempty" sanitize:"single_line,max:50"`
	Company string `json:"company,omitempty" sanitize:"single_line,max:200"`
	INN     string `json:"inn,omitempty" sanitize:"no_whitespace" validate:"inn"`
	Message string `json:"message" sanitize:"text" validate:"required;max:5000"`
}

// ValidationError lists invalid fields by JSON name.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %d invalid field(s)", ErrInvalidInput, len(e))
}

func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// Normalize cleans f in place and validates it.
func (f *Feedback) Normalize() error {
	if err := sanitizer.SanitizeStruct(f); err != nil {
		return err
	}
	if err := validator.ValidateStruct(f); err != nil {
		if verrs := validator.ExtractValidationErrors(err); verrs != nil {
			return ValidationError(verrs.Fields())
		}
		return err
	}
	return nil
}

// Mail renders f as an email to recipients.
func (f Feedback) Mail(recipients []string) email.Message {
	var b strings.Builder
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "<p><b>%s:</b> %s</p>\n", label, html.EscapeString(value))
	}
	row("Name", f.Name)
	row("Email", f.Email)
	row("Phone", f.Phone)
	row("Company", f.Company)
	row("INN", f.INN)
	b.WriteString("<p>")
	b.WriteString(strings.ReplaceAll(html.EscapeString(f.Message), "\n", "<br>"))
	b.WriteString("</p>\n")

	return email.Message{
		To:       append([]string(nil), recipients...),
		Subject:  "Feedback from " + f.Name,
		BodyHTML: b.String(),
		Tag:      "feedback",
	}
}
