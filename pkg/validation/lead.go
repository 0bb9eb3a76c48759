// Package validation provides common validation utilities.
package validation

import "strings"

// Messages shown next to the capture form fields. User-facing, pt-BR.
const (
	MsgNameRequired  = "Informe o seu nome."
	MsgPhoneRequired = "Informe o seu telefone."
	MsgEmailRequired = "Informe o seu e-mail."
)

// ValidateLead checks the required capture fields and returns a map of field
// name to user-facing message for every missing one. A nil map means the
// submission is valid. Email is only checked for presence, not format.
func ValidateLead(name, phone, email string) map[string]string {
	errors := make(map[string]string)
	if strings.TrimSpace(name) == "" {
		errors["name"] = MsgNameRequired
	}
	if strings.TrimSpace(phone) == "" {
		errors["phone"] = MsgPhoneRequired
	}
	if strings.TrimSpace(email) == "" {
		errors["email"] = MsgEmailRequired
	}
	if len(errors) == 0 {
		return nil
	}
	return errors
}
