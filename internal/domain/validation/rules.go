package validation

import "regexp"

// namePattern restricts names to letters and spaces.
var namePattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)

// Rules is the fixed table of reusable field rules for the standard signup
// and profile fields. The map is rebuilt per call so callers can tweak a
// copy without affecting others.
func Rules() map[string]Rule {
	return map[string]Rule{
		"email": {
			Required: true,
			Sanitize: dropOK(SanitizeEmail),
			Pattern:  emailPattern,
			Message:  "Please enter a valid email address",
		},
		"password": {
			Required:  true,
			Sanitize:  dropOK(SanitizePassword),
			MinLength: 8,
			Message:   "Password must be at least 8 characters with uppercase, lowercase, and number",
		},
		"phone": {
			Required: true,
			Sanitize: dropOK(SanitizePhone),
			Pattern:  phonePattern,
			Message:  "Please enter a valid phone number",
		},
		"name": {
			Required:  true,
			Sanitize:  SanitizeInput,
			MinLength: 2,
			MaxLength: 50,
			Pattern:   namePattern,
			Message:   "Name must contain only letters and spaces",
		},
	}
}

// dropOK adapts a rejecting sanitizer to the Rule.Sanitize signature.
// Rejection already maps to the empty string.
func dropOK(fn func(string) (string, bool)) func(string) string {
	return func(s string) string {
		out, _ := fn(s)
		return out
	}
}
