package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule describes the validation applied to one form field. Checks run in a
// fixed order -- sanitize, required, pattern, min length, max length -- and
// the first failing check wins; later checks for that field are skipped.
type Rule struct {
	// Required rejects values that are empty after sanitization and trim.
	Required bool
	// Sanitize transforms the raw value before any checks. A sanitizer
	// that rejects the value returns the empty string.
	Sanitize func(string) string
	// Pattern must match the sanitized value, when both are non-empty.
	Pattern *regexp.Regexp
	// MinLength and MaxLength bound the sanitized value's length.
	// Zero means unbounded.
	MinLength int
	MaxLength int
	// Message overrides the generic pattern-failure message.
	Message string
}

// Result is the outcome of validating a form.
type Result struct {
	// Valid is true when no field recorded an error.
	Valid bool
	// Errors maps field name to its first failing check's message.
	Errors map[string]string
	// Sanitized holds the sanitized value of every field that passed.
	Sanitized map[string]string
}

// ValidateForm runs each field of form through its rule. Fields without a
// rule are ignored entirely: neither validated nor echoed into the result.
func ValidateForm(form map[string]string, rules map[string]Rule) Result {
	errors := make(map[string]string)
	sanitized := make(map[string]string)

	for field, value := range form {
		rule, ok := rules[field]
		if !ok {
			continue
		}

		clean := value
		if rule.Sanitize != nil {
			clean = rule.Sanitize(value)
		}

		if rule.Required && strings.TrimSpace(clean) == "" {
			errors[field] = fmt.Sprintf("%s is required", field)
			continue
		}

		if clean != "" && rule.Pattern != nil && !rule.Pattern.MatchString(clean) {
			message := rule.Message
			if message == "" {
				message = fmt.Sprintf("%s is invalid", field)
			}
			errors[field] = message
			continue
		}

		if clean != "" && rule.MinLength > 0 && len(clean) < rule.MinLength {
			errors[field] = fmt.Sprintf("%s must be at least %d characters", field, rule.MinLength)
			continue
		}

		if clean != "" && rule.MaxLength > 0 && len(clean) > rule.MaxLength {
			errors[field] = fmt.Sprintf("%s must be no more than %d characters", field, rule.MaxLength)
			continue
		}

		sanitized[field] = clean
	}

	return Result{
		Valid:     len(errors) == 0,
		Errors:    errors,
		Sanitized: sanitized,
	}
}
