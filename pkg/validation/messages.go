package validation

import (
	"fmt"
	"strings"
)

// DefaultMessage renders the generic message for a failed validation tag.
func DefaultMessage(field, tag, param string) string {
	field = strings.ToLower(field)

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "len":
		return fmt.Sprintf("%s must be exactly %s long", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, param)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "alphanum":
		return fmt.Sprintf("%s may only contain letters and numbers", field)
	case "boolean":
		return fmt.Sprintf("%s must be true or false", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "hexadecimal":
		return fmt.Sprintf("%s must be hexadecimal", field)
	case "dive":
		return fmt.Sprintf("%s contains an invalid item", field)
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", field)
	case TagSkillLevel:
		return fmt.Sprintf("%s must be one of: beginner, intermediate, advanced, expert", field)
	case TagNoHTML:
		return fmt.Sprintf("%s must not contain HTML", field)
	case TagTheme:
		return fmt.Sprintf("%s must be one of: light, dark, auto", field)
	case TagMaxBytes:
		return fmt.Sprintf("%s must be at most %s bytes", field, param)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

var customMessages = map[string]map[string]string{
	"email": {
		"required": "email is required",
		"email":    "please provide a valid email",
	},
	"password": {
		"required": "password is required",
		"min":      "password must be at least 8 characters",
		"maxbytes": "password must be at most 72 bytes",
	},
	"name": {
		"min": "name must be between 2 and 100 characters",
		"max": "name must be between 2 and 100 characters",
	},
	"role": {
		"oneof": "role must be student, instructor or admin",
	},
}

// CustomMessage returns field specific overrides keyed by tag, or nil.
func CustomMessage(field string) map[string]string {
	return customMessages[strings.ToLower(field)]
}
