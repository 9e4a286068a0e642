// Package validation configures request validation and turns validator
// errors into client facing messages.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	TagSkillLevel = "skilllevel"
	TagNoHTML     = "nohtml"
	TagTheme      = "theme"
	TagMaxBytes   = "maxbytes"
)

var (
	htmlTag = regexp.MustCompile(`<\s*/?\s*[a-zA-Z][^>]*>`)

	skillLevels = map[string]bool{"beginner": true, "intermediate": true, "advanced": true, "expert": true}
	themes      = map[string]bool{"light": true, "dark": true, "auto": true}

	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator. It reads `binding` struct tags,
// reports json field names and knows the custom tags.
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.SetTagName("binding")
		if err := Register(instance); err != nil {
			panic(err)
		}
	})
	return instance
}

// Register installs the json field name resolver and the custom tags on v.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	if err := v.RegisterValidation(TagSkillLevel, func(fl validator.FieldLevel) bool {
		return skillLevels[fl.Field().String()]
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation(TagTheme, func(fl validator.FieldLevel) bool {
		return themes[fl.Field().String()]
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation(TagMaxBytes, maxBytes); err != nil {
		return err
	}
	return v.RegisterValidation(TagNoHTML, func(fl validator.FieldLevel) bool {
		return !htmlTag.MatchString(fl.Field().String())
	})
}

// maxBytes bounds the encoded length of a string, unlike max which counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Messages flattens a validation error into one message per failed field.
// Errors that did not come from the validator yield nil.
func Messages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		if custom := CustomMessage(e.Field()); custom != nil {
			if msg, ok := custom[e.Tag()]; ok {
				messages = append(messages, msg)
				continue
			}
		}
		messages = append(messages, DefaultMessage(e.Field(), e.Tag(), e.Param()))
	}
	return messages
}

// GinValidator plugs the shared validator into gin's binding package so
// ShouldBindJSON and ShouldBindQuery use the same tags and messages.
type GinValidator struct{}

func (GinValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return Validator().Struct(obj)
}

func (GinValidator) Engine() any {
	return Validator()
}
