package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Custom rule tags registered alongside the built-in ones. Keep these
// in sync with the storefront enumerations they mirror.
const (
	TagPriority    = "priority"     // low | medium | high | urgent
	TagOrderStatus = "order_status" // pending | paid | shipped | delivered | cancelled
	TagSlug        = "slug"         // lowercase letters, digits, hyphen separators
)

var (
	once     sync.Once
	validate *validator.Validate

	priorityValues    = []string{"low", "medium", "high", "urgent"}
	orderStatusValues = []string{"pending", "paid", "shipped", "delivered", "cancelled"}
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

// ValidationErrors collects multiple validation failures.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(v))
	for i, err := range v {
		if err.Param != "" {
			parts[i] = err.Field + " failed on " + err.Tag + "=" + err.Param
		} else {
			parts[i] = err.Field + " failed on " + err.Tag
		}
	}
	return strings.Join(parts, "; ")
}

// ValidateStruct validates a struct using registered rules.
func ValidateStruct(s interface{}) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	if ve, ok := err.(validator.ValidationErrors); ok {
		failures := make(ValidationErrors, 0, len(ve))
		for _, fe := range ve {
			failures = append(failures, ValidationError{
				Field: fe.Field(),
				Tag:   fe.Tag(),
				Param: fe.Param(),
			})
		}
		return failures
	}

	return err
}

// RegisterValidation exposes underlying validator custom rules.
func RegisterValidation(tag string, fn validator.Func) error {
	return getValidator().RegisterValidation(tag, fn)
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(jsonFieldName)
		registerStorefrontRules(validate)
	})
	return validate
}

// jsonFieldName reports failures against the wire name clients sent,
// not the Go struct field.
func jsonFieldName(fld reflect.StructField) string {
	name := fld.Tag.Get("json")
	if name == "" {
		return fld.Name
	}

	comma := strings.Index(name, ",")
	if comma != -1 {
		name = name[:comma]
	}

	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func registerStorefrontRules(v *validator.Validate) {
	_ = v.RegisterValidation(TagPriority, oneOf(priorityValues))
	_ = v.RegisterValidation(TagOrderStatus, oneOf(orderStatusValues))
	_ = v.RegisterValidation(TagSlug, validSlug)
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, candidate := range allowed {
			if value == candidate {
				return true
			}
		}
		return false
	}
}

// validSlug accepts lowercase alphanumeric segments joined by single
// hyphens, the form the slug generator emits.
func validSlug(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}

	lastHyphen := true // a leading hyphen is as invalid as a double one
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			lastHyphen = false
		case r == '-':
			if lastHyphen {
				return false
			}
			lastHyphen = true
		default:
			return false
		}
	}
	return !lastHyphen
}
