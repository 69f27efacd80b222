package validator

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// ValidatorFunc is a function that validates a value and returns a Rule
type ValidatorFunc func(field string, value reflect.Value, params []string) Rule

var (
	registryMu sync.RWMutex
	registry   = map[string]ValidatorFunc{
		"required": requiredValidator,
		"min":      minValidator,
		"max":      maxValidator,
		"email":    emailValidator,
		"numeric":  numericValidator,
		"in":       inValidator,
	}
)

// RegisterValidator adds a custom validator function to the registry
func RegisterValidator(name string, fn ValidatorFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = fn
}

// ValidateStruct validates a struct based on its field tags. Errors are
// reported under the JSON name of a field when it has one.
func ValidateStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return fmt.Errorf("validator: must pass a pointer to struct")
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("validator: must pass a pointer to struct")
	}

	var errors ValidationErrors
	validateStructRecursive(rv, "", &errors)

	if errors.IsEmpty() {
		return nil
	}
	return errors
}

func validateStructRecursive(rv reflect.Value, prefix string, errors *ValidationErrors) {
	rt := rv.Type()

	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		if !field.CanSet() {
			continue
		}

		structField := rt.Field(i)
		tag := structField.Tag.Get("validate")
		if tag == "-" {
			continue
		}

		fieldPath := fieldName(structField)
		if prefix != "" {
			fieldPath = prefix + "." + fieldPath
		}

		// Nested structs are always walked.
		if field.Kind() == reflect.Struct && tag == "" {
			validateStructRecursive(field, fieldPath, errors)
			continue
		}

		if field.Kind() == reflect.Pointer {
			if field.IsNil() {
				if tag != "" {
					validateField(fieldPath, field, tag, errors)
				}
				continue
			}
			elem := field.Elem()
			if elem.Kind() == reflect.Struct && tag == "" {
				validateStructRecursive(elem, fieldPath, errors)
			} else if tag != "" {
				validateField(fieldPath, elem, tag, errors)
			}
			continue
		}

		if tag == "" {
			continue
		}
		validateField(fieldPath, field, tag, errors)
	}
}

func fieldName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return sf.Name
	}
	return name
}

func validateField(fieldPath string, field reflect.Value, tag string, errors *ValidationErrors) {
	// Rules are separated by semicolons, parameters by commas: "required;max:200".
	rules := strings.Split(tag, ";")

	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, ruleStr := range rules {
		ruleStr = strings.TrimSpace(ruleStr)
		if ruleStr == "" {
			continue
		}

		name, paramStr, _ := strings.Cut(ruleStr, ":")
		name = strings.TrimSpace(name)

		var params []string
		if paramStr = strings.TrimSpace(paramStr); paramStr != "" {
			params = strings.Split(paramStr, ",")
			for i := range params {
				params[i] = strings.TrimSpace(params[i])
			}
		}

		if validatorFn, ok := registry[name]; ok {
			rule := validatorFn(fieldPath, field, params)
			if !rule.Check() {
				errors.Add(rule.Error)
			}
		}
	}
}

func pass() Rule {
	return Rule{Check: func() bool { return true }}
}

func requiredValidator(field string, value reflect.Value, _ []string) Rule {
	return Rule{
		Check: func() bool {
			switch value.Kind() {
			case reflect.String:
				return strings.TrimSpace(value.String()) != ""
			case reflect.Slice, reflect.Map, reflect.Array:
				return value.Len() > 0
			case reflect.Pointer, reflect.Interface:
				return !value.IsNil()
			default:
				return !value.IsZero()
			}
		},
		Error: ValidationError{
			Field:          field,
			Message:        "field is required",
			TranslationKey: "validation.required",
			TranslationValues: map[string]any{
				"field": field,
			},
		},
	}
}

func minValidator(field string, value reflect.Value, params []string) Rule {
	if len(params) < 1 {
		return pass()
	}
	min, err := strconv.Atoi(params[0])
	if err != nil {
		return pass()
	}

	switch value.Kind() {
	case reflect.String:
		return MinLenString(field, value.String(), min)
	case reflect.Slice, reflect.Array:
		return Rule{
			Check: func() bool { return value.Len() >= min },
			Error: ValidationError{
				Field:          field,
				Message:        fmt.Sprintf("must have at least %d items", min),
				TranslationKey: "validation.min_items",
				TranslationValues: map[string]any{
					"field": field,
					"min":   min,
				},
			},
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Rule{
			Check: func() bool { return value.Int() >= int64(min) },
			Error: ValidationError{
				Field:          field,
				Message:        fmt.Sprintf("must be at least %d", min),
				TranslationKey: "validation.min",
				TranslationValues: map[string]any{
					"field": field,
					"min":   min,
				},
			},
		}
	default:
		return pass()
	}
}

func maxValidator(field string, value reflect.Value, params []string) Rule {
	if len(params) < 1 {
		return pass()
	}
	max, err := strconv.Atoi(params[0])
	if err != nil {
		return pass()
	}

	switch value.Kind() {
	case reflect.String:
		return MaxLenString(field, value.String(), max)
	case reflect.Slice, reflect.Array:
		return Rule{
			Check: func() bool { return value.Len() <= max },
			Error: ValidationError{
				Field:          field,
				Message:        fmt.Sprintf("must have at most %d items", max),
				TranslationKey: "validation.max_items",
				TranslationValues: map[string]any{
					"field": field,
					"max":   max,
				},
			},
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Rule{
			Check: func() bool { return value.Int() <= int64(max) },
			Error: ValidationError{
				Field:          field,
				Message:        fmt.Sprintf("must be at most %d", max),
				TranslationKey: "validation.max",
				TranslationValues: map[string]any{
					"field": field,
					"max":   max,
				},
			},
		}
	default:
		return pass()
	}
}

func emailValidator(field string, value reflect.Value, _ []string) Rule {
	if value.Kind() != reflect.String {
		return pass()
	}
	return ValidEmail(field, value.String())
}

func numericValidator(field string, value reflect.Value, _ []string) Rule {
	if value.Kind() != reflect.String {
		return pass()
	}
	return ValidNumericString(field, value.String())
}

func inValidator(field string, value reflect.Value, params []string) Rule {
	if value.Kind() != reflect.String {
		return pass()
	}
	return InList(field, value.String(), params)
}
