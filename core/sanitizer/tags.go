package sanitizer

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]func(string) string{
		"trim":          Trim,
		"lower":         ToLower,
		"trim_lower":    TrimToLower,
		"single_line":   SingleLine,
		"no_spaces":     RemoveExtraWhitespace,
		"no_whitespace": RemoveWhitespace,
		"no_control":    RemoveControlChars,
		"digits":        KeepDigits,
		"text":          Text,
	}
)

// RegisterSanitizer adds a custom sanitizer function to the registry
func RegisterSanitizer(name string, fn func(string) string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = fn
}

// SanitizeStruct applies sanitization to struct fields based on their tags
func SanitizeStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return errors.New("sanitizer: must pass a pointer to struct")
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return errors.New("sanitizer: must pass a pointer to struct")
	}

	sanitizeStructRecursive(rv)
	return nil
}

func sanitizeStructRecursive(rv reflect.Value) {
	rt := rv.Type()

	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		if !field.CanSet() {
			continue
		}

		tag := rt.Field(i).Tag.Get("sanitize")
		if tag == "-" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			if tag != "" {
				field.SetString(applySanitizers(field.String(), tag))
			}

		case reflect.Pointer:
			if field.IsNil() {
				continue
			}
			elem := field.Elem()
			switch {
			case elem.Kind() == reflect.String && tag != "":
				elem.SetString(applySanitizers(elem.String(), tag))
			case elem.Kind() == reflect.Struct:
				sanitizeStructRecursive(elem)
			}

		case reflect.Struct:
			sanitizeStructRecursive(field)

		case reflect.Slice:
			if tag != "" && field.Type().Elem().Kind() == reflect.String {
				for j := 0; j < field.Len(); j++ {
					elem := field.Index(j)
					elem.SetString(applySanitizers(elem.String(), tag))
				}
			}
		}
	}
}

// applySanitizers runs the comma separated sanitizers of tag in order.
// "max:N" cuts the value to N characters; unknown names are ignored.
func applySanitizers(value string, tag string) string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := value
	for name := range strings.SplitSeq(tag, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		if n, ok := strings.CutPrefix(name, "max:"); ok {
			if maxLen, err := strconv.Atoi(n); err == nil && maxLen > 0 {
				result = MaxLength(result, maxLen)
			}
			continue
		}

		if fn, ok := registry[name]; ok {
			result = fn(result)
		}
	}
	return result
}
