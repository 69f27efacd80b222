// Package sanitizer cleans user input before it is validated or rendered.
//
// String fields are rewritten in place according to their `sanitize` tag, a
// comma separated list applied left to right:
//
//	type Feedback struct {
//		Name    string `sanitize:"single_line,max:200"`
//		Email   string `sanitize:"trim"`
//		INN     string `sanitize:"no_whitespace"`
//		Message string `sanitize:"text"`
//	}
//
//	if err := sanitizer.SanitizeStruct(&f); err != nil {
//		return err
//	}
//
// Built-in sanitizers: trim, lower, trim_lower, single_line, no_spaces,
// no_whitespace, no_control, digits, text and max:N. Nested structs and string
// slices are handled too. Custom sanitizers are added with RegisterSanitizer.
//
// The same functions are exported for direct use, e.g. SingleLine for values
// that end up in mail headers.
package sanitizer
