// Package validator checks struct fields against rules declared in
// `validate` tags.
//
// Rules are separated by semicolons and take comma separated parameters:
//
//	type Feedback struct {
//		Name  string `json:"name" validate:"required;max:200"`
//		Email string `json:"email" validate:"required;email"`
//		Kind  string `json:"kind" validate:"in:bug,question"`
//	}
//
//	if err := validator.ValidateStruct(&f); err != nil {
//		var verrs validator.ValidationErrors
//		if errors.As(err, &verrs) {
//			fields := verrs.Fields() // {"name": "field is required"}
//		}
//	}
//
// Built-in rules: required, min, max, email, numeric and in. String lengths
// are counted in characters, not bytes. Rules other than required let empty
// values through. Custom rules are added with RegisterValidator, usually from
// an init function of the package that needs them.
package validator
