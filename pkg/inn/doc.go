// Package inn validates Russian taxpayer identification numbers (INN).
//
// A 10-digit INN belongs to a legal entity and carries one check digit; a
// 12-digit INN belongs to an individual and carries two. Each check digit is
// the weighted digit sum modulo 11, then modulo 10.
//
//	if !inn.Validate(form.INN) {
//		return errors.New("invalid INN")
//	}
package inn
