package guard

import (
	"strings"
	"unicode"
)

// Password validation reasons, accumulated in rule order.
const (
	ReasonPasswordEmpty    = "password must not be empty"
	ReasonPasswordTooShort = "password must be at least 8 characters"
	ReasonPasswordCase     = "password must contain both lowercase and uppercase letters"
	ReasonPasswordDigit    = "password must contain a digit"
	ReasonPasswordSymbol   = "password must contain a symbol"
	ReasonPasswordCommon   = "password is a common weak password"
)

// commonWeakPasswords is the fixed deny set, matched case-insensitively.
var commonWeakPasswords = map[string]struct{}{
	"admin":    {},
	"password": {},
	"123456":   {},
	"12345678": {},
	"111111":   {},
	"qwerty":   {},
	"abc123":   {},
	"letmein":  {},
	"iloveyou": {},
	"000000":   {},
	"123123":   {},
	"admin123": {},
	"root":     {},
	"toor":     {},
}

// ValidatePassword is a stateless rule evaluator for a candidate password.
// Every rule is checked independently; reasons accumulate rather than
// short-circuit. ok is true iff no rule failed.
func ValidatePassword(password string) (bool, []string) {
	if password == "" {
		return false, []string{ReasonPasswordEmpty}
	}

	var reasons []string
	if len(password) < 8 {
		reasons = append(reasons, ReasonPasswordTooShort)
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, c := range password {
		switch {
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsDigit(c):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	if !(hasLower && hasUpper) {
		reasons = append(reasons, ReasonPasswordCase)
	}
	if !hasDigit {
		reasons = append(reasons, ReasonPasswordDigit)
	}
	if !hasSymbol {
		reasons = append(reasons, ReasonPasswordSymbol)
	}
	if _, weak := commonWeakPasswords[strings.ToLower(password)]; weak {
		reasons = append(reasons, ReasonPasswordCommon)
	}

	return len(reasons) == 0, reasons
}
