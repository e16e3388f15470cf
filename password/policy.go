package password

import "unicode"

// Policy is a composable password-strength predicate. Each check is
// independently toggleable; a password passes only if every enabled check
// passes.
type Policy struct {
	MinLength     int
	MaxLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

// DefaultPolicy mirrors the service defaults: 8–256 characters with all
// four character classes required.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:     8,
		MaxLength:     256,
		RequireUpper:  true,
		RequireLower:  true,
		RequireDigit:  true,
		RequireSymbol: true,
	}
}

// Ok reports whether password satisfies every enabled check.
func (p Policy) Ok(password string) bool {
	runes := []rune(password)
	if len(runes) < p.MinLength {
		return false
	}
	if p.MaxLength > 0 && len(runes) > p.MaxLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range runes {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
				hasSymbol = true
			}
		}
	}

	if p.RequireUpper && !hasUpper {
		return false
	}
	if p.RequireLower && !hasLower {
		return false
	}
	if p.RequireDigit && !hasDigit {
		return false
	}
	if p.RequireSymbol && !hasSymbol {
		return false
	}

	return true
}
