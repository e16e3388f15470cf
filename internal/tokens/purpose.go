package tokens

// Purpose scopes a token to exactly one workflow. A token issued for one
// purpose is invisible to consumption under any other.
type Purpose uint8

const (
	PurposeVerify Purpose = iota
	PurposeReset
	PurposeMFA
)

func (p Purpose) String() string {
	switch p {
	case PurposeVerify:
		return "verify"
	case PurposeReset:
		return "reset"
	case PurposeMFA:
		return "mfa"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the closed set of purposes.
func (p Purpose) Valid() bool {
	return p <= PurposeMFA
}
