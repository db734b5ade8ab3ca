package twofactor

import "errors"

var (
	// ErrNotFound is returned when the referenced user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidMethod is returned for an empty or unrecognized verification method.
	ErrInvalidMethod = errors.New("invalid verification method")
)

// Verification methods a user may enroll.
const (
	MethodEmailOTP  = "emailOtp"
	MethodPhoneOTP  = "phoneOtp"
	MethodBiometric = "biometric"
)

// Config is a user's two-factor configuration. Methods is a set: order and
// duplicates are meaningless. When Enabled is false, Methods must be empty —
// disabling clears all enrolled methods in the same write.
type Config struct {
	Enabled bool     `json:"enabled"`
	Methods []string `json:"methods"`
}

func validMethod(m string) bool {
	switch m {
	case MethodEmailOTP, MethodPhoneOTP, MethodBiometric:
		return true
	}
	return false
}
