package password

// Strength is the result of scoring a candidate password.
type Strength struct {
	// Score counts satisfied checks, 0 through 5.
	Score int

	// Feedback lists the human-readable requirements still unmet.
	Feedback []string

	// IsStrong is true when at least three checks pass.
	IsStrong bool
}

// strongThreshold is the minimum score accepted for a password change.
const strongThreshold = 3

type strengthCheck struct {
	feedback string
	passes   func(string) bool
}

var strengthChecks = []strengthCheck{
	{"Use at least 8 characters", func(s string) bool { return len(s) >= 8 }},
	{"Add uppercase letters", containsClass(func(c byte) bool { return c >= 'A' && c <= 'Z' })},
	{"Add lowercase letters", containsClass(func(c byte) bool { return c >= 'a' && c <= 'z' })},
	{"Add numbers", containsClass(func(c byte) bool { return c >= '0' && c <= '9' })},
	{"Add special characters", containsClass(func(c byte) bool {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			return false
		}
		return true
	})},
}

func containsClass(match func(byte) bool) func(string) bool {
	return func(s string) bool {
		for i := 0; i < len(s); i++ {
			if match(s[i]) {
				return true
			}
		}
		return false
	}
}

// EvaluateStrength scores password against five checks: minimum length,
// uppercase, lowercase, digit, and special character.
func EvaluateStrength(password string) Strength {
	var result Strength
	for _, check := range strengthChecks {
		if check.passes(password) {
			result.Score++
		} else {
			result.Feedback = append(result.Feedback, check.feedback)
		}
	}
	result.IsStrong = result.Score >= strongThreshold
	return result
}

// Validate returns the list of unmet requirements, empty when password
// satisfies every check. Intended for form-level feedback.
func Validate(password string) []string {
	return EvaluateStrength(password).Feedback
}
