package cryptoutil

import (
	"math"
	"strings"
)

// StrengthLevel is an ordinal classification of password strength.
type StrengthLevel int

const (
	StrengthVeryWeak StrengthLevel = iota
	StrengthWeak
	StrengthFair
	StrengthStrong
	StrengthVeryStrong
)

func (l StrengthLevel) String() string {
	switch l {
	case StrengthVeryWeak:
		return "very weak"
	case StrengthWeak:
		return "weak"
	case StrengthFair:
		return "fair"
	case StrengthStrong:
		return "strong"
	case StrengthVeryStrong:
		return "very strong"
	default:
		return "unknown"
	}
}

// StrengthReport is a derived snapshot of a password's measurable
// properties. It is recomputed on demand and never persisted.
type StrengthReport struct {
	Length    int
	HasLower  bool
	HasUpper  bool
	HasDigit  bool
	HasSymbol bool
	Entropy   float64
	Score     int
	Level     StrengthLevel
}

// Substrings that appear in virtually every breached-credential corpus.
// Their presence caps an otherwise strong score.
var weakSubstrings = []string{"password", "123456", "qwerty", "admin"}

// AnalyzeStrength scores a password on a 0-100 scale from its length,
// character-class diversity and estimated entropy, with a penalty for
// known weak substrings.
func AnalyzeStrength(password string) StrengthReport {
	r := StrengthReport{Length: len(password)}

	for _, c := range password {
		switch {
		case c >= 'a' && c <= 'z':
			r.HasLower = true
		case c >= 'A' && c <= 'Z':
			r.HasUpper = true
		case c >= '0' && c <= '9':
			r.HasDigit = true
		default:
			r.HasSymbol = true
		}
	}

	alphabet := 0
	classes := 0
	if r.HasLower {
		alphabet += 26
		classes++
	}
	if r.HasUpper {
		alphabet += 26
		classes++
	}
	if r.HasDigit {
		alphabet += 10
		classes++
	}
	if r.HasSymbol {
		alphabet += 32
		classes++
	}

	if alphabet > 0 {
		r.Entropy = float64(r.Length) * math.Log2(float64(alphabet))
	}

	score := lengthBucket(r.Length) + classes*10 + entropyBucket(r.Entropy)

	lowered := strings.ToLower(password)
	for _, weak := range weakSubstrings {
		if strings.Contains(lowered, weak) {
			score -= 30
			break
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	r.Score = score

	switch {
	case score < 20:
		r.Level = StrengthVeryWeak
	case score < 40:
		r.Level = StrengthWeak
	case score < 60:
		r.Level = StrengthFair
	case score < 80:
		r.Level = StrengthStrong
	default:
		r.Level = StrengthVeryStrong
	}

	return r
}

func lengthBucket(n int) int {
	switch {
	case n >= 16:
		return 30
	case n >= 12:
		return 24
	case n >= 10:
		return 18
	case n >= 8:
		return 12
	case n >= 6:
		return 6
	default:
		return 0
	}
}

func entropyBucket(e float64) int {
	switch {
	case e >= 100:
		return 30
	case e >= 75:
		return 22
	case e >= 50:
		return 15
	case e >= 25:
		return 7
	default:
		return 0
	}
}
