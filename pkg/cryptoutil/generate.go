package cryptoutil

import "strings"

const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+[]{};:,.<>?"

	// Characters easily confused when read aloud or retyped.
	ambiguousChars = "O0Il1|`'\""
)

// PasswordOptions describes the character-class policy for generated
// passwords.
type PasswordOptions struct {
	Length           int
	Lower            bool
	Upper            bool
	Digits           bool
	Symbols          bool
	ExcludeAmbiguous bool
}

// DefaultPasswordOptions returns a 20-character all-class policy.
func DefaultPasswordOptions() PasswordOptions {
	return PasswordOptions{
		Length:  20,
		Lower:   true,
		Upper:   true,
		Digits:  true,
		Symbols: true,
	}
}

// GeneratePassword produces a CSPRNG-backed random password following the
// given policy. Every enabled character class is guaranteed at least one
// occurrence.
func GeneratePassword(opts PasswordOptions) (string, error) {
	if opts.Length < 4 {
		return "", ErrPasswordTooShort
	}

	var classes []string
	if opts.Lower {
		classes = append(classes, lowerChars)
	}
	if opts.Upper {
		classes = append(classes, upperChars)
	}
	if opts.Digits {
		classes = append(classes, digitChars)
	}
	if opts.Symbols {
		classes = append(classes, symbolChars)
	}
	if len(classes) == 0 {
		return "", ErrNoCharacterClasses
	}
	if len(classes) > opts.Length {
		return "", ErrPasswordTooShort
	}

	if opts.ExcludeAmbiguous {
		for i, class := range classes {
			classes[i] = stripAmbiguous(class)
		}
	}

	alphabet := strings.Join(classes, "")
	out := make([]byte, opts.Length)

	// One guaranteed character per enabled class, then fill from the
	// full alphabet.
	for i, class := range classes {
		idx, err := randomIndex(len(class))
		if err != nil {
			return "", err
		}
		out[i] = class[idx]
	}
	for i := len(classes); i < opts.Length; i++ {
		idx, err := randomIndex(len(alphabet))
		if err != nil {
			return "", err
		}
		out[i] = alphabet[idx]
	}

	// Shuffle so the guaranteed characters are not clustered up front.
	for i := len(out) - 1; i > 0; i-- {
		j, err := randomIndex(i + 1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}

	return string(out), nil
}

func stripAmbiguous(class string) string {
	var b strings.Builder
	for _, r := range class {
		if !strings.ContainsRune(ambiguousChars, r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return class
	}
	return b.String()
}

// GeneratePassphrase joins wordCount CSPRNG-selected words from the
// embedded word list. An empty separator defaults to "-".
func GeneratePassphrase(wordCount int, separator string) (string, error) {
	if wordCount < 1 {
		return "", ErrInvalidWordCount
	}
	if separator == "" {
		separator = "-"
	}

	words := make([]string, wordCount)
	for i := range words {
		idx, err := randomIndex(len(passphraseWords))
		if err != nil {
			return "", err
		}
		words[i] = passphraseWords[idx]
	}
	return strings.Join(words, separator), nil
}
