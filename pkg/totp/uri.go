package totp

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Params carries the fields of an otpauth://totp provisioning URI, the
// interchange format understood by third-party authenticator apps.
type Params struct {
	Secret    string // base32, required
	Account   string // label part after the issuer prefix
	Issuer    string // optional
	Algorithm Algorithm
	Digits    int
	Period    int
	Image     string // optional icon URL
}

// withDefaults returns a copy with RFC 6238 defaults applied to
// zero-valued fields.
func (p Params) withDefaults() Params {
	if p.Algorithm == "" {
		p.Algorithm = AlgorithmSHA1
	}
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	return p
}

// Validate checks the params against the same rules account registration
// uses: a decodable secret, digits in [4,10], positive period.
func (p Params) Validate() error {
	if err := ValidateSecret(p.Secret); err != nil {
		return err
	}
	p = p.withDefaults()
	if p.Digits < MinDigits || p.Digits > MaxDigits {
		return ErrInvalidDigits
	}
	if p.Period <= 0 {
		return ErrInvalidPeriod
	}
	if !p.Algorithm.valid() {
		return ErrInvalidAlgorithm
	}
	return nil
}

// BuildURI renders p as an otpauth://totp URI. Digits, period and
// algorithm are omitted when equal to the 6/30/SHA1 defaults, matching
// what authenticator apps emit.
func BuildURI(p Params) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	p = p.withDefaults()

	label := url.PathEscape(p.Account)
	if p.Issuer != "" {
		label = url.PathEscape(p.Issuer) + ":" + label
	}

	query := url.Values{}
	query.Set("secret", strings.TrimRight(strings.ToUpper(p.Secret), "="))
	if p.Issuer != "" {
		query.Set("issuer", p.Issuer)
	}
	if p.Algorithm != AlgorithmSHA1 {
		query.Set("algorithm", string(p.Algorithm))
	}
	if p.Digits != DefaultDigits {
		query.Set("digits", strconv.Itoa(p.Digits))
	}
	if p.Period != DefaultPeriod {
		query.Set("period", strconv.Itoa(p.Period))
	}
	if p.Image != "" {
		query.Set("image", p.Image)
	}

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// ParseURI parses an otpauth://totp URI. A missing secret is a hard
// failure; digits, period and algorithm default to 6/30/SHA1 when
// absent; unknown query parameters are ignored. A label of the form
// "issuer:account" is split on the first colon.
func ParseURI(raw string) (Params, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Params{}, errors.Join(ErrInvalidURI, err)
	}
	if u.Scheme != "otpauth" {
		return Params{}, errors.Join(ErrInvalidURI, fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	if u.Host != "totp" {
		return Params{}, errors.Join(ErrInvalidURI, fmt.Errorf("unsupported type %q", u.Host))
	}

	var p Params

	// u.Path is already percent-decoded by url.Parse.
	label := strings.TrimPrefix(u.Path, "/")
	if issuer, account, found := strings.Cut(label, ":"); found {
		p.Issuer = strings.TrimSpace(issuer)
		p.Account = strings.TrimSpace(account)
	} else {
		p.Account = strings.TrimSpace(label)
	}

	query := u.Query()

	p.Secret = query.Get("secret")
	if p.Secret == "" {
		return Params{}, errors.Join(ErrInvalidURI, ErrMissingSecret)
	}

	// The issuer parameter takes precedence over the label prefix.
	if issuer := query.Get("issuer"); issuer != "" {
		p.Issuer = issuer
	}

	p.Algorithm, err = ParseAlgorithm(query.Get("algorithm"))
	if err != nil {
		return Params{}, errors.Join(ErrInvalidURI, err)
	}

	p.Digits = DefaultDigits
	if s := query.Get("digits"); s != "" {
		p.Digits, err = strconv.Atoi(s)
		if err != nil {
			return Params{}, errors.Join(ErrInvalidURI, ErrInvalidDigits)
		}
	}

	p.Period = DefaultPeriod
	if s := query.Get("period"); s != "" {
		p.Period, err = strconv.Atoi(s)
		if err != nil {
			return Params{}, errors.Join(ErrInvalidURI, ErrInvalidPeriod)
		}
	}

	p.Image = query.Get("image")

	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}
