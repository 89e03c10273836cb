// Package totp implements the RFC 4226/6238 one-time-password algorithms
// used by the steek security core: HOTP dynamic truncation over an HMAC
// (SHA1, SHA256 or SHA512), time-based code generation and drift-tolerant
// validation, the base32 secret codec, and otpauth://totp provisioning
// URIs compatible with Google Authenticator, 1Password and similar apps.
//
// Code generation is a pure function of (secret, algorithm, digits,
// period, time). Account storage, locking and persistence live in
// pkg/vault; this package holds no state.
//
// # Usage
//
//	secret, _ := totp.GenerateSecret()
//
//	code, _ := totp.GenerateCode(secret, totp.AlgorithmSHA1, 6, 30)
//
//	ok, _ := totp.ValidateCode(secret, userInput, totp.AlgorithmSHA1, 6, 30, 1)
//
//	uri, _ := totp.BuildURI(totp.Params{
//	    Secret:  secret,
//	    Issuer:  "Acme",
//	    Account: "alice@example.com",
//	})
//
// # Error Handling
//
// Validation failures surface as package sentinels (ErrMissingSecret,
// ErrInvalidDigits, ErrInvalidURI, ...) matched with errors.Is; causes
// are attached with errors.Join.
package totp
