package otpgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const (
	DefaultStep      uint32 = 30
	DefaultDigits           = otp.DigitsSix
	DefaultAlgorithm        = otp.AlgorithmSHA1

	MinDigits = 6
	MaxDigits = 8
)

// Engine computes RFC 6238 codes for a single shared secret. It is immutable
// once built and safe for concurrent use.
type Engine struct {
	secret    string
	step      uint32
	digits    otp.Digits
	algorithm otp.Algorithm
}

// Option configures an Engine during construction.
type Option func(*Engine)

// WithStep sets the time-step length in seconds.
func WithStep(seconds uint32) Option {
	return func(e *Engine) {
		e.step = seconds
	}
}

// WithDigits sets the code length.
func WithDigits(digits int) Option {
	return func(e *Engine) {
		e.digits = otp.Digits(digits)
	}
}

// WithAlgorithm sets the HMAC hash.
func WithAlgorithm(alg otp.Algorithm) Option {
	return func(e *Engine) {
		e.algorithm = alg
	}
}

// NewEngine binds a decoded secret to a step, digit count and algorithm.
// Defaults are 30 seconds, 6 digits and SHA1.
func NewEngine(secret []byte, opts ...Option) (*Engine, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	e := &Engine{
		step:      DefaultStep,
		digits:    DefaultDigits,
		algorithm: DefaultAlgorithm,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.step == 0 {
		return nil, fmt.Errorf("%w: step must be greater than zero", ErrInvalidParameter)
	}
	if err := validateCode(e.digits, e.algorithm); err != nil {
		return nil, err
	}

	// Kept in the encoded form hotp expects; this also detaches it from the caller's slice.
	e.secret = EncodeSecret(secret)

	return e, nil
}

func validateCode(digits otp.Digits, alg otp.Algorithm) error {
	if digits < MinDigits || digits > MaxDigits {
		return fmt.Errorf("%w: digits must be between %d and %d, got %d", ErrInvalidParameter, MinDigits, MaxDigits, int(digits))
	}
	if !SupportedAlgorithm(alg) {
		return fmt.Errorf("%w: unsupported algorithm %d", ErrInvalidParameter, int(alg))
	}
	return nil
}

func (e *Engine) Step() uint32 { return e.step }

func (e *Engine) Digits() int { return int(e.digits) }

func (e *Engine) Algorithm() otp.Algorithm { return e.algorithm }

// CodeAt returns the code for the time step containing unix.
func (e *Engine) CodeAt(unix uint64) string {
	code, err := generate(e.secret, unix/uint64(e.step), e.digits, e.algorithm)
	if err != nil {
		// NewEngine has already validated every input hotp checks.
		panic(err)
	}
	return code
}

// SecondsRemaining reports how long the code for unix stays valid, in [1, step].
func (e *Engine) SecondsRemaining(unix uint64) uint32 {
	return e.step - uint32(unix%uint64(e.step))
}

// Now returns the code for the current wall-clock time.
func (e *Engine) Now() string {
	return e.CodeAt(unixSeconds(time.Now()))
}

// HOTP implements the RFC 4226 counter-to-code transform.
func HOTP(secret []byte, counter uint64, digits otp.Digits, alg otp.Algorithm) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	if err := validateCode(digits, alg); err != nil {
		return "", err
	}
	return generate(EncodeSecret(secret), counter, digits, alg)
}

func generate(secret string, counter uint64, digits otp.Digits, alg otp.Algorithm) (string, error) {
	code, err := hotp.GenerateCodeCustom(secret, counter, hotp.ValidateOpts{
		Digits:    digits,
		Algorithm: alg,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	return code, nil
}

// SupportedAlgorithm reports whether alg may be used by an Engine.
func SupportedAlgorithm(alg otp.Algorithm) bool {
	switch alg {
	case otp.AlgorithmSHA1, otp.AlgorithmSHA256, otp.AlgorithmSHA512:
		return true
	}
	return false
}

// ParseAlgorithm maps a name such as "SHA256" or "sha-512" to an algorithm.
// The empty string selects DefaultAlgorithm.
func ParseAlgorithm(name string) (otp.Algorithm, error) {
	switch strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(name)), "-", "") {
	case "":
		return DefaultAlgorithm, nil
	case "SHA1":
		return otp.AlgorithmSHA1, nil
	case "SHA256":
		return otp.AlgorithmSHA256, nil
	case "SHA512":
		return otp.AlgorithmSHA512, nil
	}
	return 0, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidParameter, name)
}

func unixSeconds(t time.Time) uint64 {
	sec := t.Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec)
}
