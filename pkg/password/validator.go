// Package password scores password strength for registration and credential
// changes. Validation is pure: all blocklists and pattern tables are static
// package data, and no check touches the network.
package password

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// UserInfo carries account attributes a password must not contain.
type UserInfo struct {
	Email    string
	Username string
	Name     string
}

// Options controls which rules run and their thresholds.
type Options struct {
	MinLength            int
	MaxLength            int
	RequireUppercase     bool
	RequireLowercase     bool
	RequireNumbers       bool
	RequireSpecialChars  bool
	CheckCommonPasswords bool
	CheckKeyboardPattern bool
	CheckSequentialChars bool
	CheckRepeatedChars   bool
	MinEntropy           int
	UserInfo             *UserInfo
}

// DefaultOptions returns the standard registration policy.
func DefaultOptions() Options {
	return Options{
		MinLength:            8,
		MaxLength:            128,
		RequireUppercase:     true,
		RequireLowercase:     true,
		RequireNumbers:       true,
		RequireSpecialChars:  false,
		CheckCommonPasswords: true,
		CheckKeyboardPattern: true,
		CheckSequentialChars: true,
		CheckRepeatedChars:   true,
		MinEntropy:           40,
	}
}

// Result is the outcome of a strength check. IsValid reflects hard errors
// only; warnings lower the score but never block.
type Result struct {
	IsValid     bool     `json:"is_valid"`
	Score       int      `json:"score"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// Scoring penalties and bonuses
const (
	penaltyLength     = 30
	penaltyCharClass  = 15
	penaltyCommon     = 40
	penaltyKeyboard   = 15
	penaltySequential = 10
	penaltyRepeated   = 10
	penaltyUserInfo   = 25
	penaltyLowEntropy = 15

	bonusLength12    = 5
	bonusLength16    = 5
	bonusSpecial     = 5
	bonusHighEntropy = 5
)

// Validate scores a password against opts. Zero-value threshold fields fall
// back to the defaults so callers can pass a partially filled Options.
func Validate(pw string, opts Options) Result {
	if opts.MinLength == 0 {
		opts.MinLength = 8
	}
	if opts.MaxLength == 0 {
		opts.MaxLength = 128
	}
	if opts.MinEntropy == 0 {
		opts.MinEntropy = 40
	}

	res := Result{
		Score:       100,
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
	}

	length := len([]rune(pw))

	if length < opts.MinLength || length > opts.MaxLength {
		res.Errors = append(res.Errors,
			fmt.Sprintf("password must be between %d and %d characters", opts.MinLength, opts.MaxLength))
		res.Score -= penaltyLength
		if length < opts.MinLength {
			res.Suggestions = append(res.Suggestions, "use a longer password")
		}
	}

	hasUpper, hasLower, hasDigit, hasSpecial := classifyRunes(pw)

	if opts.RequireUppercase && !hasUpper {
		res.Errors = append(res.Errors, "password must contain an uppercase letter")
		res.Score -= penaltyCharClass
		res.Suggestions = append(res.Suggestions, "add uppercase letters")
	}
	if opts.RequireLowercase && !hasLower {
		res.Errors = append(res.Errors, "password must contain a lowercase letter")
		res.Score -= penaltyCharClass
		res.Suggestions = append(res.Suggestions, "add lowercase letters")
	}
	if opts.RequireNumbers && !hasDigit {
		res.Errors = append(res.Errors, "password must contain a number")
		res.Score -= penaltyCharClass
		res.Suggestions = append(res.Suggestions, "add numbers")
	}
	if opts.RequireSpecialChars && !hasSpecial {
		res.Errors = append(res.Errors, "password must contain a special character")
		res.Score -= penaltyCharClass
		res.Suggestions = append(res.Suggestions, "add symbols such as !@#$%")
	}

	if opts.CheckCommonPasswords && IsCommonPassword(pw) {
		res.Errors = append(res.Errors, "password is too common")
		res.Score -= penaltyCommon
		res.Suggestions = append(res.Suggestions, "avoid dictionary words and common passwords")
	}

	if opts.CheckKeyboardPattern && hasKeyboardPattern(pw) {
		res.Warnings = append(res.Warnings, "password contains a keyboard pattern")
		res.Score -= penaltyKeyboard
	}

	if opts.CheckSequentialChars && hasSequentialChars(pw) {
		res.Warnings = append(res.Warnings, "password contains sequential characters")
		res.Score -= penaltySequential
	}

	if opts.CheckRepeatedChars && hasRepeatedChars(pw) {
		res.Warnings = append(res.Warnings, "password contains repeated characters")
		res.Score -= penaltyRepeated
	}

	if opts.UserInfo != nil && containsUserInfo(pw, *opts.UserInfo) {
		res.Errors = append(res.Errors, "password must not contain your name, username, or email")
		res.Score -= penaltyUserInfo
		res.Suggestions = append(res.Suggestions, "avoid personal information")
	}

	entropy := CalculateEntropy(pw)
	if entropy < opts.MinEntropy {
		res.Warnings = append(res.Warnings, "password is not complex enough")
		res.Score -= penaltyLowEntropy
		res.Suggestions = append(res.Suggestions, "mix character types to increase complexity")
	}

	// Bonuses
	if length >= 12 {
		res.Score += bonusLength12
	}
	if length >= 16 {
		res.Score += bonusLength16
	}
	if hasSpecial {
		res.Score += bonusSpecial
	}
	if entropy >= 60 {
		res.Score += bonusHighEntropy
	}

	if res.Score < 0 {
		res.Score = 0
	}
	if res.Score > 100 {
		res.Score = 100
	}

	res.IsValid = len(res.Errors) == 0
	return res
}

// CalculateEntropy estimates bits of entropy as length * log2(charset size).
// The charset size floors at 1 so the empty string yields 0, not NaN.
func CalculateEntropy(pw string) int {
	hasUpper, hasLower, hasDigit, hasSpecial := classifyRunes(pw)

	charset := 0
	if hasLower {
		charset += 26
	}
	if hasUpper {
		charset += 26
	}
	if hasDigit {
		charset += 10
	}
	if hasSpecial {
		charset += 32
	}
	for _, r := range pw {
		if r > unicode.MaxASCII {
			charset += 100
			break
		}
	}
	if charset < 1 {
		charset = 1
	}

	return int(math.Floor(float64(len([]rune(pw))) * math.Log2(float64(charset))))
}

// IsCommonPassword checks membership in the common-password set after
// normalization: lowercasing, stripping trailing digits, stripping trailing
// punctuation, and decoding leetspeak. Any normalized form matching is a hit.
func IsCommonPassword(pw string) bool {
	lower := strings.ToLower(pw)

	noDigits := strings.TrimRight(lower, "0123456789")
	noSymbols := strings.TrimRight(lower, "!@#$%^&*")
	noTrailing := strings.TrimRight(lower, "0123456789!@#$%^&*")
	deLeet := decodeLeet(lower)

	for _, form := range []string{lower, noDigits, noSymbols, noTrailing, deLeet} {
		if _, ok := commonPasswords[form]; ok {
			return true
		}
	}
	return false
}

func decodeLeet(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if sub, ok := leetTable[r]; ok {
			b.WriteRune(sub)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hasKeyboardPattern(pw string) bool {
	lower := strings.ToLower(pw)
	for _, run := range keyboardRuns {
		if strings.Contains(lower, run) || strings.Contains(lower, reverse(run)) {
			return true
		}
	}
	return false
}

// hasSequentialChars flags 6-letter alphabetic runs and any 3 consecutive
// characters whose codes step by exactly 1 in either direction.
func hasSequentialChars(pw string) bool {
	lower := strings.ToLower(pw)

	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	for i := 0; i+6 <= len(alphabet); i++ {
		if strings.Contains(lower, alphabet[i:i+6]) {
			return true
		}
	}

	runes := []rune(pw)
	for i := 0; i+2 < len(runes); i++ {
		a, b, c := runes[i], runes[i+1], runes[i+2]
		if b == a+1 && c == b+1 {
			return true
		}
		if b == a-1 && c == b-1 {
			return true
		}
	}
	return false
}

// hasRepeatedChars flags 3+ identical consecutive characters, or any single
// character making up more than 30% of the password.
func hasRepeatedChars(pw string) bool {
	runes := []rune(pw)
	for i := 0; i+2 < len(runes); i++ {
		if runes[i] == runes[i+1] && runes[i+1] == runes[i+2] {
			return true
		}
	}

	if len(runes) == 0 {
		return false
	}
	counts := make(map[rune]int)
	for _, r := range runes {
		counts[r]++
	}
	for _, c := range counts {
		if float64(c)/float64(len(runes)) > 0.3 {
			return true
		}
	}
	return false
}

func containsUserInfo(pw string, info UserInfo) bool {
	lower := strings.ToLower(pw)

	if info.Email != "" {
		local := strings.ToLower(info.Email)
		if at := strings.Index(local, "@"); at > 0 {
			local = local[:at]
		}
		if local != "" && strings.Contains(lower, local) {
			return true
		}
	}

	if info.Username != "" && strings.Contains(lower, strings.ToLower(info.Username)) {
		return true
	}

	for _, token := range strings.Fields(strings.ToLower(info.Name)) {
		if len(token) > 2 && strings.Contains(lower, token) {
			return true
		}
	}

	return false
}

func classifyRunes(pw string) (hasUpper, hasLower, hasDigit, hasSpecial bool) {
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case r <= unicode.MaxASCII && (unicode.IsPunct(r) || unicode.IsSymbol(r) || r == ' '):
			hasSpecial = true
		}
	}
	return
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
