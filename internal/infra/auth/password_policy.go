package auth

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"accounts/config"
	"accounts/internal/domain/entity"
	"accounts/internal/domain/service"
)

const minSimilarityPartLength = 3

var attributeSplitter = regexp.MustCompile(`\W+`)

// passwordPolicy checks passwords against the configured strength rules.
type passwordPolicy struct {
	cfg config.PasswordStrengthConfig
}

// NewPasswordPolicy builds the strength policy from passwordStrength.
func NewPasswordPolicy(cfg *config.Config) service.PasswordPolicy {
	policy := &passwordPolicy{}
	if cfg != nil && cfg.PasswordStrength != nil {
		policy.cfg = *cfg.PasswordStrength
	}

	return policy
}

// Check returns every violated rule, in a stable order.
func (p *passwordPolicy) Check(password string, account *entity.Account) []string {
	var violations []string

	if v := p.checkSimilarity(password, account); v != "" {
		violations = append(violations, v)
	}

	length := utf8.RuneCountInString(password)
	if p.cfg.MinLength > 0 && length < p.cfg.MinLength {
		violations = append(violations, fmt.Sprintf("This password is too short. It must contain at least %d characters.", p.cfg.MinLength))
	}
	if p.cfg.MaxLength > 0 && length > p.cfg.MaxLength {
		violations = append(violations, fmt.Sprintf("This password is too long. It must contain at most %d characters.", p.cfg.MaxLength))
	}

	if p.cfg.RejectCommon && isCommonPassword(password) {
		violations = append(violations, "This password is too common.")
	}
	if p.cfg.RejectNumeric && password != "" && isNumeric(password) {
		violations = append(violations, "This password is entirely numeric.")
	}

	violations = append(violations, p.checkCharacterClasses(password)...)

	return violations
}

func (p *passwordPolicy) checkCharacterClasses(password string) []string {
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r):
			hasSpecial = true
		}
	}

	var violations []string
	if p.cfg.RequireUppercase && !hasUpper {
		violations = append(violations, "This password must contain at least one uppercase letter.")
	}
	if p.cfg.RequireLowercase && !hasLower {
		violations = append(violations, "This password must contain at least one lowercase letter.")
	}
	if p.cfg.RequireNumbers && !hasDigit {
		violations = append(violations, "This password must contain at least one digit.")
	}
	if p.cfg.RequireSpecial && !hasSpecial {
		violations = append(violations, "This password must contain at least one special character.")
	}

	return violations
}

// checkSimilarity compares the password to each part of the account's email and names.
func (p *passwordPolicy) checkSimilarity(password string, account *entity.Account) string {
	if account == nil || p.cfg.MaxSimilarity <= 0 || password == "" {
		return ""
	}

	attributes := []struct {
		name  string
		value string
	}{
		{name: "email address", value: account.Email},
		{name: "first name", value: account.FirstName},
		{name: "last name", value: account.LastName},
	}

	lowered := strings.ToLower(password)
	for _, attr := range attributes {
		if attr.value == "" {
			continue
		}
		parts := append(attributeSplitter.Split(strings.ToLower(attr.value), -1), strings.ToLower(attr.value))
		for _, part := range parts {
			if utf8.RuneCountInString(part) < minSimilarityPartLength {
				continue
			}
			if similarityRatio(lowered, part) >= p.cfg.MaxSimilarity {
				return fmt.Sprintf("The password is too similar to the %s.", attr.name)
			}
		}
	}

	return ""
}

// similarityRatio is 2*M/T where M is the size of the multiset intersection of runes
// and T the combined length; 1.0 means the same runes in any order.
func similarityRatio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 0
	}

	avail := make(map[rune]int)
	for _, r := range b {
		avail[r]++
	}

	matches := 0
	for _, r := range a {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}

	return 2 * float64(matches) / float64(total)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}
