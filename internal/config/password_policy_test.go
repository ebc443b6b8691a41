// Localis - Places Discovery and Social Mapping Backend
// Copyright 2026 Localis Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/localis-app/localis

package config

import (
	"strings"
	"testing"
)

// containsError reports whether any error message contains the substring.
func containsError(errors []string, substr string) bool {
	for _, err := range errors {
		if strings.Contains(err, substr) {
			return true
		}
	}
	return false
}

func TestPasswordPolicy_Validate_Length(t *testing.T) {
	t.Parallel()

	policy := DefaultPasswordPolicy()

	result := policy.Validate("Ab1!", "")
	if result.Valid {
		t.Error("Expected short password to fail validation")
	}
	if !containsError(result.Errors, "at least 12 characters") {
		t.Errorf("Expected length error message, got %v", result.Errors)
	}

	result = policy.Validate("Vt9!mRk2#xWq7Lp", "")
	if !result.Valid {
		t.Errorf("Expected long password to pass: %v", result.Errors)
	}
}

func TestPasswordPolicy_Validate_CharClasses(t *testing.T) {
	t.Parallel()

	policy := DefaultPasswordPolicy()

	tests := []struct {
		name     string
		password string
		errWord  string
	}{
		{"missing uppercase", "vt9!mrk2#xwq7lp", "uppercase"},
		{"missing lowercase", "VT9!MRK2#XWQ7LP", "lowercase"},
		{"missing digit", "Vtx!mRkz#xWqyLp", "digit"},
		{"missing special", "Vt9zmRk2yxWq7Lp", "special"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := policy.Validate(tt.password, "")
			if result.Valid {
				t.Fatalf("Expected %s to fail validation", tt.name)
			}
			if !containsError(result.Errors, tt.errWord) {
				t.Errorf("Expected error mentioning %q, got %v", tt.errWord, result.Errors)
			}
		})
	}
}

func TestPasswordPolicy_Validate_ConsecutiveRepeats(t *testing.T) {
	t.Parallel()

	policy := DefaultPasswordPolicy()

	result := policy.Validate("Vt9!mRkkkk2#xWq", "")
	if result.Valid {
		t.Error("Expected password with 4 consecutive repeats to fail")
	}
	if !containsError(result.Errors, "consecutive repeated") {
		t.Errorf("Expected consecutive repeat error, got %v", result.Errors)
	}

	// Exactly at the limit of 3 passes
	result = policy.Validate("Vt9!mRkkk2#xWqz", "")
	if !result.Valid {
		t.Errorf("Expected password with 3 consecutive repeats to pass: %v", result.Errors)
	}
}

func TestPasswordPolicy_Validate_CommonPasswords(t *testing.T) {
	t.Parallel()

	policy := RegistrationPasswordPolicy()

	tests := []string{
		"password123",
		"qwerty123",
		"localis123",
		"testing123",
	}

	for _, password := range tests {
		t.Run(password, func(t *testing.T) {
			result := policy.Validate(password, "")
			if result.Valid {
				t.Errorf("Expected common password %q to fail", password)
			}
			if !containsError(result.Errors, "too common") {
				t.Errorf("Expected common password error, got %v", result.Errors)
			}
		})
	}
}

func TestPasswordPolicy_Validate_UsernameSimilarity(t *testing.T) {
	t.Parallel()

	policy := RegistrationPasswordPolicy()

	tests := []struct {
		name     string
		password string
		username string
		wantFail bool
	}{
		{"contains username", "marcopolo99x", "marcopolo", true},
		{"reversed username", "olopocram42z", "marcopolo", true},
		{"leet substitution", "m@rc0p0l07x9", "marcopolo", true},
		{"unrelated password", "tiramisu42z", "marcopolo", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := policy.Validate(tt.password, tt.username)
			gotSimilar := containsError(result.Errors, "similar to username")
			if gotSimilar != tt.wantFail {
				t.Errorf("similarity check = %v, want %v (errors: %v)", gotSimilar, tt.wantFail, result.Errors)
			}
		})
	}
}

func TestPasswordPolicy_Strength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		minimum  PasswordStrength
	}{
		{"short lowercase", "abcz", PasswordStrengthWeak},
		{"long varied", "Vt9!mRk2#xWq7LpZh4$u", PasswordStrengthExcellent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := PasswordPolicy{MinLength: 1}
			result := policy.Validate(tt.password, "")
			if result.Strength < tt.minimum {
				t.Errorf("Strength = %v, want at least %v", result.Strength, tt.minimum)
			}
		})
	}
}

func TestPasswordPolicy_ValidateWithError(t *testing.T) {
	t.Parallel()

	policy := DefaultPasswordPolicy()

	if err := policy.ValidateWithError("weak", ""); err == nil {
		t.Error("Expected error for weak password")
	}

	if err := policy.ValidateWithError("Vt9!mRk2#xWq7Lp", ""); err != nil {
		t.Errorf("Expected no error for strong password, got %v", err)
	}
}

func TestDefaultPasswordPolicy(t *testing.T) {
	t.Parallel()

	policy := DefaultPasswordPolicy()

	if policy.MinLength != 12 {
		t.Errorf("MinLength = %d, want 12", policy.MinLength)
	}
	if !policy.RequireUppercase || !policy.RequireLowercase || !policy.RequireDigit || !policy.RequireSpecial {
		t.Error("Default policy should require all character classes")
	}
	if !policy.ForbidCommonPasswords {
		t.Error("Default policy should forbid common passwords")
	}
}

func TestRegistrationPasswordPolicy(t *testing.T) {
	t.Parallel()

	policy := RegistrationPasswordPolicy()

	if policy.MinLength != 8 {
		t.Errorf("MinLength = %d, want 8", policy.MinLength)
	}
	if policy.RequireUppercase || policy.RequireSpecial {
		t.Error("Registration policy should not require uppercase or special characters")
	}
	if !policy.RequireLowercase || !policy.RequireDigit {
		t.Error("Registration policy should require lowercase and digit")
	}
	if !policy.ForbidCommonPasswords {
		t.Error("Registration policy should forbid common passwords")
	}

	// An 8 char lowercase+digit password passes registration but not default
	result := policy.Validate("wanderer7", "")
	if !result.Valid {
		t.Errorf("Expected simple password to pass registration policy: %v", result.Errors)
	}
	if DefaultPasswordPolicy().Validate("wanderer7", "").Valid {
		t.Error("Expected simple password to fail default policy")
	}
}

func TestPasswordStrength_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		strength PasswordStrength
		want     string
	}{
		{PasswordStrengthWeak, "weak"},
		{PasswordStrengthFair, "fair"},
		{PasswordStrengthGood, "good"},
		{PasswordStrengthStrong, "strong"},
		{PasswordStrengthExcellent, "excellent"},
		{PasswordStrength(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.strength.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasSequentialChars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		password string
		want     bool
	}{
		{"abcdef", true},
		{"fedcba", true},
		{"a1b2c3", false},
		{"xy", false},
		{"Vt9!mRk2", false},
		{"pass123word", true},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			if got := hasSequentialChars(tt.password); got != tt.want {
				t.Errorf("hasSequentialChars(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestHasKeyboardPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		password string
		want     bool
	}{
		{"qwertyuiop", true},
		{"myasdfpass", true},
		{"1qaz2wsx", true},
		{"Vt9!mRk2", false},
		{"tiramisu", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			if got := hasKeyboardPattern(tt.password); got != tt.want {
				t.Errorf("hasKeyboardPattern(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestMaxConsecutiveRepeats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		password string
		want     int
	}{
		{"", 0},
		{"abc", 1},
		{"aabbcc", 2},
		{"aaab", 3},
		{"abaab", 2},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			if got := maxConsecutiveRepeats(tt.password); got != tt.want {
				t.Errorf("maxConsecutiveRepeats(%q) = %d, want %d", tt.password, got, tt.want)
			}
		})
	}
}
