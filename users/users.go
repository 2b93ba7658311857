package users

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType is the account level role carried in the access token.
type RoleType string

const (
	RoleMember RoleType = "member" // Regular product user
	RoleAdmin  RoleType = "admin"  // Can reach the admin area of the front end
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

type User struct {
	ID               string     `json:"id"`                 // Unique identifier for the user
	Email            string     `json:"email"`              // Lower cased email address
	Role             RoleType   `json:"role"`               // member or admin
	IsActive         bool       `json:"is_active"`          // Deactivated accounts cannot sign in
	IsVerified       bool       `json:"is_verified"`        // Set once the signup OTP has been verified
	PrivacyConsentAt *time.Time `json:"privacy_consent_at"` // When the privacy policy was accepted
	MarketingConsent bool       `json:"marketing_consent"`
	CreatedAt        time.Time  `json:"created_at"`
	DeletedAt        *time.Time `json:"-"` // Set when the account was erased on request

	PasswordHash          string `json:"-"` // Hashed version of the user's password - never serialize
	DataProcessingConsent bool   `json:"-"`
}

// IsAdmin returns true if the user has the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// NormaliseEmail lower cases and trims an address so lookups are case insensitive.
func NormaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePasswordLength enforces the length window the backend accepts.
func ValidatePasswordLength(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must be at most %d characters long", MaxPasswordLength)
	}
	return nil
}

// ValidatePasswordStrength checks if password meets the client side rules:
// - Between 8 and 128 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if err := ValidatePasswordLength(password); err != nil {
		return err
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// AuthStatus is the body of GET /auth/status.
type AuthStatus struct {
	User                User `json:"user"`
	HasProfile          bool `json:"has_profile"`
	OnboardingCompleted bool `json:"onboarding_completed"`
}
