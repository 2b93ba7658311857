package auth

import "time"

// OTPRepo stores one time codes.
type OTPRepo interface {
	Insert(otp *OTP) error
	Update(otp *OTP) error
	// Latest returns the newest unused code for userID and purpose.
	Latest(userID, purpose string) (*OTP, error)
	// CountSince counts codes created for userID and purpose at or after since.
	CountSince(userID, purpose string, since time.Time) (int, error)
	// InvalidateUnused marks every unused code for userID and purpose as used.
	InvalidateUnused(userID, purpose string, at time.Time) error
	DeleteByUserID(userID string) error
}
