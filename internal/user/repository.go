package user

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no user matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrOTPMismatch indicates a conditional OTP clear found a different
	// stored code, e.g. a concurrent resend overwrote it.
	ErrOTPMismatch = errors.New("stored otp does not match")
)

// Repository persists user records.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByEmailOrPhone(ctx context.Context, identifier string) (*User, error)
	FindAdminByEmail(ctx context.Context, email string) (*User, error)
	EmailInUse(ctx context.Context, email, excludeID string) (bool, error)

	// SetOTP stores a fresh code and expiry on the user, replacing any
	// pending one.
	SetOTP(ctx context.Context, id, code string, expiry time.Time) error
	// ClearOTP removes the pending code only if it still equals
	// expectedCode, making verification atomic against concurrent resends.
	ClearOTP(ctx context.Context, id, expectedCode string) error

	SaveProfile(ctx context.Context, id string, profile Profile, email string) error
	AppendKYCDocument(ctx context.Context, id string, doc KYCDocument) error
}
