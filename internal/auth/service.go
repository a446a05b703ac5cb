package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lendly/lendly/internal/notification"
	"github.com/lendly/lendly/internal/otp"
	"github.com/lendly/lendly/internal/user"
)

var (
	// ErrNoOTPPending indicates verification was attempted with no code on file.
	ErrNoOTPPending = errors.New("no otp found, request a new one")
	// ErrInvalidOTP indicates the submitted code does not match the stored one.
	ErrInvalidOTP = errors.New("invalid otp")
	// ErrOTPExpired indicates the stored code is past its expiry.
	ErrOTPExpired = errors.New("otp has expired")
)

// AdminIdentity is the reserved privileged login, resolved once from
// configuration instead of comparing magic strings at call sites. The fixed
// code stands in for an out-of-band admin channel.
type AdminIdentity struct {
	Email     string
	Phone     string
	FixedCode string
}

// Matches reports whether the submitted identifier is the admin address.
func (a AdminIdentity) Matches(identifier string) bool {
	return strings.EqualFold(strings.TrimSpace(identifier), a.Email)
}

// Service drives the signup/login/OTP state machine.
type Service struct {
	users     user.Repository
	codes     *otp.Generator
	tokens    *TokenIssuer
	admin     AdminIdentity
	notifier  notification.Notifier
	revealOTP bool
	now       func() time.Time
}

// NewService wires the authentication service. revealOTP controls whether
// issued codes are echoed in responses (dev/test mode only).
func NewService(users user.Repository, codes *otp.Generator, tokens *TokenIssuer, admin AdminIdentity, notifier notification.Notifier, revealOTP bool) *Service {
	return &Service{
		users:     users,
		codes:     codes,
		tokens:    tokens,
		admin:     admin,
		notifier:  notifier,
		revealOTP: revealOTP,
		now:       time.Now,
	}
}

// SignupResult reports the outcome of a signup attempt.
type SignupResult struct {
	PhoneNumber string
	Created     bool
	OTP         string // populated in dev mode only
	RedirectTo  string // set when the account is already fully onboarded
}

// Signup creates the user on first contact, short-circuits fully onboarded
// accounts to login, and otherwise issues a fresh OTP on the existing record.
func (s *Service) Signup(ctx context.Context, phoneNumber, referralCode string) (SignupResult, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)

	existing, err := s.users.FindByPhone(ctx, phoneNumber)
	switch {
	case err == nil:
		if existing.IsProfileSetup && existing.IsKycDone {
			return SignupResult{PhoneNumber: phoneNumber, RedirectTo: user.RedirectLogin}, nil
		}
		code, err := s.issueOTP(ctx, existing)
		if err != nil {
			return SignupResult{}, err
		}
		return SignupResult{PhoneNumber: phoneNumber, OTP: code}, nil

	case errors.Is(err, user.ErrNotFound):
		code, genErr := s.codes.Generate()
		if genErr != nil {
			return SignupResult{}, genErr
		}
		expiry := s.codes.ExpiryFrom(s.now())
		u := &user.User{
			PhoneNumber:  phoneNumber,
			ReferralCode: strings.TrimSpace(referralCode),
			OTP:          code,
			OTPExpiry:    &expiry,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return SignupResult{}, err
		}
		s.deliver(ctx, phoneNumber, code)
		return SignupResult{PhoneNumber: phoneNumber, Created: true, OTP: s.reveal(code)}, nil

	default:
		return SignupResult{}, err
	}
}

// VerifyResult carries the issued token and next route after a successful OTP
// verification.
type VerifyResult struct {
	Token      string
	User       *user.User
	RedirectTo string
}

// VerifySignupOTP validates the signup code, clears it atomically and issues a
// bearer token. A fully onboarded account routes back to login: signup
// verification is only reachable mid-onboarding by construction.
func (s *Service) VerifySignupOTP(ctx context.Context, phoneNumber, code string) (VerifyResult, error) {
	u, err := s.users.FindByPhone(ctx, strings.TrimSpace(phoneNumber))
	if err != nil {
		return VerifyResult{}, err
	}
	return s.verify(ctx, u, code, user.RedirectLogin)
}

// LoginOTPResult reports an OTP issuance for the login flow.
type LoginOTPResult struct {
	EmailOrPhone string
	IsAdmin      bool
	OTP          string
}

// RequestLoginOTP issues a login code by email or phone. The admin identity
// never touches storage here; it is resolved lazily at verification.
func (s *Service) RequestLoginOTP(ctx context.Context, emailOrPhone string) (LoginOTPResult, error) {
	identifier := strings.TrimSpace(emailOrPhone)

	if s.admin.Matches(identifier) {
		return LoginOTPResult{EmailOrPhone: identifier, IsAdmin: true, OTP: s.reveal(s.admin.FixedCode)}, nil
	}

	u, err := s.users.FindByEmailOrPhone(ctx, identifier)
	if err != nil {
		return LoginOTPResult{}, err
	}
	code, err := s.issueOTP(ctx, u)
	if err != nil {
		return LoginOTPResult{}, err
	}
	return LoginOTPResult{EmailOrPhone: identifier, OTP: code}, nil
}

// VerifyLoginOTP validates a login code. The admin path lazily creates the
// sentinel record; regular users get the onboarding-aware redirect ending at
// the dashboard.
func (s *Service) VerifyLoginOTP(ctx context.Context, emailOrPhone, code string) (VerifyResult, error) {
	identifier := strings.TrimSpace(emailOrPhone)

	if s.admin.Matches(identifier) {
		return s.verifyAdmin(ctx, code)
	}

	u, err := s.users.FindByEmailOrPhone(ctx, identifier)
	if err != nil {
		return VerifyResult{}, err
	}
	return s.verify(ctx, u, code, user.RedirectDashboard)
}

// ResendOTP overwrites any pending code with a fresh one.
func (s *Service) ResendOTP(ctx context.Context, phoneNumber string) (SignupResult, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	u, err := s.users.FindByPhone(ctx, phoneNumber)
	if err != nil {
		return SignupResult{}, err
	}
	code, err := s.issueOTP(ctx, u)
	if err != nil {
		return SignupResult{}, err
	}
	return SignupResult{PhoneNumber: phoneNumber, OTP: code}, nil
}

func (s *Service) verify(ctx context.Context, u *user.User, code, finalTarget string) (VerifyResult, error) {
	if u.OTP == "" {
		return VerifyResult{}, ErrNoOTPPending
	}
	if u.OTP != code {
		return VerifyResult{}, ErrInvalidOTP
	}
	if u.OTPExpiry != nil && otp.Expired(*u.OTPExpiry, s.now()) {
		return VerifyResult{}, ErrOTPExpired
	}

	// Conditional clear: a resend racing this verify wins and the stale code
	// is rejected rather than silently accepted.
	if err := s.users.ClearOTP(ctx, u.ID, code); err != nil {
		if errors.Is(err, user.ErrOTPMismatch) {
			return VerifyResult{}, ErrInvalidOTP
		}
		return VerifyResult{}, err
	}
	u.OTP = ""
	u.OTPExpiry = nil

	token, err := s.tokens.Issue(u.ID, u.IsAdmin)
	if err != nil {
		return VerifyResult{}, err
	}

	return VerifyResult{Token: token, User: u, RedirectTo: u.NextOnboardingRedirect(finalTarget)}, nil
}

func (s *Service) verifyAdmin(ctx context.Context, code string) (VerifyResult, error) {
	if code != s.admin.FixedCode {
		return VerifyResult{}, ErrInvalidOTP
	}

	admin, err := s.users.FindAdminByEmail(ctx, s.admin.Email)
	if errors.Is(err, user.ErrNotFound) {
		admin = &user.User{
			PhoneNumber:    s.admin.Phone,
			Email:          s.admin.Email,
			IsProfileSetup: true,
			IsKycDone:      true,
			IsAdmin:        true,
			Profile: &user.Profile{
				FullName:    "System Administrator",
				Email:       s.admin.Email,
				DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
				Address:     "Admin Headquarters",
				City:        "Admin City",
				State:       "Admin State",
			},
		}
		if err := s.users.Create(ctx, admin); err != nil {
			return VerifyResult{}, err
		}
	} else if err != nil {
		return VerifyResult{}, err
	}

	token, err := s.tokens.Issue(admin.ID, true)
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{Token: token, User: admin, RedirectTo: user.RedirectAdminDashboard}, nil
}

func (s *Service) issueOTP(ctx context.Context, u *user.User) (string, error) {
	code, err := s.codes.Generate()
	if err != nil {
		return "", err
	}
	if err := s.users.SetOTP(ctx, u.ID, code, s.codes.ExpiryFrom(s.now())); err != nil {
		return "", err
	}
	s.deliver(ctx, u.PhoneNumber, code)
	return s.reveal(code), nil
}

func (s *Service) deliver(ctx context.Context, phoneNumber, code string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindOTPSMS,
		Destination: phoneNumber,
		Body:        fmt.Sprintf("Your Lendly verification code is %s", code),
	})
}

func (s *Service) reveal(code string) string {
	if s.revealOTP {
		return code
	}
	return ""
}
