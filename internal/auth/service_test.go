package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lendly/lendly/internal/otp"
	"github.com/lendly/lendly/internal/user"
)

const (
	testCode  = "123456"
	testPhone = "9876543210"
)

var testAdmin = AdminIdentity{Email: "admin@loanapp.com", Phone: "0000000000", FixedCode: testCode}

func newTestService(repo user.Repository) *Service {
	codes := otp.NewGenerator(false, testCode, 10*time.Minute)
	tokens := NewTokenIssuer("test-secret", time.Hour)
	return NewService(repo, codes, tokens, testAdmin, nil, true)
}

func TestSignupCreatesUserWithOTP(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	res, err := svc.Signup(ctx, testPhone, "REF42")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if !res.Created {
		t.Fatalf("expected a new user to be created")
	}
	if res.RedirectTo != "" {
		t.Fatalf("new signup must not short-circuit, got redirect %q", res.RedirectTo)
	}
	if res.OTP != testCode {
		t.Fatalf("expected dev-mode otp %q, got %q", testCode, res.OTP)
	}

	u, err := repo.FindByPhone(ctx, testPhone)
	if err != nil {
		t.Fatalf("find created user: %v", err)
	}
	if u.OTP != testCode || u.OTPExpiry == nil {
		t.Fatalf("expected otp and expiry persisted together")
	}
	if u.ReferralCode != "REF42" {
		t.Fatalf("expected referral code persisted, got %q", u.ReferralCode)
	}
}

func TestSignupFullyOnboardedRedirectsToLogin(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	u := &user.User{PhoneNumber: testPhone, IsProfileSetup: true, IsKycDone: true}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	res, err := svc.Signup(ctx, testPhone, "")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if res.RedirectTo != user.RedirectLogin {
		t.Fatalf("expected redirect %q, got %q", user.RedirectLogin, res.RedirectTo)
	}
	if res.OTP != "" {
		t.Fatalf("no otp may be issued for a complete account")
	}

	stored, _ := repo.FindByPhone(ctx, testPhone)
	if stored.OTP != "" || stored.OTPExpiry != nil {
		t.Fatalf("stored otp state must remain untouched")
	}
}

func TestSignupIncompleteReissuesOTP(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	u := &user.User{PhoneNumber: testPhone, IsProfileSetup: true}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	res, err := svc.Signup(ctx, testPhone, "")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if res.Created {
		t.Fatalf("existing user must not be recreated")
	}
	if res.OTP != testCode {
		t.Fatalf("expected reissued otp")
	}
}

func TestVerifySignupOTP(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, testPhone, ""); err != nil {
		t.Fatalf("signup: %v", err)
	}

	res, err := svc.VerifySignupOTP(ctx, testPhone, testCode)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.RedirectTo != user.RedirectProfileSetup {
		t.Fatalf("expected redirect %q, got %q", user.RedirectProfileSetup, res.RedirectTo)
	}

	claims, err := NewTokenIssuer("test-secret", time.Hour).Verify(res.Token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.Subject != res.User.ID {
		t.Fatalf("token subject %q does not match user id %q", claims.Subject, res.User.ID)
	}

	stored, _ := repo.FindByPhone(ctx, testPhone)
	if stored.OTP != "" || stored.OTPExpiry != nil {
		t.Fatalf("otp state must be cleared after verification")
	}
}

func TestVerifySignupOTPFailures(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.VerifySignupOTP(ctx, "0000000001", testCode); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown phone, got %v", err)
	}

	u := &user.User{PhoneNumber: testPhone}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := svc.VerifySignupOTP(ctx, testPhone, testCode); !errors.Is(err, ErrNoOTPPending) {
		t.Fatalf("expected ErrNoOTPPending, got %v", err)
	}

	if _, err := svc.Signup(ctx, testPhone, ""); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.VerifySignupOTP(ctx, testPhone, "999999"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP, got %v", err)
	}

	// A failed attempt leaves the stored code intact so a retry succeeds.
	if _, err := svc.VerifySignupOTP(ctx, testPhone, testCode); err != nil {
		t.Fatalf("retry after invalid attempt: %v", err)
	}
}

func TestVerifySignupOTPExpired(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, testPhone, ""); err != nil {
		t.Fatalf("signup: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(11 * time.Minute) }

	if _, err := svc.VerifySignupOTP(ctx, testPhone, testCode); !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}
}

func TestVerifyRejectsStaleCodeAfterResend(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	u := &user.User{PhoneNumber: testPhone}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	expiry := time.Now().Add(10 * time.Minute)
	if err := repo.SetOTP(ctx, u.ID, "111111", expiry); err != nil {
		t.Fatalf("set otp: %v", err)
	}
	// A concurrent resend overwrites the code before this verify commits.
	if err := repo.SetOTP(ctx, u.ID, "222222", expiry); err != nil {
		t.Fatalf("overwrite otp: %v", err)
	}

	if _, err := svc.VerifySignupOTP(ctx, testPhone, "111111"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected stale code rejection, got %v", err)
	}
	if _, err := svc.VerifySignupOTP(ctx, testPhone, "222222"); err != nil {
		t.Fatalf("latest code must verify: %v", err)
	}
}

func TestRequestLoginOTPAdminSkipsStorage(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	res, err := svc.RequestLoginOTP(ctx, "Admin@LoanApp.com")
	if err != nil {
		t.Fatalf("request admin otp: %v", err)
	}
	if !res.IsAdmin {
		t.Fatalf("expected admin flag")
	}
	if _, err := repo.FindAdminByEmail(ctx, testAdmin.Email); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("admin record must not exist before login verification")
	}
}

func TestRequestLoginOTPUnknownUser(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := newTestService(repo)

	if _, err := svc.RequestLoginOTP(context.Background(), "nobody@example.com"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVerifyLoginOTPAdminLazyCreation(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.VerifyLoginOTP(ctx, testAdmin.Email, "000000"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP for wrong admin code, got %v", err)
	}

	res, err := svc.VerifyLoginOTP(ctx, testAdmin.Email, testCode)
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if res.RedirectTo != user.RedirectAdminDashboard {
		t.Fatalf("expected admin dashboard redirect, got %q", res.RedirectTo)
	}
	if !res.User.IsAdmin || !res.User.IsProfileSetup || !res.User.IsKycDone {
		t.Fatalf("admin sentinel must be created fully onboarded")
	}

	again, err := svc.VerifyLoginOTP(ctx, testAdmin.Email, testCode)
	if err != nil {
		t.Fatalf("second admin login: %v", err)
	}
	if again.User.ID != res.User.ID {
		t.Fatalf("admin sentinel must be created once, got ids %s and %s", res.User.ID, again.User.ID)
	}
}

func TestVerifyLoginOTPRedirects(t *testing.T) {
	cases := []struct {
		name         string
		profileSetup bool
		kycDone      bool
		want         string
	}{
		{"fresh account", false, false, user.RedirectProfileSetup},
		{"profile done", true, false, user.RedirectKYC},
		{"fully onboarded", true, true, user.RedirectDashboard},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := user.NewMemoryRepository()
			svc := newTestService(repo)
			ctx := context.Background()

			u := &user.User{PhoneNumber: testPhone, IsProfileSetup: tc.profileSetup, IsKycDone: tc.kycDone}
			if err := repo.Create(ctx, u); err != nil {
				t.Fatalf("seed user: %v", err)
			}
			if _, err := svc.RequestLoginOTP(ctx, testPhone); err != nil {
				t.Fatalf("request otp: %v", err)
			}

			res, err := svc.VerifyLoginOTP(ctx, testPhone, testCode)
			if err != nil {
				t.Fatalf("verify login: %v", err)
			}
			if res.RedirectTo != tc.want {
				t.Fatalf("expected redirect %q, got %q", tc.want, res.RedirectTo)
			}
		})
	}
}

func TestResendOTPUnknownPhone(t *testing.T) {
	repo := user.NewMemoryRepository()
	svc := newTestService(repo)

	if _, err := svc.ResendOTP(context.Background(), "0000000001"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
