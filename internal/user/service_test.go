package user

import (
	"context"
	"errors"
	"testing"
)

func seedUser(t *testing.T, repo Repository, u *User) *User {
	t.Helper()
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func validInput() ProfileInput {
	return ProfileInput{
		FullName:    "Asha Verma",
		Email:       "asha@example.com",
		DateOfBirth: "1994-06-15",
		Address:     "12 Lake Road",
		City:        "Pune",
		State:       "Maharashtra",
	}
}

func TestSetupProfile(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	u := seedUser(t, repo, &User{PhoneNumber: "9876543210"})

	in := validInput()
	in.FullName = "  Asha Verma  "
	in.Email = "  ASHA@Example.COM "

	updated, redirect, err := svc.SetupProfile(ctx, u.ID, in)
	if err != nil {
		t.Fatalf("setup profile: %v", err)
	}
	if redirect != RedirectKYC {
		t.Fatalf("expected redirect %q, got %q", RedirectKYC, redirect)
	}
	if !updated.IsProfileSetup {
		t.Fatalf("isProfileSetup must flip")
	}
	if updated.Profile.FullName != "Asha Verma" {
		t.Fatalf("full name not trimmed: %q", updated.Profile.FullName)
	}
	if updated.Email != "asha@example.com" {
		t.Fatalf("email not normalized: %q", updated.Email)
	}

	stored, err := repo.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !stored.IsProfileSetup || stored.Profile == nil || stored.Profile.Email != "asha@example.com" {
		t.Fatalf("profile not persisted: %+v", stored)
	}
}

func TestSetupProfileValidation(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	u := seedUser(t, repo, &User{PhoneNumber: "9876543210"})

	cases := []struct {
		name   string
		mutate func(*ProfileInput)
	}{
		{"missing name", func(in *ProfileInput) { in.FullName = "  " }},
		{"missing email", func(in *ProfileInput) { in.Email = "" }},
		{"bad date", func(in *ProfileInput) { in.DateOfBirth = "15/06/1994" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			_, _, err := svc.SetupProfile(ctx, u.ID, in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}

			stored, _ := repo.FindByID(ctx, u.ID)
			if stored.IsProfileSetup {
				t.Fatalf("failed setup must not flip isProfileSetup")
			}
		})
	}
}

func TestSetupProfileEmailTaken(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	seedUser(t, repo, &User{PhoneNumber: "1111111111", Email: "asha@example.com"})
	u := seedUser(t, repo, &User{PhoneNumber: "9876543210"})

	_, _, err := svc.SetupProfile(ctx, u.ID, validInput())
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSetupProfileOwnEmailIsNotTaken(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	u := seedUser(t, repo, &User{PhoneNumber: "9876543210", Email: "asha@example.com"})

	// Re-submitting the same email for the same account is a no-op conflict.
	if _, _, err := svc.SetupProfile(ctx, u.ID, validInput()); err != nil {
		t.Fatalf("resubmitting own email: %v", err)
	}
}

func TestUploadKYC(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	u := seedUser(t, repo, &User{PhoneNumber: "9876543210", IsProfileSetup: true})

	updated, redirect, err := svc.UploadKYC(ctx, u.ID, DocTypePAN, "https://cdn.example.com/pan.pdf")
	if err != nil {
		t.Fatalf("upload kyc: %v", err)
	}
	if redirect != RedirectLogin {
		t.Fatalf("expected redirect %q, got %q", RedirectLogin, redirect)
	}
	if !updated.IsKycDone {
		t.Fatalf("isKycDone must flip on first document")
	}
	if len(updated.KYCDocuments) != 1 || updated.KYCDocuments[0].DocType != DocTypePAN {
		t.Fatalf("document not recorded: %+v", updated.KYCDocuments)
	}

	// A second document appends without disturbing the first.
	updated, _, err = svc.UploadKYC(ctx, u.ID, DocTypeAadhaar, "https://cdn.example.com/aadhaar.pdf")
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	stored, _ := repo.FindByID(ctx, u.ID)
	if len(stored.KYCDocuments) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(stored.KYCDocuments))
	}
}

func TestUploadKYCRequiresProfile(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	u := seedUser(t, repo, &User{PhoneNumber: "9876543210"})

	_, _, err := svc.UploadKYC(ctx, u.ID, DocTypePAN, "https://cdn.example.com/pan.pdf")
	if !errors.Is(err, ErrProfileIncomplete) {
		t.Fatalf("expected ErrProfileIncomplete, got %v", err)
	}
}

func TestUploadKYCValidation(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	u := seedUser(t, repo, &User{PhoneNumber: "9876543210", IsProfileSetup: true})

	var verr *ValidationError
	if _, _, err := svc.UploadKYC(ctx, u.ID, "Passport", "https://cdn.example.com/p.pdf"); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for doc type, got %v", err)
	}
	if _, _, err := svc.UploadKYC(ctx, u.ID, DocTypePAN, "  "); !errors.As(err, &verr) {
		t.Fatalf("expected validation error for file url, got %v", err)
	}
}

func TestNextOnboardingRedirect(t *testing.T) {
	cases := []struct {
		profileSetup bool
		kycDone      bool
		want         string
	}{
		{false, false, RedirectProfileSetup},
		{true, false, RedirectKYC},
		{true, true, RedirectDashboard},
	}

	for _, tc := range cases {
		u := User{IsProfileSetup: tc.profileSetup, IsKycDone: tc.kycDone}
		if got := u.NextOnboardingRedirect(RedirectDashboard); got != tc.want {
			t.Fatalf("profileSetup=%v kycDone=%v: expected %q, got %q", tc.profileSetup, tc.kycDone, tc.want, got)
		}
	}
}
