package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmailTaken indicates another user already registered the email.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrProfileIncomplete indicates KYC was attempted before profile setup.
	ErrProfileIncomplete = errors.New("please complete profile setup first")
)

// ValidationError carries a user-facing message for malformed input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Service implements profile setup and KYC completion on top of the
// repository.
type Service struct {
	repo Repository
}

// NewService creates a user service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ProfileInput is the profile-setup request payload after boundary decoding.
type ProfileInput struct {
	FullName    string
	Email       string
	DateOfBirth string
	Address     string
	City        string
	State       string
}

// SetupProfile writes the profile sub-record, promotes the email to the top
// level and flips isProfileSetup. Returns the updated user and the next
// redirect target.
func (s *Service) SetupProfile(ctx context.Context, userID string, in ProfileInput) (*User, string, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return nil, "", &ValidationError{Msg: "Full name is required"}
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, "", &ValidationError{Msg: "Email is required"}
	}

	taken, err := s.repo.EmailInUse(ctx, email, u.ID)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", ErrEmailTaken
	}

	dob, err := parseDate(in.DateOfBirth)
	if err != nil {
		return nil, "", &ValidationError{Msg: "Date of birth must be a valid date"}
	}

	profile := Profile{
		FullName:    fullName,
		Email:       email,
		DateOfBirth: dob,
		Address:     strings.TrimSpace(in.Address),
		City:        strings.TrimSpace(in.City),
		State:       strings.TrimSpace(in.State),
	}
	if err := s.repo.SaveProfile(ctx, u.ID, profile, email); err != nil {
		return nil, "", err
	}

	u.Profile = &profile
	u.Email = email
	u.IsProfileSetup = true

	redirect := RedirectKYC
	if u.IsKycDone {
		redirect = RedirectLogin
	}
	return u, redirect, nil
}

// UploadKYC appends a document record and marks KYC done. Profile setup must
// have happened first; the repository enforces nothing here.
func (s *Service) UploadKYC(ctx context.Context, userID, docType, fileURL string) (*User, string, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if !u.IsProfileSetup {
		return nil, "", ErrProfileIncomplete
	}
	if docType != DocTypePAN && docType != DocTypeAadhaar {
		return nil, "", &ValidationError{Msg: fmt.Sprintf("Document type must be %q or %q", DocTypePAN, DocTypeAadhaar)}
	}
	if strings.TrimSpace(fileURL) == "" {
		return nil, "", &ValidationError{Msg: "Document type and file URL are required"}
	}

	doc := KYCDocument{DocType: docType, FileURL: fileURL, UploadedAt: time.Now().UTC()}
	if err := s.repo.AppendKYCDocument(ctx, u.ID, doc); err != nil {
		return nil, "", err
	}

	u.KYCDocuments = append(u.KYCDocuments, doc)
	u.IsKycDone = true
	return u, RedirectLogin, nil
}

// Get returns the stored user.
func (s *Service) Get(ctx context.Context, userID string) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}
