package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User // keyed by ID
}

// NewMemoryRepository builds an in-memory user store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]*User)}
}

func (r *memoryRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.PhoneNumber == phone {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) FindByEmailOrPhone(_ context.Context, identifier string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.PhoneNumber == identifier || (u.Email != "" && strings.EqualFold(u.Email, identifier)) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) FindAdminByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.IsAdmin && strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) EmailInUse(_ context.Context, email, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ID != excludeID && u.Email != "" && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) SetOTP(_ context.Context, id, code string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.OTP = code
	exp := expiry
	u.OTPExpiry = &exp
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepository) ClearOTP(_ context.Context, id, expectedCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	if u.OTP != expectedCode {
		return ErrOTPMismatch
	}
	u.OTP = ""
	u.OTPExpiry = nil
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepository) SaveProfile(_ context.Context, id string, profile Profile, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	p := profile
	u.Profile = &p
	u.Email = email
	u.IsProfileSetup = true
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepository) AppendKYCDocument(_ context.Context, id string, doc KYCDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.KYCDocuments = append(u.KYCDocuments, doc)
	u.IsKycDone = true
	u.UpdatedAt = time.Now().UTC()
	return nil
}
