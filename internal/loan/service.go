package loan

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotOwner indicates a user tried to act on another user's loan.
	ErrNotOwner = errors.New("user does not own this loan")
	// ErrAlreadyPaid indicates the installment was already settled.
	ErrAlreadyPaid = errors.New("repayment already paid")
	// ErrInvalidAmount indicates a non-positive principal or term.
	ErrInvalidAmount = errors.New("amount and term must be positive")
)

// Service manages loan applications and repayment schedules.
type Service struct {
	loans      Repository
	repayments RepaymentRepository
	now        func() time.Time
}

// NewService creates a loan service.
func NewService(loans Repository, repayments RepaymentRepository) *Service {
	return &Service{loans: loans, repayments: repayments, now: time.Now}
}

// Apply records a new pending loan application with the rate for its type.
func (s *Service) Apply(ctx context.Context, userID, borrowerName string, amount float64, termMonths int, loanType string) (*Loan, error) {
	if amount <= 0 || termMonths <= 0 {
		return nil, ErrInvalidAmount
	}

	now := s.now().UTC()
	l := &Loan{
		ID:              uuid.New(),
		UserID:          userID,
		BorrowerName:    borrowerName,
		Amount:          amount,
		InterestRate:    RateFor(loanType),
		TermMonths:      termMonths,
		LoanType:        loanType,
		Status:          StatusPending,
		ApplicationDate: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.loans.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Approve marks a pending loan approved and materializes its monthly EMI
// schedule. Calling it on a non-pending loan is a no-op.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) error {
	l, err := s.loans.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if l.Status != StatusPending {
		return nil
	}

	now := s.now().UTC()
	l.Status = StatusApproved
	l.ApprovalDate = &now
	l.UpdatedAt = now
	if l.InterestRate == 0 {
		l.InterestRate = RateFor(l.LoanType)
	}
	if err := s.loans.Update(ctx, l); err != nil {
		return err
	}

	emi := CalculateEMI(l.Amount, l.InterestRate, l.TermMonths)
	for i := 1; i <= l.TermMonths; i++ {
		rp := &Repayment{
			ID:        uuid.New(),
			LoanID:    l.ID,
			DueDate:   now.AddDate(0, i, 0),
			Amount:    emi,
			Status:    RepaymentPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repayments.Create(ctx, rp); err != nil {
			return err
		}
	}
	return nil
}

// Reject marks a pending loan rejected with a reason. Idempotent on
// non-pending loans.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	l, err := s.loans.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if l.Status != StatusPending {
		return nil
	}
	l.Status = StatusRejected
	l.RejectionReason = &reason
	l.UpdatedAt = s.now().UTC()
	return s.loans.Update(ctx, l)
}

// ListByUser returns a user's loan applications, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Loan, error) {
	return s.loans.FindByUserID(ctx, userID)
}

// ListAll returns every loan application for the admin review queue.
func (s *Service) ListAll(ctx context.Context) ([]Loan, error) {
	return s.loans.FindAll(ctx)
}

// Repayments returns the installment schedule for a loan.
func (s *Service) Repayments(ctx context.Context, loanID uuid.UUID) ([]Repayment, error) {
	return s.repayments.FindByLoanID(ctx, loanID)
}

// Pay settles a single installment after checking the caller owns the loan.
func (s *Service) Pay(ctx context.Context, repaymentID uuid.UUID, userID string) error {
	rp, err := s.repayments.FindByID(ctx, repaymentID)
	if err != nil {
		return err
	}
	l, err := s.loans.FindByID(ctx, rp.LoanID)
	if err != nil {
		return err
	}
	if l.UserID != userID {
		return ErrNotOwner
	}
	if rp.Status == RepaymentPaid {
		return ErrAlreadyPaid
	}
	rp.Status = RepaymentPaid
	rp.UpdatedAt = s.now().UTC()
	return s.repayments.Update(ctx, rp)
}
