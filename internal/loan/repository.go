package loan

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrLoanNotFound indicates no loan matches the id.
	ErrLoanNotFound = errors.New("loan not found")
	// ErrRepaymentNotFound indicates no repayment matches the id.
	ErrRepaymentNotFound = errors.New("repayment not found")
)

// Repository persists loans.
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	FindByID(ctx context.Context, id uuid.UUID) (*Loan, error)
	FindByUserID(ctx context.Context, userID string) ([]Loan, error)
	FindAll(ctx context.Context) ([]Loan, error)
	Update(ctx context.Context, l *Loan) error
}

// RepaymentRepository persists installment schedules.
type RepaymentRepository interface {
	Create(ctx context.Context, r *Repayment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Repayment, error)
	FindByLoanID(ctx context.Context, loanID uuid.UUID) ([]Repayment, error)
	Update(ctx context.Context, r *Repayment) error
}
