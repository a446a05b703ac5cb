package loan

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu    sync.RWMutex
	loans map[uuid.UUID]Loan
}

// NewMemoryRepository builds an in-memory loan store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{loans: make(map[uuid.UUID]Loan)}
}

func (r *memoryRepository) Create(_ context.Context, l *Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loans[l.ID] = *l
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id uuid.UUID) (*Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loans[id]
	if !ok {
		return nil, ErrLoanNotFound
	}
	return &l, nil
}

func (r *memoryRepository) FindByUserID(_ context.Context, userID string) ([]Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Loan
	for _, l := range r.loans {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sortLoans(out)
	return out, nil
}

func (r *memoryRepository) FindAll(_ context.Context) ([]Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Loan, 0, len(r.loans))
	for _, l := range r.loans {
		out = append(out, l)
	}
	sortLoans(out)
	return out, nil
}

func (r *memoryRepository) Update(_ context.Context, l *Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loans[l.ID]; !ok {
		return ErrLoanNotFound
	}
	r.loans[l.ID] = *l
	return nil
}

func sortLoans(loans []Loan) {
	sort.Slice(loans, func(i, j int) bool {
		return loans[i].ApplicationDate.After(loans[j].ApplicationDate)
	})
}

type memoryRepaymentRepository struct {
	mu         sync.RWMutex
	repayments map[uuid.UUID]Repayment
}

// NewMemoryRepaymentRepository builds an in-memory repayment store for testing.
func NewMemoryRepaymentRepository() RepaymentRepository {
	return &memoryRepaymentRepository{repayments: make(map[uuid.UUID]Repayment)}
}

func (r *memoryRepaymentRepository) Create(_ context.Context, rp *Repayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.repayments[rp.ID] = *rp
	return nil
}

func (r *memoryRepaymentRepository) FindByID(_ context.Context, id uuid.UUID) (*Repayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rp, ok := r.repayments[id]
	if !ok {
		return nil, ErrRepaymentNotFound
	}
	return &rp, nil
}

func (r *memoryRepaymentRepository) FindByLoanID(_ context.Context, loanID uuid.UUID) ([]Repayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Repayment
	for _, rp := range r.repayments {
		if rp.LoanID == loanID {
			out = append(out, rp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *memoryRepaymentRepository) Update(_ context.Context, rp *Repayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.repayments[rp.ID]; !ok {
		return ErrRepaymentNotFound
	}
	r.repayments[rp.ID] = *rp
	return nil
}
