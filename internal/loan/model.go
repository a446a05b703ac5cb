package loan

import (
	"time"

	"github.com/google/uuid"
)

// Status is the application state of a loan.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// RepaymentStatus is the state of a single installment.
type RepaymentStatus string

const (
	RepaymentPending RepaymentStatus = "pending"
	RepaymentPaid    RepaymentStatus = "paid"
	RepaymentOverdue RepaymentStatus = "overdue"
)

// Loan is a loan application and, once approved, its terms.
type Loan struct {
	ID              uuid.UUID  `json:"id"`
	UserID          string     `json:"userId"`
	BorrowerName    string     `json:"borrowerName"`
	Amount          float64    `json:"amount"`
	InterestRate    float64    `json:"interestRate"`
	TermMonths      int        `json:"termMonths"`
	LoanType        string     `json:"loanType"`
	Status          Status     `json:"status"`
	ApplicationDate time.Time  `json:"applicationDate"`
	ApprovalDate    *time.Time `json:"approvalDate,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Repayment is one installment of an approved loan's schedule.
type Repayment struct {
	ID        uuid.UUID       `json:"id"`
	LoanID    uuid.UUID       `json:"loanId"`
	DueDate   time.Time       `json:"dueDate"`
	Amount    float64         `json:"amount"`
	Status    RepaymentStatus `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
