package loan

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository(), NewMemoryRepaymentRepository())
}

func TestApply(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	l, err := svc.Apply(ctx, "user-1", "Asha Verma", 100000, 12, "home")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, l.Status)
	assert.Equal(t, 8.0, l.InterestRate)
	assert.False(t, l.ApplicationDate.IsZero())
	assert.Nil(t, l.ApprovalDate)

	loans, err := svc.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, l.ID, loans[0].ID)
}

func TestApplyDefaultRate(t *testing.T) {
	svc := newTestService()

	l, err := svc.Apply(context.Background(), "user-1", "Asha Verma", 50000, 6, "personal")
	require.NoError(t, err)
	assert.Equal(t, 10.0, l.InterestRate)
}

func TestApplyRejectsInvalidInput(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Apply(ctx, "user-1", "Asha Verma", 0, 12, "home")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Apply(ctx, "user-1", "Asha Verma", 100000, 0, "home")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestApproveBuildsSchedule(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	approvedAt := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return approvedAt }

	l, err := svc.Apply(ctx, "user-1", "Asha Verma", 100000, 12, "home")
	require.NoError(t, err)

	require.NoError(t, svc.Approve(ctx, l.ID))

	stored, err := svc.loans.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, stored.Status)
	require.NotNil(t, stored.ApprovalDate)
	assert.Equal(t, approvedAt, *stored.ApprovalDate)

	schedule, err := svc.Repayments(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, schedule, 12)

	emi := CalculateEMI(100000, 8, 12)
	for i, rp := range schedule {
		assert.Equal(t, emi, rp.Amount)
		assert.Equal(t, RepaymentPending, rp.Status)
		assert.Equal(t, approvedAt.AddDate(0, i+1, 0), rp.DueDate)
	}
}

func TestApproveIsIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	l, err := svc.Apply(ctx, "user-1", "Asha Verma", 100000, 12, "home")
	require.NoError(t, err)

	require.NoError(t, svc.Approve(ctx, l.ID))
	require.NoError(t, svc.Approve(ctx, l.ID))

	schedule, err := svc.Repayments(ctx, l.ID)
	require.NoError(t, err)
	assert.Len(t, schedule, 12, "second approval must not duplicate the schedule")
}

func TestApproveUnknownLoan(t *testing.T) {
	svc := newTestService()
	assert.ErrorIs(t, svc.Approve(context.Background(), uuid.New()), ErrLoanNotFound)
}

func TestReject(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	l, err := svc.Apply(ctx, "user-1", "Asha Verma", 100000, 12, "home")
	require.NoError(t, err)

	require.NoError(t, svc.Reject(ctx, l.ID, "income not verifiable"))

	stored, err := svc.loans.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, stored.Status)
	require.NotNil(t, stored.RejectionReason)
	assert.Equal(t, "income not verifiable", *stored.RejectionReason)

	// Rejection after approval leaves the loan approved.
	l2, err := svc.Apply(ctx, "user-1", "Asha Verma", 50000, 6, "car")
	require.NoError(t, err)
	require.NoError(t, svc.Approve(ctx, l2.ID))
	require.NoError(t, svc.Reject(ctx, l2.ID, "too late"))

	stored2, err := svc.loans.FindByID(ctx, l2.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, stored2.Status)
}

func TestPay(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	l, err := svc.Apply(ctx, "user-1", "Asha Verma", 100000, 3, "gold")
	require.NoError(t, err)
	require.NoError(t, svc.Approve(ctx, l.ID))

	schedule, err := svc.Repayments(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, schedule, 3)

	first := schedule[0]

	assert.ErrorIs(t, svc.Pay(ctx, first.ID, "someone-else"), ErrNotOwner)

	require.NoError(t, svc.Pay(ctx, first.ID, "user-1"))
	assert.ErrorIs(t, svc.Pay(ctx, first.ID, "user-1"), ErrAlreadyPaid)

	schedule, err = svc.Repayments(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, RepaymentPaid, schedule[0].Status)
	assert.Equal(t, RepaymentPending, schedule[1].Status)

	assert.ErrorIs(t, svc.Pay(ctx, uuid.New(), "user-1"), ErrRepaymentNotFound)
}

func TestListAll(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Apply(ctx, "user-1", "Asha Verma", 100000, 12, "home")
	require.NoError(t, err)
	_, err = svc.Apply(ctx, "user-2", "Ravi Singh", 30000, 6, "car")
	require.NoError(t, err)

	loans, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, loans, 2)
}
