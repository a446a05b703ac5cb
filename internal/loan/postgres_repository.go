package loan

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed loan repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const loanColumns = `id, user_id, borrower_name, amount, interest_rate, term_months, loan_type,
        status, application_date, approval_date, rejection_reason, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, l *Loan) error {
	_, err := r.db.Exec(ctx, `INSERT INTO loans (`+loanColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		l.ID, l.UserID, l.BorrowerName, l.Amount, l.InterestRate, l.TermMonths, l.LoanType,
		l.Status, l.ApplicationDate.UTC(), l.ApprovalDate, l.RejectionReason, l.CreatedAt.UTC(), l.UpdatedAt.UTC())
	return err
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*Loan, error) {
	row := r.db.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	return scanLoan(row)
}

func (r *PostgresRepository) FindByUserID(ctx context.Context, userID string) ([]Loan, error) {
	rows, err := r.db.Query(ctx, `SELECT `+loanColumns+` FROM loans WHERE user_id = $1 ORDER BY application_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLoans(rows)
}

func (r *PostgresRepository) FindAll(ctx context.Context) ([]Loan, error) {
	rows, err := r.db.Query(ctx, `SELECT `+loanColumns+` FROM loans ORDER BY application_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLoans(rows)
}

func (r *PostgresRepository) Update(ctx context.Context, l *Loan) error {
	cmd, err := r.db.Exec(ctx, `UPDATE loans SET status = $1, interest_rate = $2, approval_date = $3,
        rejection_reason = $4, updated_at = $5 WHERE id = $6`,
		l.Status, l.InterestRate, l.ApprovalDate, l.RejectionReason, l.UpdatedAt.UTC(), l.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrLoanNotFound
	}
	return nil
}

func scanLoan(row pgx.Row) (*Loan, error) {
	var l Loan
	err := row.Scan(&l.ID, &l.UserID, &l.BorrowerName, &l.Amount, &l.InterestRate, &l.TermMonths,
		&l.LoanType, &l.Status, &l.ApplicationDate, &l.ApprovalDate, &l.RejectionReason, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return &l, nil
}

func collectLoans(rows pgx.Rows) ([]Loan, error) {
	var loans []Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *l)
	}
	return loans, rows.Err()
}

// PostgresRepaymentRepository implements RepaymentRepository using PostgreSQL.
type PostgresRepaymentRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepaymentRepository builds a Postgres-backed repayment repository.
func NewPostgresRepaymentRepository(db *pgxpool.Pool) *PostgresRepaymentRepository {
	return &PostgresRepaymentRepository{db: db}
}

const repaymentColumns = `id, loan_id, due_date, amount, status, created_at, updated_at`

func (r *PostgresRepaymentRepository) Create(ctx context.Context, rp *Repayment) error {
	_, err := r.db.Exec(ctx, `INSERT INTO repayments (`+repaymentColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rp.ID, rp.LoanID, rp.DueDate.UTC(), rp.Amount, rp.Status, rp.CreatedAt.UTC(), rp.UpdatedAt.UTC())
	return err
}

func (r *PostgresRepaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*Repayment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+repaymentColumns+` FROM repayments WHERE id = $1`, id)
	var rp Repayment
	if err := row.Scan(&rp.ID, &rp.LoanID, &rp.DueDate, &rp.Amount, &rp.Status, &rp.CreatedAt, &rp.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRepaymentNotFound
		}
		return nil, err
	}
	return &rp, nil
}

func (r *PostgresRepaymentRepository) FindByLoanID(ctx context.Context, loanID uuid.UUID) ([]Repayment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+repaymentColumns+` FROM repayments WHERE loan_id = $1 ORDER BY due_date ASC`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repayments []Repayment
	for rows.Next() {
		var rp Repayment
		if err := rows.Scan(&rp.ID, &rp.LoanID, &rp.DueDate, &rp.Amount, &rp.Status, &rp.CreatedAt, &rp.UpdatedAt); err != nil {
			return nil, err
		}
		repayments = append(repayments, rp)
	}
	return repayments, rows.Err()
}

func (r *PostgresRepaymentRepository) Update(ctx context.Context, rp *Repayment) error {
	cmd, err := r.db.Exec(ctx, `UPDATE repayments SET status = $1, updated_at = $2 WHERE id = $3`,
		rp.Status, rp.UpdatedAt.UTC(), rp.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRepaymentNotFound
	}
	return nil
}
