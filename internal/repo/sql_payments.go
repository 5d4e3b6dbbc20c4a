package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LeventeLantos/payment-verification/internal/model"
)

const paymentColumns = `id, user_id, username, building_id, house_number, description,
	expected_amount, expected_counterparty_id, status, sms_verified, created_at, updated_at`

type SQLPaymentRepo struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

var _ PaymentRepository = (*SQLPaymentRepo)(nil)

func NewSQLPaymentRepo(db *sql.DB, d Dialect) *SQLPaymentRepo {
	return &SQLPaymentRepo{db: db, dialect: d, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (model.Payment, error) {
	var (
		p            model.Payment
		status       string
		amount       decimal.NullDecimal
		counterparty sql.NullString
	)
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Username,
		&p.BuildingID,
		&p.HouseNumber,
		&p.Description,
		&amount,
		&counterparty,
		&status,
		&p.SMSVerified,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return model.Payment{}, err
	}
	p.Status = model.Status(status)
	p.ExpectedAmount = amount
	if counterparty.Valid {
		p.ExpectedCounterpartyID = counterparty.String
	}
	return p, nil
}

func (r *SQLPaymentRepo) ListPayments(ctx context.Context, status model.Status) ([]model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLPaymentRepo) GetPayment(ctx context.Context, id string) (model.Payment, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(`SELECT `+paymentColumns+` FROM payments WHERE id = ?`), id)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Payment{}, ErrNotFound
	}
	return p, err
}

func (r *SQLPaymentRepo) CreatePayment(ctx context.Context, p model.Payment) error {
	now := r.now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	if p.Status == "" {
		p.Status = model.Pending
	}

	var counterparty sql.NullString
	if p.ExpectedCounterpartyID != "" {
		counterparty = sql.NullString{String: p.ExpectedCounterpartyID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, r.dialect.rebind(`
		INSERT INTO payments (`+paymentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`),
		p.ID,
		p.UserID,
		p.Username,
		p.BuildingID,
		p.HouseNumber,
		p.Description,
		p.ExpectedAmount,
		counterparty,
		string(p.Status),
		p.SMSVerified,
		p.CreatedAt.UTC(),
		p.UpdatedAt.UTC(),
	)
	return err
}

func (r *SQLPaymentRepo) UpdatePaymentStatus(ctx context.Context, id string, status model.Status) error {
	return r.transition(ctx, id, `
		UPDATE payments
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'
	`, string(status), r.now().UTC(), id)
}

func (r *SQLPaymentRepo) MarkVerified(ctx context.Context, id string) error {
	return r.transition(ctx, id, `
		UPDATE payments
		SET status = 'success', sms_verified = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'
	`, true, r.now().UTC(), id)
}

// transition runs a pending-guarded update and explains a no-op.
func (r *SQLPaymentRepo) transition(ctx context.Context, id, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if _, err := r.GetPayment(ctx, id); err != nil {
		return err
	}
	return ErrNotPending
}

func (r *SQLPaymentRepo) ListApprovedAdmins(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(`
		SELECT id, name, role, status, building_id
		FROM users
		WHERE role = ? AND status = ?
		ORDER BY name ASC, id ASC
	`), string(model.RoleAdmin), string(model.AccountApproved))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		var role, status string
		if err := rows.Scan(&u.ID, &u.Name, &role, &status, &u.BuildingID); err != nil {
			return nil, err
		}
		u.Role = model.Role(role)
		u.Status = model.AccountStatus(status)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *SQLPaymentRepo) CreateUser(ctx context.Context, u model.User) error {
	if u.Role == "" {
		u.Role = model.RoleMember
	}
	if u.Status == "" {
		u.Status = model.AccountPending
	}

	_, err := r.db.ExecContext(ctx, r.dialect.rebind(`
		INSERT INTO users (id, name, role, status, building_id)
		VALUES (?, ?, ?, ?, ?)
	`), u.ID, u.Name, string(u.Role), string(u.Status), u.BuildingID)
	return err
}
