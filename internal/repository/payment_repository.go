package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/akylbek/payment-system/payment-api/internal/models"
)

var (
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrDuplicateTransactionID = errors.New("duplicate transaction id")
)

const pqUniqueViolation = "23505"

const selectColumns = `SELECT id, transaction_id, amount, currency, status, payment_method FROM payments`

type PaymentRepository struct {
	db      *sql.DB
	dialect dialect
}

func NewPaymentRepository(db *sql.DB, driver string) (*PaymentRepository, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	return &PaymentRepository{db: db, dialect: d}, nil
}

// InitDB creates the payments table if it does not exist.
func (r *PaymentRepository) InitDB(ctx context.Context) error {
	for _, query := range r.dialect.schema {
		if _, err := r.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Create inserts payment and fills in its ID.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	err := r.db.QueryRowContext(ctx, r.dialect.rebind(`
		INSERT INTO payments (transaction_id, amount, currency, status, payment_method)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`), payment.TransactionID, payment.Amount, payment.Currency,
		string(payment.Status), string(payment.PaymentMethod),
	).Scan(&payment.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateTransactionID
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(selectColumns+` WHERE transaction_id = ?`), transactionID)

	payment, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return payment, nil
}

func (r *PaymentRepository) List(ctx context.Context) ([]*models.Payment, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// Update writes every mutable column of payment in one statement. The row is
// addressed by transaction id.
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(`
		UPDATE payments
		SET amount = ?, currency = ?, status = ?, payment_method = ?, updated_at = CURRENT_TIMESTAMP
		WHERE transaction_id = ?
	`), payment.Amount, payment.Currency, string(payment.Status), string(payment.PaymentMethod),
		payment.TransactionID,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return requireAffected(res, "update payment")
}

func (r *PaymentRepository) Delete(ctx context.Context, transactionID string) error {
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(`DELETE FROM payments WHERE transaction_id = ?`), transactionID)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return requireAffected(res, "delete payment")
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPayment(s scanner) (*models.Payment, error) {
	var (
		payment models.Payment
		status  string
		method  string
	)
	if err := s.Scan(&payment.ID, &payment.TransactionID, &payment.Amount, &payment.Currency,
		&status, &method); err != nil {
		return nil, err
	}
	payment.Status = models.Status(status)
	payment.PaymentMethod = models.PaymentMethod(method)
	return &payment, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(sqliteErr.Error(), "UNIQUE")
		}
	}
	return false
}
