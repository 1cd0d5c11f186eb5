package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/bakery_storefront/internal/models"
)

// ReceiptRepository stores local receipts of placed orders.
type ReceiptRepository struct {
	db *sqlx.DB
}

// NewReceiptRepository creates a new ReceiptRepository.
func NewReceiptRepository(db *sqlx.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// Create inserts a receipt and fills its id and creation time.
func (r *ReceiptRepository) Create(ctx context.Context, receipt *models.OrderReceipt) error {
	const q = `
		INSERT INTO order_receipts (order_id, session_id, email, item_count, grand_total, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	stmt, err := r.db.PreparexContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()
	return stmt.QueryRowxContext(ctx,
		receipt.OrderID,
		receipt.SessionID,
		receipt.Email,
		receipt.ItemCount,
		receipt.GrandTotal,
		receipt.Status,
	).Scan(&receipt.ID, &receipt.CreatedAt)
}

// ListBySession returns the receipts of a cart session, newest first.
func (r *ReceiptRepository) ListBySession(ctx context.Context, session string, limit int) ([]models.OrderReceipt, error) {
	const q = `
		SELECT id, order_id, session_id, email, item_count, grand_total, status, created_at
		FROM order_receipts
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	stmt, err := r.db.PreparexContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	receipts := []models.OrderReceipt{}
	if err := stmt.SelectContext(ctx, &receipts, session, limit); err != nil {
		return nil, err
	}
	return receipts, nil
}

// GetByOrderID returns the receipt of an order, or nil when none exists.
func (r *ReceiptRepository) GetByOrderID(ctx context.Context, orderID string) (*models.OrderReceipt, error) {
	const q = `
		SELECT id, order_id, session_id, email, item_count, grand_total, status, created_at
		FROM order_receipts
		WHERE order_id = $1`
	var receipt models.OrderReceipt
	if err := r.db.GetContext(ctx, &receipt, q, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &receipt, nil
}
