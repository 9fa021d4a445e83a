package repository

import (
	"context"
	"fmt"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
)

const stockColumns = `s.id, s.product_id, p.name, s.quantity, s.low_threshold, s.updated_at`

func (q *pgQueries) GetStockRecord(ctx context.Context, productID int64) (*domain.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_records s JOIN products p ON p.id = s.product_id
	          WHERE s.product_id = $1`
	var s domain.StockRecord
	err := q.db.QueryRowContext(ctx, query, productID).
		Scan(&s.ID, &s.ProductID, &s.ProductName, &s.Quantity, &s.LowThreshold, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "stock record for product", productID)
	}
	return &s, nil
}

func (q *pgQueries) UpsertStockRecord(ctx context.Context, s *domain.StockRecord) error {
	query := `INSERT INTO stock_records (product_id, quantity, low_threshold, updated_at)
	          VALUES ($1, $2, $3, NOW())
	          ON CONFLICT (product_id) DO UPDATE
	          SET quantity = EXCLUDED.quantity, low_threshold = EXCLUDED.low_threshold, updated_at = NOW()
	          RETURNING id, updated_at`
	err := q.db.QueryRowContext(ctx, query, s.ProductID, s.Quantity, s.LowThreshold).Scan(&s.ID, &s.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "upsert stock record")
	}
	return nil
}

func (q *pgQueries) ListStockRecords(ctx context.Context) ([]*domain.StockRecord, error) {
	return q.queryStockRecords(ctx, `SELECT `+stockColumns+` FROM stock_records s
	    JOIN products p ON p.id = s.product_id ORDER BY s.product_id`)
}

func (q *pgQueries) ListLowStockRecords(ctx context.Context) ([]*domain.StockRecord, error) {
	return q.queryStockRecords(ctx, `SELECT `+stockColumns+` FROM stock_records s
	    JOIN products p ON p.id = s.product_id WHERE s.quantity < s.low_threshold ORDER BY s.quantity, s.product_id`)
}

func (q *pgQueries) queryStockRecords(ctx context.Context, query string) ([]*domain.StockRecord, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query stock records: %w", err)
	}
	defer rows.Close()

	var records []*domain.StockRecord
	for rows.Next() {
		var s domain.StockRecord
		if err := rows.Scan(&s.ID, &s.ProductID, &s.ProductName, &s.Quantity, &s.LowThreshold, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock record row: %w", err)
		}
		records = append(records, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}

func (q *pgQueries) AppendLedgerEntry(ctx context.Context, e *domain.LedgerEntry) error {
	query := `INSERT INTO stock_ledger (product_id, action, delta, quantity) VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at`
	err := q.db.QueryRowContext(ctx, query, e.ProductID, e.Action, e.Delta, e.Quantity).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return mapWriteError(err, "insert ledger entry")
	}
	return nil
}

func (q *pgQueries) ListLedgerEntries(ctx context.Context, productID *int64) ([]*domain.LedgerEntry, error) {
	query := `SELECT id, product_id, action, delta, quantity, created_at FROM stock_ledger
	          WHERE ($1::BIGINT IS NULL OR product_id = $1) ORDER BY id`
	rows, err := q.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var entries []*domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.Action, &e.Delta, &e.Quantity, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}
