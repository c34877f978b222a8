package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/zeronote/zeronote/internal/common"
	"github.com/zeronote/zeronote/internal/model"
)

const transactionColumns = `id, amount, type, category, scenario, description,
	merchant, location, transaction_date, ai_analysis, source, external_id,
	created_at, updated_at`

// Save persists a new transaction, assigning its id and audit timestamps.
// The caller never supplies the id.
func (s *SQLiteStorage) Save(ctx context.Context, txn model.Transaction) (model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return model.Transaction{}, err
	}
	if err := txn.Validate(); err != nil {
		return model.Transaction{}, fmt.Errorf("invalid transaction: %w", err)
	}

	now := time.Now().UTC()
	txn.ID = uuid.New().String()
	txn.CreatedAt = now
	txn.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.Amount.StringFixed(2),
		string(txn.Type),
		string(txn.Category),
		string(txn.Scenario),
		txn.Description,
		txn.Merchant,
		txn.Location,
		txn.TransactionDate,
		txn.AIAnalysis,
		txn.Source,
		txn.ExternalID,
		txn.CreatedAt,
		txn.UpdatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return model.Transaction{}, fmt.Errorf("external id %q: %w", txn.ExternalID, common.ErrDuplicateEntry)
		}
		return model.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}

	return txn, nil
}

// Get retrieves a transaction by id. Returns common.ErrNotFound if absent.
func (s *SQLiteStorage) Get(ctx context.Context, id string) (model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return model.Transaction{}, err
	}
	if err := validateString(id, "id"); err != nil {
		return model.Transaction{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE id = ?`, id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// Update overwrites a stored transaction's mutable fields and refreshes
// updated_at. Returns common.ErrNotFound if the id does not exist.
func (s *SQLiteStorage) Update(ctx context.Context, txn model.Transaction) (model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return model.Transaction{}, err
	}
	if err := validateString(txn.ID, "id"); err != nil {
		return model.Transaction{}, err
	}
	if err := txn.Validate(); err != nil {
		return model.Transaction{}, fmt.Errorf("invalid transaction: %w", err)
	}

	txn.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET
			amount = ?, type = ?, category = ?, scenario = ?,
			description = ?, merchant = ?, location = ?,
			transaction_date = ?, ai_analysis = ?, updated_at = ?
		WHERE id = ?`,
		txn.Amount.StringFixed(2),
		string(txn.Type),
		string(txn.Category),
		string(txn.Scenario),
		txn.Description,
		txn.Merchant,
		txn.Location,
		txn.TransactionDate,
		txn.AIAnalysis,
		txn.UpdatedAt,
		txn.ID,
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to update transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", txn.ID, common.ErrNotFound)
	}

	return txn, nil
}

// Delete removes a transaction by id, reporting whether it existed.
// Deleting an unknown id is not an error.
func (s *SQLiteStorage) Delete(ctx context.Context, id string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(id, "id"); err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check delete result: %w", err)
	}
	return affected > 0, nil
}

// ExistsByExternalID reports whether a record with the given external id has
// already been ingested.
func (s *SQLiteStorage) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(externalID, "externalID"); err != nil {
		return false, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM transactions WHERE external_id = ?`, externalID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check external id: %w", err)
	}
	return count > 0, nil
}

// Search returns transactions whose description or merchant contains the
// keyword, case-insensitively, newest first. Each matching record appears
// once even when both fields match.
func (s *SQLiteStorage) Search(ctx context.Context, keyword string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(keyword, "keyword"); err != nil {
		return nil, err
	}

	// instr avoids LIKE wildcard interpretation of user input.
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE instr(lower(description), lower(?)) > 0
		   OR instr(lower(merchant), lower(?)) > 0
		ORDER BY transaction_date DESC`, keyword, keyword)
	if err != nil {
		return nil, fmt.Errorf("failed to search transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTransactions(rows)
}

// ListRecent returns the most recent transactions by transaction date.
func (s *SQLiteStorage) ListRecent(ctx context.Context, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		ORDER BY transaction_date DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTransactions(rows)
}

// ListAll returns a page of transactions ordered by transaction date
// descending.
func (s *SQLiteStorage) ListAll(ctx context.Context, limit, offset int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		ORDER BY transaction_date DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTransactions(rows)
}

// ListByCategory returns a page of transactions in the given category,
// newest first.
func (s *SQLiteStorage) ListByCategory(ctx context.Context, category model.Category, limit, offset int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE category = ?
		ORDER BY transaction_date DESC
		LIMIT ? OFFSET ?`, string(category), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions by category: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTransactions(rows)
}

// ListByDateRange returns transactions whose transaction date falls inside
// the inclusive window, newest first.
func (s *SQLiteStorage) ListByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE transaction_date >= ? AND transaction_date <= ?
		ORDER BY transaction_date DESC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions by date range: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTransactions(rows)
}

// ListByTypeInRange returns transactions of one type inside the inclusive
// window. This feeds the aggregator, which sums amounts with exact decimal
// arithmetic rather than in SQL.
func (s *SQLiteStorage) ListByTypeInRange(ctx context.Context, txType model.TransactionType, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE type = ? AND transaction_date >= ? AND transaction_date <= ?
		ORDER BY transaction_date DESC`, string(txType), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions by type: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTransactions(rows)
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var txn model.Transaction
	var amount string
	var txType, category, scenario string

	err := row.Scan(
		&txn.ID,
		&amount,
		&txType,
		&category,
		&scenario,
		&txn.Description,
		&txn.Merchant,
		&txn.Location,
		&txn.TransactionDate,
		&txn.AIAnalysis,
		&txn.Source,
		&txn.ExternalID,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		return model.Transaction{}, err
	}

	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("corrupt amount %q: %w", amount, err)
	}
	txn.Type = model.TransactionType(txType)
	txn.Category = model.Category(category)
	txn.Scenario = model.Scenario(scenario)

	return txn, nil
}

func collectTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}
