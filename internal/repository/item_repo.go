// Package repository persists fridge and cart items. The two tables
// share the same shape and lifecycle: one row per user and name,
// re-adding increments quantity, decreasing to zero deletes the row.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/sojeong0302/nengteol-ai-ocr/internal/models"
)

// ItemRepository handles food rows in a single table (foods or carts).
// Writes are per-statement atomic; concurrent increments on the same
// row can lose updates, which is acceptable at this scale.
type ItemRepository struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
}

// NewFoodRepository creates a repository over the fridge table.
func NewFoodRepository(db *sql.DB, logger *zap.Logger) *ItemRepository {
	return &ItemRepository{db: db, table: "foods", logger: logger}
}

// NewCartRepository creates a repository over the cart table.
func NewCartRepository(db *sql.DB, logger *zap.Logger) *ItemRepository {
	return &ItemRepository{db: db, table: "carts", logger: logger}
}

// ListByUser returns a user's items, most recently registered first.
func (r *ItemRepository) ListByUser(ctx context.Context, userID int64) ([]models.Food, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, category, quantity, unit, expiry_date, registered_at
		FROM %s
		WHERE user_id = ?
		ORDER BY registered_at DESC, id DESC
	`, r.table)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list items", zap.String("table", r.table), zap.Error(err))
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []models.Food
	for rows.Next() {
		var item models.Food
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.Name,
			&item.Category,
			&item.Quantity,
			&item.Unit,
			&item.ExpiryDate,
			&item.RegisteredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetByName returns a user's item by name, or nil when absent.
func (r *ItemRepository) GetByName(ctx context.Context, userID int64, name string) (*models.Food, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, category, quantity, unit, expiry_date, registered_at
		FROM %s
		WHERE user_id = ? AND name = ?
	`, r.table)

	var item models.Food
	err := r.db.QueryRowContext(ctx, query, userID, name).Scan(
		&item.ID,
		&item.UserID,
		&item.Name,
		&item.Category,
		&item.Quantity,
		&item.Unit,
		&item.ExpiryDate,
		&item.RegisteredAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get item", zap.String("table", r.table), zap.Error(err))
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// Add inserts a new item or increments the quantity of an existing one
// with the same user and name. Returns the resulting row and whether it
// was newly created.
func (r *ItemRepository) Add(ctx context.Context, item models.Food) (*models.Food, bool, error) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	existing, err := r.GetByName(ctx, item.UserID, item.Name)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		query := fmt.Sprintf(`
			INSERT INTO %s (user_id, name, category, quantity, unit, expiry_date)
			VALUES (?, ?, ?, ?, ?, ?)
		`, r.table)

		result, err := r.db.ExecContext(ctx, query,
			item.UserID, item.Name, item.Category, item.Quantity, item.Unit, item.ExpiryDate)
		if err != nil {
			r.logger.Error("Failed to insert item", zap.String("table", r.table), zap.Error(err))
			return nil, false, fmt.Errorf("failed to insert item: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, false, fmt.Errorf("failed to get last insert id: %w", err)
		}

		created, err := r.GetByName(ctx, item.UserID, item.Name)
		if err != nil {
			return nil, false, err
		}
		if created == nil {
			return nil, false, fmt.Errorf("inserted item %d not found", id)
		}
		return created, true, nil
	}

	query := fmt.Sprintf("UPDATE %s SET quantity = quantity + ? WHERE id = ?", r.table)
	if _, err := r.db.ExecContext(ctx, query, item.Quantity, existing.ID); err != nil {
		r.logger.Error("Failed to increment item quantity", zap.String("table", r.table), zap.Error(err))
		return nil, false, fmt.Errorf("failed to increment quantity: %w", err)
	}

	existing.Quantity += item.Quantity
	return existing, false, nil
}

// Decrease lowers an item's quantity, deleting the row when it reaches
// zero. Returns the remaining item (nil when deleted or absent) and
// whether the row was deleted.
func (r *ItemRepository) Decrease(ctx context.Context, userID int64, name string, count int) (*models.Food, bool, error) {
	if count <= 0 {
		count = 1
	}

	existing, err := r.GetByName(ctx, userID, name)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, nil
	}

	if existing.Quantity > count {
		query := fmt.Sprintf("UPDATE %s SET quantity = quantity - ? WHERE id = ?", r.table)
		if _, err := r.db.ExecContext(ctx, query, count, existing.ID); err != nil {
			r.logger.Error("Failed to decrease item quantity", zap.String("table", r.table), zap.Error(err))
			return nil, false, fmt.Errorf("failed to decrease quantity: %w", err)
		}
		existing.Quantity -= count
		return existing, false, nil
	}

	if err := r.deleteByID(ctx, existing.ID); err != nil {
		return nil, false, err
	}
	return nil, true, nil
}

// Delete removes a user's item regardless of quantity.
func (r *ItemRepository) Delete(ctx context.Context, userID int64, name string) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND name = ?", r.table)
	result, err := r.db.ExecContext(ctx, query, userID, name)
	if err != nil {
		r.logger.Error("Failed to delete item", zap.String("table", r.table), zap.Error(err))
		return false, fmt.Errorf("failed to delete item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *ItemRepository) deleteByID(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", r.table)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		r.logger.Error("Failed to delete item row", zap.String("table", r.table), zap.Error(err))
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}
