package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SearchFilter narrows the available inventory.
type SearchFilter struct {
	PriceCeiling float64
	Categories   []string
	Term         string
	Limit        int
}

// Repository reads vehicles from the relational store.
type Repository interface {
	Search(ctx context.Context, filter SearchFilter) ([]Vehicle, error)
	FindByName(ctx context.Context, name string) (*Vehicle, error)
}

// PostgresRepository queries the vehicles table via pgx.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository wires the repository to a pgx pool or tx.
func NewPostgresRepository(db db) *PostgresRepository {
	if db == nil {
		panic("catalog: database handle required")
	}
	return &PostgresRepository{db: db}
}

// Search returns available vehicles under the ceiling ordered price
// descending, optionally narrowed by a name/brand/model term and categories.
func (r *PostgresRepository) Search(ctx context.Context, filter SearchFilter) ([]Vehicle, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, name, brand, model, year, price, category, mileage, status
		FROM vehicles
		WHERE status = $1 AND price <= $2
	`)
	args := []any{StatusAvailable, filter.PriceCeiling}

	if term := strings.TrimSpace(filter.Term); term != "" {
		args = append(args, "%"+term+"%")
		pos := len(args)
		query.WriteString(fmt.Sprintf(
			" AND (name ILIKE $%d OR brand ILIKE $%d OR model ILIKE $%d)", pos, pos, pos))
	}
	if len(filter.Categories) > 0 {
		args = append(args, filter.Categories)
		query.WriteString(fmt.Sprintf(" AND category = ANY($%d)", len(args)))
	}

	query.WriteString(" ORDER BY price DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	rows, err := r.db.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: search failed: %w", err)
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.Brand, &v.Model, &v.Year,
			&v.Price, &v.Category, &v.Mileage, &v.Status); err != nil {
			return nil, fmt.Errorf("catalog: scan failed: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: rows failed: %w", err)
	}
	return vehicles, nil
}

// FindByName fetches the first vehicle matching the name regardless of
// status, used by the supervisor's inventory cross-check.
func (r *PostgresRepository) FindByName(ctx context.Context, name string) (*Vehicle, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, brand, model, year, price, category, mileage, status
		FROM vehicles
		WHERE name ILIKE $1 OR model ILIKE $1
		ORDER BY price DESC
		LIMIT 1
	`, "%"+strings.TrimSpace(name)+"%")
	if err != nil {
		return nil, fmt.Errorf("catalog: lookup failed: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var v Vehicle
	if err := rows.Scan(&v.ID, &v.Name, &v.Brand, &v.Model, &v.Year,
		&v.Price, &v.Category, &v.Mileage, &v.Status); err != nil {
		return nil, fmt.Errorf("catalog: scan failed: %w", err)
	}
	return &v, nil
}
