package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"timeguard/internal/models"
)

// ErrOperatorExists is returned by Create when the name is taken.
var ErrOperatorExists = errors.New("operator already exists")

// OperatorSQLite stores control API operators.
type OperatorSQLite struct {
	db *sql.DB
}

func NewOperatorSQLite(db *sql.DB) *OperatorSQLite { return &OperatorSQLite{db: db} }

var _ Operators = (*OperatorSQLite)(nil)

const (
	insertOperatorSQL       = `INSERT INTO operators (name, role, password_hash) VALUES (?, ?, ?)`
	selectOperatorByNameSQL = `SELECT id, name, role, password_hash FROM operators WHERE name = ?`
)

// Create inserts op and returns its ID. Name and role must already be
// validated.
func (r *OperatorSQLite) Create(ctx context.Context, op models.Operator) (int, error) {
	res, err := r.db.ExecContext(ctx, insertOperatorSQL, op.Name, string(op.Role), op.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %q", ErrOperatorExists, op.Name)
		}
		return 0, fmt.Errorf("insert operator %q: %w", op.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id for operator %q: %w", op.Name, err)
	}
	return int(id), nil
}

// GetByName returns (nil, nil) when no operator has that name.
func (r *OperatorSQLite) GetByName(ctx context.Context, name string) (*models.Operator, error) {
	var (
		op   models.Operator
		role string
	)
	err := r.db.QueryRowContext(ctx, selectOperatorByNameSQL, name).Scan(&op.ID, &op.Name, &role, &op.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select operator %q: %w", name, err)
	}
	op.Role = models.Role(role)
	return &op, nil
}

// the driver reports constraint failures only through the message text
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
