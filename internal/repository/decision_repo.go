package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"timeguard/internal/models"

	"github.com/google/uuid"
)

// timestampLayout sorts lexically and is parsed back into time.Time by the driver.
const timestampLayout = "2006-01-02 15:04:05.000"

const insertDecisionSQL = `
		INSERT INTO guard_decisions (id, occurred_at, kind, visibility, screen_power, decision)
		VALUES (?, ?, ?, ?, ?, ?)
	`

const selectDecisionsSQL = `SELECT id, occurred_at, kind, visibility, screen_power, decision FROM guard_decisions`

type DecisionSQLite struct {
	db *sql.DB
}

func NewDecisionSQLite(db *sql.DB) *DecisionSQLite { return &DecisionSQLite{db: db} }

// Append inserts a decision. If ID or OccurredAt are empty, they're set.
func (r *DecisionSQLite) Append(ctx context.Context, d models.GuardDecision) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.OccurredAt.IsZero() {
		d.OccurredAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, insertDecisionSQL,
		d.ID,
		d.OccurredAt.UTC().Format(timestampLayout),
		strings.ToLower(strings.TrimSpace(d.Kind)),
		d.Visibility,
		d.ScreenPower,
		strings.ToUpper(strings.TrimSpace(d.Decision)),
	)
	if err != nil {
		return fmt.Errorf("insert decision %s: %w", d.ID, err)
	}
	return nil
}

// List returns decisions filtered by [From, To] (inclusive), kind and
// decision, ordered ASC.
func (r *DecisionSQLite) List(ctx context.Context, f models.DecisionFilter) ([]models.GuardDecision, error) {
	var (
		conds []string
		args  []any
	)

	if !f.From.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, f.From.UTC().Format(timestampLayout))
	}
	if !f.To.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, f.To.UTC().Format(timestampLayout))
	}
	if kind := strings.ToLower(strings.TrimSpace(f.Kind)); kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, kind)
	}
	if decision := strings.ToUpper(strings.TrimSpace(f.Decision)); decision != "" {
		conds = append(conds, "decision = ?")
		args = append(args, decision)
	}

	q := selectDecisionsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	out := make([]models.GuardDecision, 0, 64)
	for rows.Next() {
		var d models.GuardDecision
		if err := rows.Scan(&d.ID, &d.OccurredAt, &d.Kind, &d.Visibility, &d.ScreenPower, &d.Decision); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.OccurredAt = d.OccurredAt.UTC()
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
