package repository

import (
	"context"
	"database/sql"

	"timeguard/internal/models"
)

type Operators interface {
	Create(ctx context.Context, op models.Operator) (int, error)
	GetByName(ctx context.Context, name string) (*models.Operator, error)
}

type DecisionRepo interface {
	Append(ctx context.Context, d models.GuardDecision) error
	List(ctx context.Context, f models.DecisionFilter) ([]models.GuardDecision, error)
}

type Repository struct {
	DecisionRepo DecisionRepo
	Operators    Operators
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		DecisionRepo: NewDecisionSQLite(db),
		Operators:    NewOperatorSQLite(db),
	}
}
