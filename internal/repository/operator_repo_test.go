package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"

	"timeguard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func newOperatorMock(t *testing.T) (*OperatorSQLite, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	})
	return NewOperatorSQLite(db), mock
}

func TestOperatorSQLite_Create(t *testing.T) {
	tests := []struct {
		name       string
		op         models.Operator
		mockExpect func(sqlmock.Sqlmock)
		wantID     int
		wantErr    error
		errContain string
	}{
		{
			name: "controller",
			op:   models.Operator{Name: "ops", Role: models.RoleController, PasswordHash: "h1"},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertOperatorSQL)).
					WithArgs("ops", "controller", "h1").
					WillReturnResult(sqlmock.NewResult(42, 1))
			},
			wantID: 42,
		},
		{
			name: "name taken",
			op:   models.Operator{Name: "ops", Role: models.RoleObserver, PasswordHash: "h2"},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertOperatorSQL)).
					WithArgs("ops", "observer", "h2").
					WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: operators.name (2067)"))
			},
			wantErr: ErrOperatorExists,
		},
		{
			name: "exec error",
			op:   models.Operator{Name: "watcher", Role: models.RoleObserver, PasswordHash: "h3"},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertOperatorSQL)).
					WithArgs("watcher", "observer", "h3").
					WillReturnError(errors.New("disk I/O error"))
			},
			errContain: "insert operator",
		},
		{
			name: "last insert id error",
			op:   models.Operator{Name: "carol", Role: models.RoleObserver, PasswordHash: "h4"},
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta(insertOperatorSQL)).
					WithArgs("carol", "observer", "h4").
					WillReturnResult(sqlmock.NewErrorResult(errors.New("no last id")))
			},
			errContain: "last insert id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newOperatorMock(t)
			tt.mockExpect(mock)

			id, err := repo.Create(context.Background(), tt.op)

			if tt.wantErr != nil || tt.errContain != "" {
				if err == nil {
					t.Fatalf("expected error, got id=%d", id)
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if tt.errContain != "" && !strings.Contains(err.Error(), tt.errContain) {
					t.Fatalf("expected error to contain %q, got %q", tt.errContain, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != tt.wantID {
				t.Fatalf("unexpected id: want %d, got %d", tt.wantID, id)
			}
		})
	}
}

func TestOperatorSQLite_GetByName(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newOperatorMock(t)
		rows := sqlmock.NewRows([]string{"id", "name", "role", "password_hash"}).
			AddRow(7, "ops", "controller", "h123")
		mock.ExpectQuery(regexp.QuoteMeta(selectOperatorByNameSQL)).WithArgs("ops").WillReturnRows(rows)

		op, err := repo.GetByName(context.Background(), "ops")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := models.Operator{ID: 7, Name: "ops", Role: models.RoleController, PasswordHash: "h123"}
		if op == nil || *op != want {
			t.Fatalf("unexpected operator: want %+v, got %+v", want, op)
		}
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newOperatorMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectOperatorByNameSQL)).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

		op, err := repo.GetByName(context.Background(), "ghost")
		if err != nil || op != nil {
			t.Fatalf("expected (nil, nil), got (%+v, %v)", op, err)
		}
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock := newOperatorMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectOperatorByNameSQL)).WithArgs("ops").WillReturnError(errors.New("db query failed"))

		op, err := repo.GetByName(context.Background(), "ops")
		if err == nil || !strings.Contains(err.Error(), "select operator") {
			t.Fatalf("expected wrapped select error, got %v", err)
		}
		if op != nil {
			t.Fatalf("expected nil operator on error, got %+v", op)
		}
	})
}
