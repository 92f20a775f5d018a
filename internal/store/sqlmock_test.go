package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ppiankov/politikcred/internal/model"
)

func newMockStore(t *testing.T) (*SQL, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return &SQL{db: db, driver: "pgx"}, mock
}

func testVerification(t *testing.T) *model.Verification {
	t.Helper()
	p, err := model.NewPromise("p-1", "off-1", "Je m'engage à réduire les impôts", model.CategoryEconomic, 0.9, true, model.Source{}, day)
	if err != nil {
		t.Fatal(err)
	}
	a, err := model.NewAction("a-1", "off-1", "Baisse d'impôt", model.PositionFor, day, model.Source{})
	if err != nil {
		t.Fatal(err)
	}
	v, err := model.NewVerification("v-1", p, a, model.MatchKept, 0.3, model.MethodKeyword, "score 0.30")
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestInsertVerificationConflictIsDuplicate(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO verifications")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.InsertVerification(context.Background(), testVerification(t))
	if !errors.Is(err, model.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestInsertVerificationUniqueViolation(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO verifications")).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := s.InsertVerification(context.Background(), testVerification(t))
	if !errors.Is(err, model.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestInsertVerificationOtherErrorIsNotDuplicate(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO verifications")).
		WillReturnError(errors.New("connection reset"))

	err := s.InsertVerification(context.Background(), testVerification(t))
	if err == nil || errors.Is(err, model.ErrDuplicate) {
		t.Errorf("expected a persistence error, got %v", err)
	}
}

func TestAppendHistoryAssignsSequence(t *testing.T) {
	s, mock := newMockStore(t)
	entry, err := model.NewHistoryEntry("h-3", "off-1", 100, 105, model.ReasonPromiseKept, "kept", nil, 1, 0, 200)
	if err != nil {
		t.Fatal(err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT sequence, new_score FROM credibility_history")).
		WithArgs("off-1").
		WillReturnRows(sqlmock.NewRows([]string{"sequence", "new_score"}).AddRow(2, 100.0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO credibility_history")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE officials SET credibility_score = $1 WHERE id = $2")).
		WithArgs(105.0, "off-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.AppendHistory(context.Background(), entry); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	if entry.Sequence != 3 {
		t.Errorf("sequence = %d, want 3", entry.Sequence)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestAppendHistoryRejectsGap(t *testing.T) {
	s, mock := newMockStore(t)
	entry, err := model.NewHistoryEntry("h-3", "off-1", 100, 92, model.ReasonPromiseBroken, "broken", nil, 1, 0, 200)
	if err != nil {
		t.Fatal(err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT sequence, new_score FROM credibility_history")).
		WithArgs("off-1").
		WillReturnRows(sqlmock.NewRows([]string{"sequence", "new_score"}).AddRow(2, 105.0))
	mock.ExpectRollback()

	if err := s.AppendHistory(context.Background(), entry); !errors.Is(err, model.ErrChainBroken) {
		t.Errorf("expected ErrChainBroken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestAppendHistoryConcurrentSequence(t *testing.T) {
	s, mock := newMockStore(t)
	entry, err := model.NewHistoryEntry("h-1", "off-1", 100, 100, model.ReasonInitialScore, "initial", nil, 1, 0, 200)
	if err != nil {
		t.Fatal(err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT sequence, new_score FROM credibility_history")).
		WillReturnRows(sqlmock.NewRows([]string{"sequence", "new_score"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO credibility_history")).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	if err := s.AppendHistory(context.Background(), entry); !errors.Is(err, model.ErrChainBroken) {
		t.Errorf("expected ErrChainBroken, got %v", err)
	}
}

func TestUpdatePromiseStatusMissing(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE promises SET status = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.UpdatePromiseStatus(context.Background(), "p-9", model.StatusVerified); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPlaceholderRebind(t *testing.T) {
	query := "SELECT a FROM t WHERE x = $1 AND y = $10"
	sqlite := &SQL{driver: "sqlite3"}
	if got := sqlite.q(query); got != "SELECT a FROM t WHERE x = ?1 AND y = ?10" {
		t.Errorf("sqlite rebind = %q", got)
	}
	pg := &SQL{driver: "pgx"}
	if got := pg.q(query); got != query {
		t.Errorf("pgx query changed: %q", got)
	}
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements(schema)
	if len(stmts) != 10 {
		t.Fatalf("expected 10 schema statements, got %d", len(stmts))
	}
	for _, stmt := range stmts {
		if stmt[len(stmt)-1] == ';' {
			t.Errorf("statement keeps its terminator: %q", stmt)
		}
	}
}
