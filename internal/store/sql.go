package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver "pgx"
	"github.com/mattn/go-sqlite3"
	"github.com/ppiankov/politikcred/internal/model"
	log "github.com/sirupsen/logrus"
)

const schema = `
CREATE TABLE IF NOT EXISTS officials (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	party TEXT NOT NULL DEFAULT '',
	position TEXT NOT NULL DEFAULT '',
	orientation TEXT NOT NULL DEFAULT '',
	credibility_score DOUBLE PRECISION NOT NULL DEFAULT 100,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS promises (
	id TEXT PRIMARY KEY,
	official_id TEXT NOT NULL,
	text TEXT NOT NULL,
	category TEXT NOT NULL,
	stated_at TEXT NOT NULL,
	source_type TEXT NOT NULL DEFAULT '',
	source_url TEXT NOT NULL DEFAULT '',
	confidence DOUBLE PRECISION NOT NULL,
	actionable BOOLEAN NOT NULL DEFAULT FALSE,
	status TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_promises_status ON promises(status, official_id);

CREATE TABLE IF NOT EXISTS actions (
	id TEXT PRIMARY KEY,
	official_id TEXT NOT NULL,
	occurred_at TEXT NOT NULL,
	description TEXT NOT NULL,
	position TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT 'other',
	source_type TEXT NOT NULL DEFAULT '',
	source_url TEXT NOT NULL DEFAULT '',
	external_ref TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_actions_official ON actions(official_id, occurred_at);

CREATE TABLE IF NOT EXISTS verifications (
	id TEXT PRIMARY KEY,
	official_id TEXT NOT NULL,
	promise_id TEXT NOT NULL,
	action_id TEXT NOT NULL DEFAULT '',
	match_type TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	method TEXT NOT NULL,
	explanation TEXT NOT NULL DEFAULT '',
	disputed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	UNIQUE (promise_id, action_id)
);
CREATE INDEX IF NOT EXISTS idx_verifications_official ON verifications(official_id);

CREATE TABLE IF NOT EXISTS consistency_scores (
	official_id TEXT PRIMARY KEY,
	kept INTEGER NOT NULL,
	broken INTEGER NOT NULL,
	partial INTEGER NOT NULL,
	attendance_rate DOUBLE PRECISION NOT NULL,
	legislative_activity DOUBLE PRECISION NOT NULL,
	data_quality DOUBLE PRECISION NOT NULL,
	overall_score DOUBLE PRECISION NOT NULL,
	composite_score DOUBLE PRECISION NOT NULL,
	signals TEXT NOT NULL DEFAULT '[]',
	calculated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS credibility_history (
	id TEXT PRIMARY KEY,
	official_id TEXT NOT NULL,
	sequence INTEGER NOT NULL,
	previous_score DOUBLE PRECISION NOT NULL,
	new_score DOUBLE PRECISION NOT NULL,
	delta DOUBLE PRECISION NOT NULL,
	reason TEXT NOT NULL,
	description TEXT NOT NULL,
	sources TEXT NOT NULL DEFAULT '[]',
	verification_id TEXT NOT NULL DEFAULT '',
	confidence DOUBLE PRECISION NOT NULL,
	disputed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TEXT NOT NULL,
	UNIQUE (official_id, sequence)
);
CREATE INDEX IF NOT EXISTS idx_history_verification ON credibility_history(verification_id);
`

// SQL is a database/sql store for sqlite3 and pgx. Queries are written with
// $N placeholders and rebound to ?N for sqlite.
type SQL struct {
	db     *sql.DB
	driver string
}

// OpenSQL opens the database and creates the schema
func OpenSQL(ctx context.Context, driver, dsn string) (*SQL, error) {
	if dsn == "" {
		return nil, fmt.Errorf("store: empty dsn for driver %s", driver)
	}
	if driver == "sqlite3" {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("store: create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}
	if driver == "sqlite3" {
		// SQLite works best with a single writer
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := &SQL{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.WithFields(log.Fields{"driver": driver}).Debug("Store opened")
	return s, nil
}

func (s *SQL) migrate(ctx context.Context) error {
	if s.driver == "sqlite3" {
		if _, err := s.db.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("store: create schema: %w", err)
		}
		return nil
	}
	// pgx runs one statement per Exec in the extended protocol
	for _, stmt := range splitStatements(schema) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: create schema: %w", err)
		}
	}
	return nil
}

var placeholder = regexp.MustCompile(`\$(\d+)`)

func (s *SQL) q(query string) string {
	if s.driver == "sqlite3" {
		return placeholder.ReplaceAllString(query, "?$1")
	}
	return query
}

var statementEnd = regexp.MustCompile(`;\s*\n`)

func splitStatements(script string) []string {
	var out []string
	for _, stmt := range statementEnd.Split(script, -1) {
		if stmt = strings.Trim(stmt, " \n\t;"); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// isUniqueViolation recognizes constraint violations from both drivers
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// timeLayout is fixed width so TEXT columns sort chronologically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return time.Time{}
		}
	}
	return t.UTC()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// Officials

const officialColumns = `id, name, first_name, last_name, party, position, orientation, credibility_score, created_at`

const upsertOfficial = `INSERT INTO officials (` + officialColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
	name = excluded.name,
	first_name = excluded.first_name,
	last_name = excluded.last_name,
	party = excluded.party,
	position = excluded.position,
	orientation = excluded.orientation`

// officialArgs binds an official row. The cached credibility score is only
// written on insert; afterwards AppendHistory owns it.
func officialArgs(o *model.Official) []interface{} {
	created := o.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return []interface{}{o.ID, o.Name, o.FirstName, o.LastName, o.Party, o.Position, string(o.Orientation), o.CredibilityScore, formatTime(created)}
}

func (s *SQL) UpsertOfficial(ctx context.Context, o *model.Official) error {
	if _, err := s.db.ExecContext(ctx, s.q(upsertOfficial), officialArgs(o)...); err != nil {
		return fmt.Errorf("store: upsert official %s: %w", o.ID, err)
	}
	return nil
}

func (s *SQL) UpsertOfficials(ctx context.Context, officials []*model.Official) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.q(upsertOfficial))
	if err != nil {
		return fmt.Errorf("store: prepare official upsert: %w", err)
	}
	defer stmt.Close()

	for _, o := range officials {
		if _, err := stmt.ExecContext(ctx, officialArgs(o)...); err != nil {
			return fmt.Errorf("store: upsert official %s: %w", o.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit officials: %w", err)
	}
	return nil
}

func scanOfficial(row scanner) (*model.Official, error) {
	var o model.Official
	var orientation, created string
	if err := row.Scan(&o.ID, &o.Name, &o.FirstName, &o.LastName, &o.Party, &o.Position, &orientation, &o.CredibilityScore, &created); err != nil {
		return nil, err
	}
	o.Orientation = model.Orientation(orientation)
	o.CreatedAt = parseTime(created)
	return &o, nil
}

func (s *SQL) GetOfficial(ctx context.Context, id string) (*model.Official, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+officialColumns+` FROM officials WHERE id = $1`), id)
	o, err := scanOfficial(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("official", id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get official %s: %w", id, err)
	}
	return o, nil
}

func (s *SQL) ListOfficials(ctx context.Context) ([]*model.Official, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+officialColumns+` FROM officials ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list officials: %w", err)
	}
	defer rows.Close()

	var out []*model.Official
	for rows.Next() {
		o, err := scanOfficial(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan official: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Promises

const promiseColumns = `id, official_id, text, category, stated_at, source_type, source_url, confidence, actionable, status, created_at, updated_at`

func scanPromise(row scanner) (*model.Promise, error) {
	var p model.Promise
	var category, status, stated, created, updated string
	if err := row.Scan(&p.ID, &p.OfficialID, &p.Text, &category, &stated, &p.Source.Type, &p.Source.URL,
		&p.Confidence, &p.Actionable, &status, &created, &updated); err != nil {
		return nil, err
	}
	p.Category = model.Category(category)
	p.Status = model.VerificationStatus(status)
	p.StatedAt = parseTime(stated)
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return &p, nil
}

func (s *SQL) InsertPromise(ctx context.Context, p *model.Promise) error {
	res, err := s.db.ExecContext(ctx, s.q(`INSERT INTO promises (`+promiseColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT DO NOTHING`),
		p.ID, p.OfficialID, p.Text, string(p.Category), formatTime(p.StatedAt), p.Source.Type, p.Source.URL,
		p.Confidence, p.Actionable, string(p.Status), formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	return insertResult(res, err, "promise", p.ID)
}

func (s *SQL) GetPromise(ctx context.Context, id string) (*model.Promise, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+promiseColumns+` FROM promises WHERE id = $1`), id)
	p, err := scanPromise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("promise", id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get promise %s: %w", id, err)
	}
	return p, nil
}

func (s *SQL) ListPendingPromises(ctx context.Context, officialID string) ([]*model.Promise, error) {
	query := `SELECT ` + promiseColumns + ` FROM promises WHERE status = $1`
	args := []interface{}{string(model.StatusPending)}
	if officialID != "" {
		query += ` AND official_id = $2`
		args = append(args, officialID)
	}
	query += ` ORDER BY official_id, stated_at, id`

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("store: list pending promises: %w", err)
	}
	defer rows.Close()

	var out []*model.Promise
	for rows.Next() {
		p, err := scanPromise(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan promise: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQL) UpdatePromiseStatus(ctx context.Context, id string, status model.VerificationStatus) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE promises SET status = $1, updated_at = $2 WHERE id = $3`),
		string(status), formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("store: update promise %s status: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound("promise", id)
	}
	return nil
}

// Actions

const actionColumns = `id, official_id, occurred_at, description, position, category, source_type, source_url, external_ref`

func scanAction(row scanner) (*model.Action, error) {
	var a model.Action
	var occurred, position, category string
	if err := row.Scan(&a.ID, &a.OfficialID, &occurred, &a.Description, &position, &category,
		&a.Source.Type, &a.Source.URL, &a.ExternalRef); err != nil {
		return nil, err
	}
	a.OccurredAt = parseTime(occurred)
	a.Position = model.Position(position)
	a.Category = model.Category(category)
	return &a, nil
}

func (s *SQL) InsertAction(ctx context.Context, a *model.Action) error {
	category := a.Category
	if category == "" {
		category = model.CategoryOther
	}
	res, err := s.db.ExecContext(ctx, s.q(`INSERT INTO actions (`+actionColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT DO NOTHING`),
		a.ID, a.OfficialID, formatTime(a.OccurredAt), a.Description, string(a.Position), string(category),
		a.Source.Type, a.Source.URL, a.ExternalRef)
	return insertResult(res, err, "action", a.ID)
}

func (s *SQL) GetAction(ctx context.Context, id string) (*model.Action, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+actionColumns+` FROM actions WHERE id = $1`), id)
	a, err := scanAction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("action", id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get action %s: %w", id, err)
	}
	return a, nil
}

func (s *SQL) ListActions(ctx context.Context, officialID string) ([]*model.Action, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT `+actionColumns+` FROM actions WHERE official_id = $1 ORDER BY occurred_at, id`), officialID)
	if err != nil {
		return nil, fmt.Errorf("store: list actions for %s: %w", officialID, err)
	}
	defer rows.Close()

	var out []*model.Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan action: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Verifications

const verificationColumns = `id, official_id, promise_id, action_id, match_type, confidence, method, explanation, disputed, created_at, updated_at`

func scanVerification(row scanner) (*model.Verification, error) {
	var v model.Verification
	var matchType, method, created, updated string
	if err := row.Scan(&v.ID, &v.OfficialID, &v.PromiseID, &v.ActionID, &matchType, &v.Confidence, &method,
		&v.Explanation, &v.Disputed, &created, &updated); err != nil {
		return nil, err
	}
	v.MatchType = model.MatchType(matchType)
	v.Method = model.Method(method)
	v.CreatedAt = parseTime(created)
	v.UpdatedAt = parseTime(updated)
	return &v, nil
}

func (s *SQL) InsertVerification(ctx context.Context, v *model.Verification) error {
	res, err := s.db.ExecContext(ctx, s.q(`INSERT INTO verifications (`+verificationColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT DO NOTHING`),
		v.ID, v.OfficialID, v.PromiseID, v.ActionID, string(v.MatchType), v.Confidence, string(v.Method),
		v.Explanation, v.Disputed, formatTime(v.CreatedAt), formatTime(v.UpdatedAt))
	return insertResult(res, err, "verification for promise", v.PromiseID)
}

func (s *SQL) GetVerification(ctx context.Context, id string) (*model.Verification, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+verificationColumns+` FROM verifications WHERE id = $1`), id)
	v, err := scanVerification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("verification", id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get verification %s: %w", id, err)
	}
	return v, nil
}

func (s *SQL) FindVerification(ctx context.Context, promiseID, actionID string) (*model.Verification, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+verificationColumns+` FROM verifications WHERE promise_id = $1 AND action_id = $2`),
		promiseID, actionID)
	v, err := scanVerification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("verification for promise", promiseID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: find verification for %s: %w", promiseID, err)
	}
	return v, nil
}

func (s *SQL) ListVerifications(ctx context.Context, officialID string) ([]*model.Verification, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT `+verificationColumns+` FROM verifications WHERE official_id = $1 ORDER BY created_at, id`), officialID)
	if err != nil {
		return nil, fmt.Errorf("store: list verifications for %s: %w", officialID, err)
	}
	defer rows.Close()

	var out []*model.Verification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan verification: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQL) SetVerificationDisputed(ctx context.Context, id string, disputed bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	now := formatTime(time.Now())
	var promiseID string
	err = tx.QueryRowContext(ctx, s.q(`SELECT promise_id FROM verifications WHERE id = $1`), id).Scan(&promiseID)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("verification", id)
	}
	if err != nil {
		return fmt.Errorf("store: get verification %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, s.q(`UPDATE verifications SET disputed = $1, updated_at = $2 WHERE id = $3`), disputed, now, id); err != nil {
		return fmt.Errorf("store: dispute verification %s: %w", id, err)
	}

	status := model.StatusVerified
	if disputed {
		status = model.StatusDisputed
	}
	if _, err := tx.ExecContext(ctx, s.q(`UPDATE promises SET status = $1, updated_at = $2 WHERE id = $3`), string(status), now, promiseID); err != nil {
		return fmt.Errorf("store: update promise %s status: %w", promiseID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit dispute: %w", err)
	}
	return nil
}

// Consistency scores

func (s *SQL) ReplaceConsistencyScore(ctx context.Context, cs *model.ConsistencyScore) error {
	signals, err := json.Marshal(cs.Signals)
	if err != nil {
		return fmt.Errorf("store: encode signals: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.q(`INSERT INTO consistency_scores
(official_id, kept, broken, partial, attendance_rate, legislative_activity, data_quality, overall_score, composite_score, signals, calculated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (official_id) DO UPDATE SET
	kept = excluded.kept,
	broken = excluded.broken,
	partial = excluded.partial,
	attendance_rate = excluded.attendance_rate,
	legislative_activity = excluded.legislative_activity,
	data_quality = excluded.data_quality,
	overall_score = excluded.overall_score,
	composite_score = excluded.composite_score,
	signals = excluded.signals,
	calculated_at = excluded.calculated_at`),
		cs.OfficialID, cs.Kept, cs.Broken, cs.Partial, cs.AttendanceRate, cs.LegislativeActivity, cs.DataQuality,
		cs.OverallScore, cs.CompositeScore, string(signals), formatTime(cs.CalculatedAt))
	if err != nil {
		return fmt.Errorf("store: replace consistency score for %s: %w", cs.OfficialID, err)
	}
	return nil
}

func (s *SQL) GetConsistencyScore(ctx context.Context, officialID string) (*model.ConsistencyScore, error) {
	var cs model.ConsistencyScore
	var signals, calculated string
	err := s.db.QueryRowContext(ctx, s.q(`SELECT official_id, kept, broken, partial, attendance_rate, legislative_activity,
data_quality, overall_score, composite_score, signals, calculated_at FROM consistency_scores WHERE official_id = $1`), officialID).
		Scan(&cs.OfficialID, &cs.Kept, &cs.Broken, &cs.Partial, &cs.AttendanceRate, &cs.LegislativeActivity,
			&cs.DataQuality, &cs.OverallScore, &cs.CompositeScore, &signals, &calculated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("consistency score", officialID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get consistency score for %s: %w", officialID, err)
	}
	if err := json.Unmarshal([]byte(signals), &cs.Signals); err != nil {
		return nil, fmt.Errorf("store: decode signals for %s: %w", officialID, err)
	}
	cs.CalculatedAt = parseTime(calculated)
	return &cs, nil
}

// Credibility history

const historyColumns = `id, official_id, sequence, previous_score, new_score, delta, reason, description, sources, verification_id, confidence, disputed, created_at`

// AppendHistory checks the chain, assigns the next sequence and refreshes the
// official's cached score in one transaction. A concurrent append that wins
// the same sequence surfaces as model.ErrChainBroken.
func (s *SQL) AppendHistory(ctx context.Context, entry *model.HistoryEntry) error {
	sources, err := json.Marshal(entry.Sources)
	if err != nil {
		return fmt.Errorf("store: encode sources: %w", err)
	}
	if entry.Sources == nil {
		sources = []byte("[]")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	var lastSeq int
	var latest float64
	hasLatest := true
	err = tx.QueryRowContext(ctx, s.q(`SELECT sequence, new_score FROM credibility_history
WHERE official_id = $1 ORDER BY sequence DESC LIMIT 1`), entry.OfficialID).Scan(&lastSeq, &latest)
	if errors.Is(err, sql.ErrNoRows) {
		hasLatest = false
	} else if err != nil {
		return fmt.Errorf("store: read latest history for %s: %w", entry.OfficialID, err)
	}
	if err := checkChain(entry, latest, hasLatest); err != nil {
		return err
	}

	seq := lastSeq + 1
	_, err = tx.ExecContext(ctx, s.q(`INSERT INTO credibility_history (`+historyColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`),
		entry.ID, entry.OfficialID, seq, entry.PreviousScore, entry.NewScore, entry.Delta, string(entry.Reason),
		entry.Description, string(sources), entry.VerificationID, entry.Confidence, entry.Disputed, formatTime(entry.CreatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("store: history sequence %d for %s already taken: %w", seq, entry.OfficialID, model.ErrChainBroken)
	}
	if err != nil {
		return fmt.Errorf("store: append history for %s: %w", entry.OfficialID, err)
	}

	if _, err := tx.ExecContext(ctx, s.q(`UPDATE officials SET credibility_score = $1 WHERE id = $2`), entry.NewScore, entry.OfficialID); err != nil {
		return fmt.Errorf("store: refresh credibility score for %s: %w", entry.OfficialID, err)
	}
	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("store: history sequence %d for %s already taken: %w", seq, entry.OfficialID, model.ErrChainBroken)
		}
		return fmt.Errorf("store: commit history: %w", err)
	}
	entry.Sequence = seq
	return nil
}

func (s *SQL) CurrentScore(ctx context.Context, officialID string) (float64, error) {
	var score float64
	err := s.db.QueryRowContext(ctx, s.q(`SELECT new_score FROM credibility_history
WHERE official_id = $1 ORDER BY sequence DESC LIMIT 1`), officialID).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, notFound("credibility history for official", officialID)
	}
	if err != nil {
		return 0, fmt.Errorf("store: current score for %s: %w", officialID, err)
	}
	return score, nil
}

func (s *SQL) ListHistory(ctx context.Context, officialID string) ([]model.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT `+historyColumns+` FROM credibility_history
WHERE official_id = $1 ORDER BY sequence`), officialID)
	if err != nil {
		return nil, fmt.Errorf("store: list history for %s: %w", officialID, err)
	}
	defer rows.Close()

	var out []model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		var reason, sources, created string
		if err := rows.Scan(&e.ID, &e.OfficialID, &e.Sequence, &e.PreviousScore, &e.NewScore, &e.Delta, &reason,
			&e.Description, &sources, &e.VerificationID, &e.Confidence, &e.Disputed, &created); err != nil {
			return nil, fmt.Errorf("store: scan history: %w", err)
		}
		e.Reason = model.Reason(reason)
		e.CreatedAt = parseTime(created)
		if err := json.Unmarshal([]byte(sources), &e.Sources); err != nil {
			return nil, fmt.Errorf("store: decode sources for entry %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQL) HasHistoryFor(ctx context.Context, verificationID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM credibility_history WHERE verification_id = $1`), verificationID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: history lookup for verification %s: %w", verificationID, err)
	}
	return n > 0, nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

// insertResult maps an ON CONFLICT DO NOTHING insert onto model.ErrDuplicate
func insertResult(res sql.Result, err error, kind, id string) error {
	if isUniqueViolation(err) {
		return duplicate(kind, id)
	}
	if err != nil {
		return fmt.Errorf("store: insert %s %s: %w", kind, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: insert %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return duplicate(kind, id)
	}
	return nil
}
