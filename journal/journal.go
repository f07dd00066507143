// Package journal records reconciliation runs in SQLite: when a run
// happened, its outcome, and the full ordered directive listing with
// per-directive execution results. The journal is an audit trail, not
// state: reconciliation itself never reads it.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	vppcfg "github.com/frobware/go-vppcfg"
	"github.com/frobware/go-vppcfg/directive"
	"github.com/frobware/go-vppcfg/reconciler"
)

//go:embed schema.sql
var schemaSQL string

// msec formats a duration as milliseconds with 3 decimal places.
func msec(d time.Duration) string {
	return fmt.Sprintf("%.3f", float64(d.Microseconds())/1000)
}

// dsn builds a modernc.org/sqlite DSN from a path and pragma
// key-value pairs, each formatted as _pragma=key(value).
func dsn(path string, pragmas [][2]string) string {
	s := path
	for i, p := range pragmas {
		if i == 0 {
			s += "?"
		} else {
			s += "&"
		}
		s += "_pragma=" + p[0] + "(" + p[1] + ")"
	}
	return s
}

// Run is one journaled reconciliation run.
type Run struct {
	ID         int64
	StartedAt  time.Time
	Command    string
	ConfigPath string
	Outcome    string
	Failures   []string
}

// Entry is one journaled directive, with its execution result when the
// run applied the plan.
type Entry struct {
	Seq      int
	Phase    string
	Op       string
	Target   vppcfg.Key
	Commands []string
	Executed bool
	Error    string
}

// Journal is a SQLite-backed run journal.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger

	stmtInsertRun       *sql.Stmt
	stmtInsertDirective *sql.Stmt
	stmtListRuns        *sql.Stmt
	stmtGetRun          *sql.Stmt
	stmtRunDirectives   *sql.Stmt
}

// Open opens (creating if necessary) the journal database at path.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "journal", "db", path)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path, [][2]string{{"journal_mode", "WAL"}, {"foreign_keys", "1"}}))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &Journal{db: db, logger: logger}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	if err := j.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare journal statements: %w", err)
	}

	logger.Debug("journal opened")
	return j, nil
}

func (j *Journal) prepareStatements() error {
	var err error

	const sqlInsertRun = `
		INSERT INTO runs (started_at, command, config_path, outcome, failures)
		VALUES (?, ?, ?, ?, ?)`
	if j.stmtInsertRun, err = j.db.Prepare(sqlInsertRun); err != nil {
		return fmt.Errorf("prepare InsertRun: %w", err)
	}

	const sqlInsertDirective = `
		INSERT INTO run_directives (run_id, seq, phase, op, kind, name, commands, executed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if j.stmtInsertDirective, err = j.db.Prepare(sqlInsertDirective); err != nil {
		return fmt.Errorf("prepare InsertDirective: %w", err)
	}

	const sqlListRuns = `
		SELECT id, started_at, command, config_path, outcome, failures
		FROM runs ORDER BY id DESC LIMIT ?`
	if j.stmtListRuns, err = j.db.Prepare(sqlListRuns); err != nil {
		return fmt.Errorf("prepare ListRuns: %w", err)
	}

	const sqlGetRun = `
		SELECT id, started_at, command, config_path, outcome, failures
		FROM runs WHERE id = ?`
	if j.stmtGetRun, err = j.db.Prepare(sqlGetRun); err != nil {
		return fmt.Errorf("prepare GetRun: %w", err)
	}

	const sqlRunDirectives = `
		SELECT seq, phase, op, kind, name, commands, executed, error
		FROM run_directives WHERE run_id = ? ORDER BY seq`
	if j.stmtRunDirectives, err = j.db.Prepare(sqlRunDirectives); err != nil {
		return fmt.Errorf("prepare RunDirectives: %w", err)
	}

	return nil
}

// Close closes the prepared statements and the database.
func (j *Journal) Close() error {
	for _, stmt := range []*sql.Stmt{
		j.stmtInsertRun, j.stmtInsertDirective, j.stmtListRuns,
		j.stmtGetRun, j.stmtRunDirectives,
	} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return j.db.Close()
}

// Record journals one run: its metadata, its plan, and (for apply
// runs) the execution results. Recorded atomically; a crashed write
// leaves no half-run behind.
func (j *Journal) Record(ctx context.Context, command, configPath string, plan *directive.Plan, results []reconciler.ExecResult) (int64, error) {
	start := time.Now()

	executed := make(map[int]reconciler.ExecResult, len(results))
	for i, res := range results {
		executed[i] = res
	}

	var failures []string
	for _, err := range plan.Failures {
		failures = append(failures, err.Error())
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin journal transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.StmtContext(ctx, j.stmtInsertRun).ExecContext(ctx,
		time.Now().UTC().Format(time.RFC3339), command, configPath,
		plan.Outcome.String(), strings.Join(failures, "\n"))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	insert := tx.StmtContext(ctx, j.stmtInsertDirective)
	for seq, d := range plan.Directives {
		wasExecuted := 0
		execErr := ""
		if r, ok := executed[seq]; ok {
			wasExecuted = 1
			if r.Err != nil {
				execErr = r.Err.Error()
			}
		}
		if _, err := insert.ExecContext(ctx,
			runID, seq, string(d.Phase), d.Op.String(),
			d.Target.Kind.String(), d.Target.Name,
			strings.Join(d.Commands, "\n"), wasExecuted, execErr); err != nil {
			return 0, fmt.Errorf("insert directive %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit journal transaction: %w", err)
	}

	j.logger.Debug("sql", "stmt", "Record", "run_id", runID,
		"directives", len(plan.Directives), "duration_ms", msec(time.Since(start)))
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	start := time.Now()
	rows, err := j.stmtListRuns.QueryContext(ctx, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	j.logger.Debug("sql", "stmt", "ListRuns", "rows", len(out), "duration_ms", msec(time.Since(start)))
	return out, nil
}

// GetRun returns one run by id.
func (j *Journal) GetRun(ctx context.Context, id int64) (Run, error) {
	rows, err := j.stmtGetRun.QueryContext(ctx, id)
	if err != nil {
		return Run{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("run %d not found", id)
	}
	return scanRun(rows)
}

// RunDirectives returns a run's directive listing in plan order.
func (j *Journal) RunDirectives(ctx context.Context, runID int64) ([]Entry, error) {
	start := time.Now()
	rows, err := j.stmtRunDirectives.QueryContext(ctx, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var kind, commands string
		var executed int
		if err := rows.Scan(&e.Seq, &e.Phase, &e.Op, &kind, &e.Target.Name, &commands, &executed, &e.Error); err != nil {
			return nil, err
		}
		if k, ok := vppcfg.ParseKind(kind); ok {
			e.Target.Kind = k
		}
		if commands != "" {
			e.Commands = strings.Split(commands, "\n")
		}
		e.Executed = executed != 0
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	j.logger.Debug("sql", "stmt", "RunDirectives", "run_id", runID, "rows", len(out), "duration_ms", msec(time.Since(start)))
	return out, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var startedAt, failures string
	if err := rows.Scan(&run.ID, &startedAt, &run.Command, &run.ConfigPath, &run.Outcome, &failures); err != nil {
		return Run{}, err
	}
	if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
		run.StartedAt = t
	}
	if failures != "" {
		run.Failures = strings.Split(failures, "\n")
	}
	return run, nil
}
