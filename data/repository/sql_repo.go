package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"event-bookings/data/migrations"
	"event-bookings/data/models"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/pgx"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/rs/zerolog"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SqlRepo stores events and bookings in Postgres.
type SqlRepo struct {
	DB  *sql.DB
	Log zerolog.Logger
}

func NewSqlRepo(db *sql.DB, log zerolog.Logger) *SqlRepo {
	return &SqlRepo{DB: db, Log: log}
}

// OpenSQL opens a pgx-backed pool for dsn and pings it.
func OpenSQL(ctx context.Context, dsn string, log zerolog.Logger) (*SqlRepo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewSqlRepo(db, log), nil
}

func (sr *SqlRepo) Close(ctx context.Context) error {
	return sr.DB.Close()
}

// Migrate runs the embedded migrations up to the latest version.
func (sr *SqlRepo) Migrate(ctx context.Context) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	driver, err := pgx.WithInstance(sr.DB, &pgx.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	// the driver holds one pooled connection until closed; the pool itself
	// stays open since it was handed in
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	sr.Log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migrations complete")
	return nil
}

// withTx runs fn inside a transaction. It commits when fn succeeds and rolls
// back on any error or panic; either way the connection goes back to the
// pool. The returned error is prefixed with op.
func (sr *SqlRepo) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) (err error) {
	tx, err := sr.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			sr.Log.Error().Interface("panic", p).Str("op", op).Msg("transaction body panicked")
			err = panicError(p)
		}
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			sr.Log.Error().Err(rbErr).Str("op", op).Msg("rollback failed")
		}
		sr.Log.Debug().Err(err).Str("op", op).Msg("transaction aborted")
		err = fmt.Errorf("%s: %w", op, err)
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return mapSQLError(err)
	}
	return nil
}

// insertModel inserts every column of m, id included.
func insertModel(ctx context.Context, q querier, m models.Model) error {
	columns := models.GetColumnNames(m, false)
	vals := models.GetValsFromModel(m, false)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		m.TableName(),
		strings.Join(columns, ", "),
		placeholders(len(vals)))

	stmt, err := q.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("error preparing query: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, vals...); err != nil {
		return mapSQLError(fmt.Errorf("error executing query: %w", err))
	}
	return nil
}

// updateModel writes every non read-only column of m to the row with m's id
// and reports whether that row existed.
func updateModel(ctx context.Context, q querier, m models.Model) (bool, error) {
	columns := models.GetColumnNames(m, true)

	setClause := make([]string, len(columns))
	for i, c := range columns {
		setClause[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		m.TableName(),
		strings.Join(setClause, ", "),
		len(columns)+1)

	stmt, err := q.PrepareContext(ctx, query)
	if err != nil {
		return false, fmt.Errorf("error preparing query: %w", err)
	}
	defer stmt.Close()

	vals := models.GetValsFromModel(m, true)
	vals = append(vals, m.GetID())
	res, err := stmt.ExecContext(ctx, vals...)
	if err != nil {
		return false, mapSQLError(fmt.Errorf("error executing query: %w", err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// getModelByID scans the row with the given id into m, which must be a
// pointer. suffix is appended to the query, e.g. "FOR UPDATE".
func getModelByID(ctx context.Context, q querier, m models.Model, id, suffix string) error {
	if !models.ValidID(id) {
		return &models.NotFoundError{Collection: m.TableName(), ID: id}
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 %s",
		strings.Join(models.GetColumnNames(m, false), ", "),
		m.TableName(),
		suffix)

	err := models.ScanRowToModel(m, q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return &models.NotFoundError{Collection: m.TableName(), ID: id}
	}
	return err
}

func deleteByID(ctx context.Context, q querier, table, id string) (bool, error) {
	if !models.ValidID(id) {
		return false, nil
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", table)
	res, err := q.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("error deleting record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// mapSQLError turns unique violations into ConflictError and passes
// everything else through.
func mapSQLError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return &models.ConflictError{Constraint: pgErr.ConstraintName, Err: err}
	}
	return err
}

func placeholders(n int) string {
	ph := make([]string, n)
	for i := 1; i <= n; i++ {
		ph[i-1] = fmt.Sprintf("$%d", i)
	}
	return strings.Join(ph, ", ")
}
