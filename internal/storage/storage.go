// Package storage is the relational data-access layer for DiagramDesigner.
//
// It wraps a GORM connection (PostgreSQL in production, SQLite for local
// development and tests) and exposes one group of repository methods per
// model: superdomains, domains, entities, attributes, relationships,
// diagrams and users. Repository methods take a context and translate driver
// errors into the ErrNotFound, ErrDuplicate and ErrForeignKey sentinels.
//
// Cross-table consistency relies on the database: child rows are removed by
// ON DELETE CASCADE foreign keys, and the polymorphic diagram object rows,
// which no foreign key can cover, are removed in the same transaction as the
// object they reference.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/schalkje/DiagramDesigner/internal/config"
)

// Storage provides the repository operations over a GORM connection.
type Storage struct {
	db  *gorm.DB
	log zerolog.Logger
}

// New opens the database selected by cfg.Driver and configures its pool.
func New(cfg config.DatabaseConfig, log zerolog.Logger) (*Storage, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres, "":
		dialector = postgres.Open(cfg.URL)
	case config.DriverSQLite:
		dialector = sqlite.Open(SQLiteDSN(cfg.URL))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	return Open(dialector, cfg, log)
}

// Open builds a Storage from an explicit dialector.
func Open(dialector gorm.Dialector, cfg config.DatabaseConfig, log zerolog.Logger) (*Storage, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(log, cfg.SlowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		// one connection keeps in-memory databases alive and serializes writers
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	log.Debug().Str("dialect", db.Dialector.Name()).Msg("database opened")

	return &Storage{db: db, log: log}, nil
}

// SQLiteDSN makes sure foreign keys are enforced on every connection.
// ":memory:" is expanded to the URI form so pragmas can be attached.
func SQLiteDSN(path string) string {
	dsn := path
	if dsn == "" || dsn == ":memory:" {
		dsn = "file::memory:"
	}
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Ping verifies that the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Dialect returns the GORM dialect name ("postgres" or "sqlite").
func (s *Storage) Dialect() string {
	return s.db.Dialector.Name()
}

// Transaction runs fn against a Storage bound to a single transaction.
// Returning an error from fn rolls the transaction back.
func (s *Storage) Transaction(ctx context.Context, fn func(tx *Storage) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Storage{db: tx, log: s.log})
	})
}

// ListOptions is the offset/limit window applied to list queries.
type ListOptions struct {
	Offset int
	Limit  int
}

func (o ListOptions) apply(q *gorm.DB) *gorm.DB {
	if o.Offset > 0 {
		q = q.Offset(o.Offset)
	}
	if o.Limit > 0 {
		q = q.Limit(o.Limit)
	}
	return q
}

// list counts the rows matched by q and fetches one window of them.
func list[T any](q *gorm.DB, opts ListOptions, order string) ([]T, int64, error) {
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	items := make([]T, 0)
	if err := opts.apply(q.Order(order)).Find(&items).Error; err != nil {
		return nil, 0, translate(err)
	}
	return items, total, nil
}

// first loads the row with the given primary key.
func first[T any](ctx context.Context, db *gorm.DB, id uint, what string) (*T, error) {
	var item T
	if err := db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, fmt.Errorf("%s %d: %w", what, id, translate(err))
	}
	return &item, nil
}

// exists reports whether a row with the given primary key is present.
func exists[T any](ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// update applies a column map to one row. An empty map still refreshes updated_at.
func update[T any](ctx context.Context, db *gorm.DB, id uint, fields map[string]any, what string) error {
	res := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(withTimestamp(fields))
	if res.Error != nil {
		return fmt.Errorf("update %s %d: %w", what, id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}

func withTimestamp(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	if _, ok := out["updated_at"]; !ok {
		out["updated_at"] = time.Now()
	}
	return out
}

// likeClause returns a case-insensitive pattern match on column for the active dialect.
func (s *Storage) likeClause(column string) string {
	op := "LIKE"
	if s.Dialect() == "postgres" {
		op = "ILIKE"
	}
	return column + " " + op + ` ? ESCAPE '\'`
}

func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}
