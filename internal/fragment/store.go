package fragment

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Supported fragment drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Store defines the SQL surface of a single fragment.
// Implementations must be safe for concurrent use; statements use "?"
// placeholders regardless of the backing dialect.
type Store interface {
	// Exec runs a statement and returns the number of rows it affected.
	Exec(ctx context.Context, query string, args ...any) (int64, error)

	// Query runs a statement and scans the result set into dest,
	// which must be a pointer to a slice of structs.
	Query(ctx context.Context, dest any, query string, args ...any) error

	// Upsert inserts value, a pointer to a model, or overwrites the update
	// columns of the row whose key columns collide with it. It is a single
	// statement, so concurrent upserts of the same key never conflict.
	Upsert(ctx context.Context, value any, keys []string, updates []string) error

	// Ping checks that the fragment is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}

// GormStore implements Store on top of a gorm connection.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an already opened gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Dialector returns the gorm dialector for a driver name.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported fragment driver %q", driver)
	}
}

// Open connects to a fragment database.
// SQLite handles are pinned to a single connection so that one statement is
// in flight at a time.
func Open(driver, dsn string) (*GormStore, error) {
	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return NewGormStore(db), nil
}

// Exec runs a statement and returns the number of affected rows
func (s *GormStore) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	result := s.db.WithContext(ctx).Exec(query, args...)
	return result.RowsAffected, result.Error
}

// Query runs a statement and scans all rows into dest
func (s *GormStore) Query(ctx context.Context, dest any, query string, args ...any) error {
	return s.db.WithContext(ctx).Raw(query, args...).Scan(dest).Error
}

// Upsert runs INSERT ... ON CONFLICT DO UPDATE, or the dialect's equivalent
func (s *GormStore) Upsert(ctx context.Context, value any, keys []string, updates []string) error {
	cols := make([]clause.Column, len(keys))
	for i, k := range keys {
		cols[i] = clause.Column{Name: k}
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   cols,
		DoUpdates: clause.AssignmentColumns(updates),
	}).Create(value).Error
}

// Ping checks connectivity of the underlying pool
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying pool
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates the student, grade and course tables if missing
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Student{}, &Grade{}, &Course{})
}
