package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jewel109/mobiledoor-api/pkg/config"
	pkgerrors "github.com/jewel109/mobiledoor-api/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string
}

type testPair struct {
	ID    int
	Scope string `gorm:"uniqueIndex:ux_test_pairs_scope_code"`
	Code  string `gorm:"uniqueIndex:ux_test_pairs_scope_code"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := FromConn(db)

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db := newTestDB(t)
	client := FromConn(db)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			if err := tx.Create(&testModel{Name: "panicky"}).Error; err != nil {
				return err
			}
			panic("boom")
		})
	}()

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected panic rollback to leave 0 records, got %d", count)
	}
}

func TestPing(t *testing.T) {
	client := FromConn(newTestDB(t))
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{DSN: "x", Driver: "oracle"}, nil)
	if err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestNewOpensSQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	client, err := New(context.Background(), config.DBConfig{DSN: dsn, Driver: DriverSQLite, MaxOpenConns: 1}, nil)
	if err != nil {
		t.Fatalf("New sqlite: %v", err)
	}
	defer client.Close()
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_carts_user_id"}
	if !IsUniqueViolation(pgErr, "ux_carts_user_id") {
		t.Fatal("expected pg unique violation to match constraint")
	}
	if IsUniqueViolation(pgErr, "other") {
		t.Fatal("expected constraint mismatch to be false")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: carts.user_id"), "") {
		t.Fatal("expected sqlite unique violation to match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil should not be a violation")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&pgconn.PgError{Code: "40001"}) {
		t.Fatal("serialization failure should be retryable")
	}
	if !IsRetryable(errors.New("database is locked")) {
		t.Fatal("sqlite busy should be retryable")
	}
	if IsRetryable(errors.New("syntax error")) {
		t.Fatal("syntax error should not be retryable")
	}
	wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("database is locked"), "save cart")
	if !IsRetryable(wrapped) {
		t.Fatal("busy error behind a typed wrapper should be retryable")
	}
}

func TestIsUniqueViolationMatchesSQLiteColumns(t *testing.T) {
	conn := newTestDB(t)
	if err := conn.AutoMigrate(&testPair{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := conn.Create(&testPair{Scope: "a", Code: "b"}).Error; err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := conn.Create(&testPair{Scope: "a", Code: "b"}).Error
	if err == nil {
		t.Fatal("expected duplicate insert to fail")
	}
	if !IsUniqueViolation(err, "ux_test_pairs_scope_code", "test_pairs.scope", "test_pairs.code") {
		t.Fatalf("expected column match for %v", err)
	}
	if IsUniqueViolation(err, "ux_test_pairs_scope_code", "test_pairs.other") {
		t.Fatalf("unexpected match on wrong columns for %v", err)
	}
}

func TestWithTxMapsContentionToConflict(t *testing.T) {
	client := FromConn(newTestDB(t))
	ctx := context.Background()

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, &pgconn.PgError{Code: "40P01"}, "reserve stock")
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected CONFLICT got %v", err)
	}

	err = client.WithTx(ctx, func(tx *gorm.DB) error {
		return errors.New("database is locked")
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected CONFLICT for sqlite busy got %v", err)
	}

	err = client.WithTx(ctx, func(tx *gorm.DB) error {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "Insufficient stock available")
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected domain code preserved got %v", err)
	}
}
