package cron

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type stockReconciler interface {
	ReconcileFlags(ctx context.Context, tx *gorm.DB) (int64, error)
}

// NewStockReconcileJob realigns products.in_stock with products.stock.
// Postgres enforces the pair with a CHECK, so only sqlite databases drift.
func NewStockReconcileJob(db txRunner, ledger stockReconciler) (Job, error) {
	if db == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	return &stockReconcileJob{db: db, ledger: ledger}, nil
}

type stockReconcileJob struct {
	db     txRunner
	ledger stockReconciler
}

func (j *stockReconcileJob) Name() string { return "stock-reconcile" }

func (j *stockReconcileJob) Run(ctx context.Context) (int64, error) {
	var fixed int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.ledger.ReconcileFlags(ctx, tx)
		fixed = rows
		return err
	})
	return fixed, err
}
