package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Consultoria-api/internal/application/ports"
	"github.com/jhoicas/Consultoria-api/internal/domain/repository"
)

// Asegura que TxRunner implementa ports.TxRunner.
var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Cubre submit/review: ledger, historial y agregados
// confirman juntos.
func (r *TxRunner) Run(ctx context.Context, fn func(
	statusRepo repository.TaskStatusRepository,
	assignRepo repository.AssignmentRepository,
	workItemRepo repository.WorkItemRepository,
	progressRepo repository.ProgressRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapStoreErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	statusRepo := NewTaskStatusRepository(tx)
	assignRepo := NewAssignmentRepository(tx)
	workItemRepo := NewWorkItemRepository(tx)
	progressRepo := NewProgressRepository(tx)

	if err := fn(statusRepo, assignRepo, workItemRepo, progressRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunEvaluation inicia una transacción con los repos de evaluación: la
// publicación del reporte y el cierre del subproyecto confirman juntos.
func (r *TxRunner) RunEvaluation(ctx context.Context, fn func(
	progressRepo repository.ProgressRepository,
	reportRepo repository.ReportRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapStoreErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	progressRepo := NewProgressRepository(tx)
	reportRepo := NewReportRepository(tx)

	if err := fn(progressRepo, reportRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
