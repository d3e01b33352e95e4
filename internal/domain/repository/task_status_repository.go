package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
)

// TaskStatusRepository puerto del ledger de completitud por (empresa, tarea).
//
// Las mutaciones de estado son updates condicionales (compare-and-swap sobre
// el estado origen): retornan las filas afectadas y NUNCA escriben a ciegas.
// Cero filas afectadas significa que otra petición concurrente ganó; el caso
// de uso decide entre idempotencia, ErrInvalidTransition o ErrConflict.
type TaskStatusRepository interface {
	Get(ctx context.Context, companyID, taskID string) (*entity.CompanyTaskStatus, error)
	Insert(ctx context.Context, s *entity.CompanyTaskStatus) error

	// MarkSubmitted transición guardada {in_progress, rejected} → pending_approval.
	MarkSubmitted(ctx context.Context, companyID, taskID, note string, at time.Time) (int64, error)

	// MarkReviewed transición guardada pending_approval → {approved, rejected}.
	MarkReviewed(ctx context.Context, companyID, taskID, reviewerID, toState, note string, at time.Time) (int64, error)

	// AppendTransition registra una transición aceptada (historial append-only).
	AppendTransition(ctx context.Context, t *entity.TaskStatusTransition) error
	ListTransitions(ctx context.Context, companyID, taskID string) ([]*entity.TaskStatusTransition, error)

	// CountApproved cuenta cuántas de taskIDs están approved para la empresa.
	CountApproved(ctx context.Context, companyID string, taskIDs []string) (int, error)

	// ListPendingApproval cola de revisión para consultores (todas las empresas).
	ListPendingApproval(ctx context.Context, limit, offset int) ([]*entity.CompanyTaskStatus, error)
}
