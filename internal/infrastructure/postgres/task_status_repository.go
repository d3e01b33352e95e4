package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Consultoria-api/internal/domain"
	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
	"github.com/jhoicas/Consultoria-api/internal/domain/repository"
)

// Asegura que TaskStatusRepo implementa repository.TaskStatusRepository.
var _ repository.TaskStatusRepository = (*TaskStatusRepo)(nil)

// TaskStatusRepo persistencia del ledger de completitud (usable con pool o tx).
type TaskStatusRepo struct {
	q Querier
}

// NewTaskStatusRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTaskStatusRepository(q Querier) *TaskStatusRepo {
	return &TaskStatusRepo{q: q}
}

const taskStatusColumns = `id, company_id, task_id, state, submitted_at, submission_note,
	reviewer_id, reviewed_at, review_note, created_at, updated_at`

// Get obtiene la fila del ledger para (empresa, tarea). nil si no existe aún.
func (r *TaskStatusRepo) Get(ctx context.Context, companyID, taskID string) (*entity.CompanyTaskStatus, error) {
	query := `SELECT ` + taskStatusColumns + ` FROM company_task_status WHERE company_id = $1 AND task_id = $2`
	var s entity.CompanyTaskStatus
	err := r.q.QueryRow(ctx, query, companyID, taskID).Scan(
		&s.ID, &s.CompanyID, &s.TaskID, &s.State, &s.SubmittedAt, &s.SubmissionNote,
		&s.ReviewerID, &s.ReviewedAt, &s.ReviewNote, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapStoreErr("get task status", err)
	}
	return &s, nil
}

// Insert crea la fila perezosa del ledger. La violación del único
// (company_id, task_id) significa que otra petición concurrente la creó
// primero; se traduce a ErrConflict y el caller relee.
func (r *TaskStatusRepo) Insert(ctx context.Context, s *entity.CompanyTaskStatus) error {
	// Espejo del CHECK de la tabla: un estado fuera del ciclo no viaja a la base.
	if !entity.ValidState(s.State) {
		return fmt.Errorf("insert task status: estado %q: %w", s.State, domain.ErrInvalidInput)
	}
	query := `
		INSERT INTO company_task_status (` + taskStatusColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.CompanyID, s.TaskID, s.State, s.SubmittedAt, s.SubmissionNote,
		s.ReviewerID, s.ReviewedAt, s.ReviewNote, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert task status: %w", domain.ErrConflict)
		}
		return mapStoreErr("insert task status", err)
	}
	return nil
}

// MarkSubmitted pasa a pending_approval solo desde in_progress o rejected.
// El WHERE sobre el estado origen es el CAS: cero filas afectadas significa
// que el estado vigente no admitía el envío.
func (r *TaskStatusRepo) MarkSubmitted(ctx context.Context, companyID, taskID, note string, at time.Time) (int64, error) {
	query := `
		UPDATE company_task_status
		SET state = $3, submitted_at = $4, submission_note = $5,
		    reviewer_id = NULL, reviewed_at = NULL, review_note = '',
		    updated_at = $4
		WHERE company_id = $1 AND task_id = $2
		  AND state IN ($6, $7)`
	tag, err := r.q.Exec(ctx, query,
		companyID, taskID, entity.StatusPendingApproval, at, note,
		entity.StatusInProgress, entity.StatusRejected,
	)
	if err != nil {
		return 0, mapStoreErr("mark submitted", err)
	}
	return tag.RowsAffected(), nil
}

// MarkReviewed pasa de pending_approval a approved o rejected. Solo una de
// dos revisiones concurrentes afecta la fila; la otra ve cero filas.
func (r *TaskStatusRepo) MarkReviewed(ctx context.Context, companyID, taskID, reviewerID, toState, note string, at time.Time) (int64, error) {
	query := `
		UPDATE company_task_status
		SET state = $3, reviewer_id = $4, reviewed_at = $5, review_note = $6, updated_at = $5
		WHERE company_id = $1 AND task_id = $2
		  AND state = $7`
	tag, err := r.q.Exec(ctx, query,
		companyID, taskID, toState, reviewerID, at, note,
		entity.StatusPendingApproval,
	)
	if err != nil {
		return 0, mapStoreErr("mark reviewed", err)
	}
	return tag.RowsAffected(), nil
}

// AppendTransition registra la transición aceptada en el historial.
func (r *TaskStatusRepo) AppendTransition(ctx context.Context, t *entity.TaskStatusTransition) error {
	query := `
		INSERT INTO task_status_transitions (id, company_id, task_id, from_state, to_state, actor_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.CompanyID, t.TaskID, t.FromState, t.ToState, t.ActorID, t.Note, t.CreatedAt,
	)
	return mapStoreErr("append transition", err)
}

// ListTransitions historial de (empresa, tarea) en orden cronológico.
func (r *TaskStatusRepo) ListTransitions(ctx context.Context, companyID, taskID string) ([]*entity.TaskStatusTransition, error) {
	query := `
		SELECT id, company_id, task_id, from_state, to_state, actor_id, note, created_at
		FROM task_status_transitions
		WHERE company_id = $1 AND task_id = $2
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, companyID, taskID)
	if err != nil {
		return nil, mapStoreErr("list transitions", err)
	}
	defer rows.Close()

	var list []*entity.TaskStatusTransition
	for rows.Next() {
		var t entity.TaskStatusTransition
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.TaskID, &t.FromState, &t.ToState, &t.ActorID, &t.Note, &t.CreatedAt); err != nil {
			return nil, mapStoreErr("scan transition", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// CountApproved cuenta las tareas approved de la empresa dentro de taskIDs.
// Las tareas sin fila en el ledger cuentan como not_started, así que basta
// contar filas approved.
func (r *TaskStatusRepo) CountApproved(ctx context.Context, companyID string, taskIDs []string) (int, error) {
	if len(taskIDs) == 0 {
		return 0, nil
	}
	query := `
		SELECT COUNT(*)
		FROM company_task_status
		WHERE company_id = $1 AND state = $2 AND task_id = ANY($3)`
	var n int
	if err := r.q.QueryRow(ctx, query, companyID, entity.StatusApproved, taskIDs).Scan(&n); err != nil {
		return 0, mapStoreErr("count approved", err)
	}
	return n, nil
}

// ListPendingApproval cola de revisión global, más antiguos primero.
func (r *TaskStatusRepo) ListPendingApproval(ctx context.Context, limit, offset int) ([]*entity.CompanyTaskStatus, error) {
	query := `
		SELECT ` + taskStatusColumns + `
		FROM company_task_status
		WHERE state = $1
		ORDER BY submitted_at, id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, entity.StatusPendingApproval, limit, offset)
	if err != nil {
		return nil, mapStoreErr("list pending approval", err)
	}
	defer rows.Close()

	var list []*entity.CompanyTaskStatus
	for rows.Next() {
		var s entity.CompanyTaskStatus
		if err := rows.Scan(
			&s.ID, &s.CompanyID, &s.TaskID, &s.State, &s.SubmittedAt, &s.SubmissionNote,
			&s.ReviewerID, &s.ReviewedAt, &s.ReviewNote, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, mapStoreErr("scan task status", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
