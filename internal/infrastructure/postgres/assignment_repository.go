package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Consultoria-api/internal/domain"
	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
	"github.com/jhoicas/Consultoria-api/internal/domain/repository"
)

// Asegura que AssignmentRepo implementa repository.AssignmentRepository.
var _ repository.AssignmentRepository = (*AssignmentRepo)(nil)

// AssignmentRepo persistencia del registro de asignaciones (usable con pool o tx).
type AssignmentRepo struct {
	q Querier
}

// NewAssignmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAssignmentRepository(q Querier) *AssignmentRepo {
	return &AssignmentRepo{q: q}
}

// scopeJoin expande asignaciones activas a tareas: una asignación a proyecto
// cubre todas sus tareas descendientes; a subproyecto, sus tareas; a tarea,
// ella misma. DISTINCT deduplica cuando varias asignaciones se solapan.
const scopeJoin = `
	FROM work_items t
	JOIN work_items sp ON sp.id = t.parent_id
	JOIN work_items p  ON p.id  = sp.parent_id
	JOIN assignments a ON a.company_id = $1
	   AND a.status = 'active'
	   AND a.work_item_id IN (t.id, sp.id, p.id)
	WHERE t.level = 'task'`

// Get obtiene la asignación (empresa, work item), activa o no.
func (r *AssignmentRepo) Get(ctx context.Context, companyID, workItemID string) (*entity.Assignment, error) {
	query := `
		SELECT id, company_id, work_item_id, level, status, created_at, updated_at
		FROM assignments WHERE company_id = $1 AND work_item_id = $2`
	var a entity.Assignment
	err := r.q.QueryRow(ctx, query, companyID, workItemID).Scan(
		&a.ID, &a.CompanyID, &a.WorkItemID, &a.Level, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapStoreErr("get assignment", err)
	}
	return &a, nil
}

// Create persiste una nueva asignación.
func (r *AssignmentRepo) Create(ctx context.Context, a *entity.Assignment) error {
	query := `
		INSERT INTO assignments (id, company_id, work_item_id, level, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.CompanyID, a.WorkItemID, a.Level, a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert assignment: %w", domain.ErrAlreadyExists)
		}
		return mapStoreErr("insert assignment", err)
	}
	return nil
}

// SetStatus activa o desactiva una asignación (soft-delete; nunca se borra la fila).
func (r *AssignmentRepo) SetStatus(ctx context.Context, id, status string) error {
	query := `UPDATE assignments SET status = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, status)
	return mapStoreErr("update assignment status", err)
}

// ListActiveByCompany asignaciones activas de la empresa.
func (r *AssignmentRepo) ListActiveByCompany(ctx context.Context, companyID string) ([]*entity.Assignment, error) {
	query := `
		SELECT id, company_id, work_item_id, level, status, created_at, updated_at
		FROM assignments WHERE company_id = $1 AND status = 'active'
		ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, mapStoreErr("list assignments", err)
	}
	defer rows.Close()

	var list []*entity.Assignment
	for rows.Next() {
		var a entity.Assignment
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.WorkItemID, &a.Level, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, mapStoreErr("scan assignment", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// ScopeTaskIDs unión deduplicada de tareas en alcance activo de la empresa.
func (r *AssignmentRepo) ScopeTaskIDs(ctx context.Context, companyID string) ([]string, error) {
	return r.ids(ctx, `SELECT DISTINCT t.id`+scopeJoin, companyID)
}

// ScopeTaskIDsOfSubProject tareas en alcance dentro de un subproyecto.
func (r *AssignmentRepo) ScopeTaskIDsOfSubProject(ctx context.Context, companyID, subProjectID string) ([]string, error) {
	return r.ids(ctx, `SELECT DISTINCT t.id`+scopeJoin+` AND sp.id = $2`, companyID, subProjectID)
}

// InScope informa si la tarea está dentro del alcance activo de la empresa.
func (r *AssignmentRepo) InScope(ctx context.Context, companyID, taskID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1` + scopeJoin + ` AND t.id = $2)`
	var in bool
	if err := r.q.QueryRow(ctx, query, companyID, taskID).Scan(&in); err != nil {
		return false, mapStoreErr("check scope", err)
	}
	return in, nil
}

// ScopeProjectIDs proyectos con al menos una tarea en alcance.
func (r *AssignmentRepo) ScopeProjectIDs(ctx context.Context, companyID string) ([]string, error) {
	return r.ids(ctx, `SELECT DISTINCT p.id`+scopeJoin, companyID)
}

// ScopeSubProjectIDs subproyectos de un proyecto con tareas en alcance.
func (r *AssignmentRepo) ScopeSubProjectIDs(ctx context.Context, companyID, projectID string) ([]string, error) {
	return r.ids(ctx, `SELECT DISTINCT sp.id`+scopeJoin+` AND p.id = $2`, companyID, projectID)
}

func (r *AssignmentRepo) ids(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapStoreErr("resolve scope", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapStoreErr("scan scope id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
