package postgres

import (
	"context"

	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
	"github.com/jhoicas/Consultoria-api/internal/domain/repository"
)

// Asegura que WorkItemRepo implementa repository.WorkItemRepository.
var _ repository.WorkItemRepository = (*WorkItemRepo)(nil)

// WorkItemRepo lectura del árbol de trabajo compartido (usable con pool o tx).
type WorkItemRepo struct {
	q Querier
}

// NewWorkItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWorkItemRepository(q Querier) *WorkItemRepo {
	return &WorkItemRepo{q: q}
}

const workItemColumns = `id, parent_id, level, name, description, position, created_at, updated_at`

// GetByID obtiene un nodo del árbol por ID.
func (r *WorkItemRepo) GetByID(ctx context.Context, id string) (*entity.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE id = $1`
	var w entity.WorkItem
	err := r.q.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.ParentID, &w.Level, &w.Name, &w.Description, &w.Position,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapStoreErr("get work item", err)
	}
	return &w, nil
}

// ListProjects devuelve los nodos raíz (proyectos) ordenados por posición.
func (r *WorkItemRepo) ListProjects(ctx context.Context) ([]*entity.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE level = 'project' ORDER BY position, name`
	return r.list(ctx, query)
}

// ListChildren devuelve los hijos directos de un nodo ordenados por posición.
func (r *WorkItemRepo) ListChildren(ctx context.Context, parentID string) ([]*entity.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE parent_id = $1 ORDER BY position, name`
	return r.list(ctx, query, parentID)
}

// TaskParents resuelve (subproyecto, proyecto) de una tarea en una sola consulta.
func (r *WorkItemRepo) TaskParents(ctx context.Context, taskID string) (*entity.TaskParents, error) {
	query := `
		SELECT sp.id, p.id
		FROM work_items t
		JOIN work_items sp ON sp.id = t.parent_id
		JOIN work_items p  ON p.id  = sp.parent_id
		WHERE t.id = $1 AND t.level = 'task'`
	var tp entity.TaskParents
	err := r.q.QueryRow(ctx, query, taskID).Scan(&tp.SubProjectID, &tp.ProjectID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapStoreErr("get task parents", err)
	}
	return &tp, nil
}

// SubProjectIDsUnder subproyectos cubiertos por un nodo: proyecto → sus
// subproyectos; subproyecto → él mismo; tarea → su padre.
func (r *WorkItemRepo) SubProjectIDsUnder(ctx context.Context, workItemID string) ([]string, error) {
	query := `
		SELECT sp.id
		FROM work_items sp
		JOIN work_items w ON w.id = $1
		WHERE sp.level = 'sub_project'
		  AND (sp.id = w.id OR sp.parent_id = w.id OR sp.id = w.parent_id)`
	rows, err := r.q.Query(ctx, query, workItemID)
	if err != nil {
		return nil, mapStoreErr("list sub projects under", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapStoreErr("scan sub project id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *WorkItemRepo) list(ctx context.Context, query string, args ...any) ([]*entity.WorkItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapStoreErr("list work items", err)
	}
	defer rows.Close()

	var list []*entity.WorkItem
	for rows.Next() {
		var w entity.WorkItem
		if err := rows.Scan(&w.ID, &w.ParentID, &w.Level, &w.Name, &w.Description, &w.Position, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, mapStoreErr("scan work item", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}
