package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
	"github.com/jhoicas/Consultoria-api/internal/domain/repository"
)

// Asegura que ProgressRepo implementa repository.ProgressRepository.
var _ repository.ProgressRepository = (*ProgressRepo)(nil)

// ProgressRepo persistencia de los agregados materializados (usable con pool o tx).
type ProgressRepo struct {
	q Querier
}

// NewProgressRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProgressRepository(q Querier) *ProgressRepo {
	return &ProgressRepo{q: q}
}

// UpsertSubProjectCompletion sobreescribe el agregado del subproyecto.
// completion_date se fija la primera vez que all_completed pasa a true y se
// conserva mientras siga true; si deja de estarlo (revocación de alcance o
// rechazo) se limpia. El flag evaluated NO se toca aquí: solo muta vía
// MarkEvaluated.
func (r *ProgressRepo) UpsertSubProjectCompletion(ctx context.Context, c *entity.SubProjectCompletion) error {
	query := `
		INSERT INTO sub_project_completions
			(company_id, sub_project_id, total_tasks, completed_tasks, rate, all_completed, completion_date, evaluated, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CASE WHEN $6 THEN $7::timestamptz ELSE NULL END, false, $7)
		ON CONFLICT (company_id, sub_project_id) DO UPDATE SET
			total_tasks     = EXCLUDED.total_tasks,
			completed_tasks = EXCLUDED.completed_tasks,
			rate            = EXCLUDED.rate,
			all_completed   = EXCLUDED.all_completed,
			completion_date = CASE WHEN EXCLUDED.all_completed
				THEN COALESCE(sub_project_completions.completion_date, EXCLUDED.updated_at)
				ELSE NULL END,
			updated_at      = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		c.CompanyID, c.SubProjectID, c.TotalTasks, c.CompletedTasks, c.Rate, c.AllCompleted, c.UpdatedAt,
	)
	return mapStoreErr("upsert sub project completion", err)
}

// GetSubProjectCompletion obtiene el agregado. nil si nunca se materializó.
func (r *ProgressRepo) GetSubProjectCompletion(ctx context.Context, companyID, subProjectID string) (*entity.SubProjectCompletion, error) {
	query := `
		SELECT company_id, sub_project_id, total_tasks, completed_tasks, rate, all_completed, completion_date, evaluated, updated_at
		FROM sub_project_completions
		WHERE company_id = $1 AND sub_project_id = $2`
	var c entity.SubProjectCompletion
	err := r.q.QueryRow(ctx, query, companyID, subProjectID).Scan(
		&c.CompanyID, &c.SubProjectID, &c.TotalTasks, &c.CompletedTasks, &c.Rate,
		&c.AllCompleted, &c.CompletionDate, &c.Evaluated, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapStoreErr("get sub project completion", err)
	}
	return &c, nil
}

// ListSubProjectCompletions todos los agregados de subproyecto de la empresa.
func (r *ProgressRepo) ListSubProjectCompletions(ctx context.Context, companyID string) ([]*entity.SubProjectCompletion, error) {
	query := `
		SELECT company_id, sub_project_id, total_tasks, completed_tasks, rate, all_completed, completion_date, evaluated, updated_at
		FROM sub_project_completions
		WHERE company_id = $1
		ORDER BY sub_project_id`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, mapStoreErr("list sub project completions", err)
	}
	defer rows.Close()

	var list []*entity.SubProjectCompletion
	for rows.Next() {
		var c entity.SubProjectCompletion
		if err := rows.Scan(
			&c.CompanyID, &c.SubProjectID, &c.TotalTasks, &c.CompletedTasks, &c.Rate,
			&c.AllCompleted, &c.CompletionDate, &c.Evaluated, &c.UpdatedAt,
		); err != nil {
			return nil, mapStoreErr("scan sub project completion", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// UpsertProjectProgress sobreescribe el agregado del proyecto.
func (r *ProgressRepo) UpsertProjectProgress(ctx context.Context, p *entity.ProjectProgress) error {
	query := `
		INSERT INTO project_progress (company_id, project_id, total_tasks, completed_tasks, rate, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id, project_id) DO UPDATE SET
			total_tasks     = EXCLUDED.total_tasks,
			completed_tasks = EXCLUDED.completed_tasks,
			rate            = EXCLUDED.rate,
			updated_at      = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		p.CompanyID, p.ProjectID, p.TotalTasks, p.CompletedTasks, p.Rate, p.UpdatedAt,
	)
	return mapStoreErr("upsert project progress", err)
}

// GetProjectProgress obtiene el agregado del proyecto. nil si nunca se materializó.
func (r *ProgressRepo) GetProjectProgress(ctx context.Context, companyID, projectID string) (*entity.ProjectProgress, error) {
	query := `
		SELECT company_id, project_id, total_tasks, completed_tasks, rate, updated_at
		FROM project_progress
		WHERE company_id = $1 AND project_id = $2`
	var p entity.ProjectProgress
	err := r.q.QueryRow(ctx, query, companyID, projectID).Scan(
		&p.CompanyID, &p.ProjectID, &p.TotalTasks, &p.CompletedTasks, &p.Rate, &p.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapStoreErr("get project progress", err)
	}
	return &p, nil
}

// MarkEvaluated cierra el subproyecto para la empresa. Guardado sobre
// all_completed y evaluated: cero filas si el agregado no está completo o ya
// se evaluó.
func (r *ProgressRepo) MarkEvaluated(ctx context.Context, companyID, subProjectID string, at time.Time) (int64, error) {
	query := `
		UPDATE sub_project_completions
		SET evaluated = true, updated_at = $3
		WHERE company_id = $1 AND sub_project_id = $2
		  AND all_completed = true AND evaluated = false`
	tag, err := r.q.Exec(ctx, query, companyID, subProjectID, at)
	if err != nil {
		return 0, mapStoreErr("mark evaluated", err)
	}
	return tag.RowsAffected(), nil
}
