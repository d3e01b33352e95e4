package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
)

// ProgressRepository puerto de los agregados materializados.
// Los upserts sobreescriben el agregado completo (nunca incrementan) y
// preservan el flag evaluated, que solo muta vía MarkEvaluated.
type ProgressRepository interface {
	UpsertSubProjectCompletion(ctx context.Context, c *entity.SubProjectCompletion) error
	GetSubProjectCompletion(ctx context.Context, companyID, subProjectID string) (*entity.SubProjectCompletion, error)
	ListSubProjectCompletions(ctx context.Context, companyID string) ([]*entity.SubProjectCompletion, error)

	UpsertProjectProgress(ctx context.Context, p *entity.ProjectProgress) error
	GetProjectProgress(ctx context.Context, companyID, projectID string) (*entity.ProjectProgress, error)

	// MarkEvaluated cierra el subproyecto para la empresa (update guardado
	// sobre all_completed = true y evaluated = false). Retorna filas afectadas.
	MarkEvaluated(ctx context.Context, companyID, subProjectID string, at time.Time) (int64, error)
}
