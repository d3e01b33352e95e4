package ports

import (
	"context"

	"github.com/jhoicas/Consultoria-api/internal/domain/repository"
)

// TxRunner ejecuta callbacks con repos atados a una misma transacción.
// La implementación vive en infrastructure/postgres.
//
// Run cubre el ciclo submit/review: transición del ledger + historial +
// recomputación de agregados, todo o nada.
// RunEvaluation cubre la publicación de reportes: draft→published y el cierre
// del subproyecto deben confirmar juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		statusRepo repository.TaskStatusRepository,
		assignRepo repository.AssignmentRepository,
		workItemRepo repository.WorkItemRepository,
		progressRepo repository.ProgressRepository,
	) error) error

	RunEvaluation(ctx context.Context, fn func(
		progressRepo repository.ProgressRepository,
		reportRepo repository.ReportRepository,
	) error) error
}
