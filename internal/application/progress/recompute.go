package progress

import (
	"context"
	"time"

	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
	domainprogress "github.com/jhoicas/Consultoria-api/internal/domain/progress"
	"github.com/jhoicas/Consultoria-api/internal/domain/repository"
)

// RecomputeSubProject recalcula el agregado (empresa, subproyecto) desde cero:
// totalTasks = tareas del subproyecto en alcance activo; completedTasks = las
// approved en el ledger. El resultado se upserta sobreescribiendo el valor
// previo; nunca se incrementa un contador, así que repetir la llamada es
// siempre seguro (la usa tanto el ciclo submit/review como la reconciliación).
func RecomputeSubProject(
	ctx context.Context,
	companyID, subProjectID string,
	assignRepo repository.AssignmentRepository,
	statusRepo repository.TaskStatusRepository,
	progressRepo repository.ProgressRepository,
) error {
	taskIDs, err := assignRepo.ScopeTaskIDsOfSubProject(ctx, companyID, subProjectID)
	if err != nil {
		return err
	}
	completed := 0
	if len(taskIDs) > 0 {
		completed, err = statusRepo.CountApproved(ctx, companyID, taskIDs)
		if err != nil {
			return err
		}
	}
	total := len(taskIDs)
	return progressRepo.UpsertSubProjectCompletion(ctx, &entity.SubProjectCompletion{
		CompanyID:      companyID,
		SubProjectID:   subProjectID,
		TotalTasks:     total,
		CompletedTasks: completed,
		Rate:           domainprogress.Rate(completed, total),
		AllCompleted:   domainprogress.AllCompleted(completed, total),
		UpdatedAt:      time.Now(),
	})
}

// RecomputeProject recalcula el agregado (empresa, proyecto) con la fórmula
// ponderada por tareas (ΣCompleted/ΣTotal sobre los subproyectos en alcance).
// Lee siempre desde la fuente (alcance + ledger), no desde los agregados
// materializados, para que una pasada de reconciliación lo deje consistente
// aunque algún agregado intermedio estuviera desactualizado.
func RecomputeProject(
	ctx context.Context,
	companyID, projectID string,
	assignRepo repository.AssignmentRepository,
	statusRepo repository.TaskStatusRepository,
	progressRepo repository.ProgressRepository,
) error {
	subIDs, err := assignRepo.ScopeSubProjectIDs(ctx, companyID, projectID)
	if err != nil {
		return err
	}
	counts := make([]domainprogress.SubProjectCounts, 0, len(subIDs))
	for _, subID := range subIDs {
		taskIDs, err := assignRepo.ScopeTaskIDsOfSubProject(ctx, companyID, subID)
		if err != nil {
			return err
		}
		completed := 0
		if len(taskIDs) > 0 {
			completed, err = statusRepo.CountApproved(ctx, companyID, taskIDs)
			if err != nil {
				return err
			}
		}
		counts = append(counts, domainprogress.SubProjectCounts{
			TotalTasks:     len(taskIDs),
			CompletedTasks: completed,
		})
	}
	total, completed, rate := domainprogress.ProjectRate(counts)
	return progressRepo.UpsertProjectProgress(ctx, &entity.ProjectProgress{
		CompanyID:      companyID,
		ProjectID:      projectID,
		TotalTasks:     total,
		CompletedTasks: completed,
		Rate:           rate,
		UpdatedAt:      time.Now(),
	})
}
