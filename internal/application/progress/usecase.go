package progress

import (
	"context"
	"time"

	"github.com/jhoicas/Consultoria-api/internal/application/dto"
	"github.com/jhoicas/Consultoria-api/internal/application/ports"
	"github.com/jhoicas/Consultoria-api/internal/domain"
	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
	"github.com/jhoicas/Consultoria-api/internal/domain/repository"
	"github.com/jhoicas/Consultoria-api/pkg/logger"
)

// UseCase lecturas de agregados, tablero por empresa y reconciliación.
// Las lecturas recomputan bajo demanda cuando el agregado aún no existe:
// la recomputación es determinista y sin efectos colaterales, así que
// hacerla de más nunca corrompe nada.
type UseCase struct {
	tx           ports.TxRunner
	workItemRepo repository.WorkItemRepository
	assignRepo   repository.AssignmentRepository
	statusRepo   repository.TaskStatusRepository
	progressRepo repository.ProgressRepository
	log          *logger.Logger
	timeout      time.Duration
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	tx ports.TxRunner,
	workItemRepo repository.WorkItemRepository,
	assignRepo repository.AssignmentRepository,
	statusRepo repository.TaskStatusRepository,
	progressRepo repository.ProgressRepository,
	log *logger.Logger,
	storeTimeout time.Duration,
) *UseCase {
	return &UseCase{
		tx:           tx,
		workItemRepo: workItemRepo,
		assignRepo:   assignRepo,
		statusRepo:   statusRepo,
		progressRepo: progressRepo,
		log:          log,
		timeout:      storeTimeout,
	}
}

func (uc *UseCase) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.timeout)
}

// GetSubProjectCompletion agregado vigente de (empresa, subproyecto);
// recomputa bajo demanda si aún no está materializado.
func (uc *UseCase) GetSubProjectCompletion(ctx context.Context, companyID, subProjectID string) (*dto.SubProjectCompletionResponse, error) {
	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	wi, err := uc.workItemRepo.GetByID(ctx, subProjectID)
	if err != nil {
		return nil, err
	}
	if wi == nil || wi.Level != entity.LevelSubProject {
		return nil, domain.ErrNotFound
	}

	c, err := uc.progressRepo.GetSubProjectCompletion(ctx, companyID, subProjectID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		if err := RecomputeSubProject(ctx, companyID, subProjectID, uc.assignRepo, uc.statusRepo, uc.progressRepo); err != nil {
			return nil, err
		}
		if c, err = uc.progressRepo.GetSubProjectCompletion(ctx, companyID, subProjectID); err != nil {
			return nil, err
		}
		if c == nil {
			return nil, domain.ErrNotFound
		}
	}
	return toCompletionResponse(c), nil
}

// GetProjectProgress agregado ponderado vigente de (empresa, proyecto).
func (uc *UseCase) GetProjectProgress(ctx context.Context, companyID, projectID string) (*dto.ProjectProgressResponse, error) {
	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	wi, err := uc.workItemRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if wi == nil || wi.Level != entity.LevelProject {
		return nil, domain.ErrNotFound
	}

	p, err := uc.progressRepo.GetProjectProgress(ctx, companyID, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		if err := RecomputeProject(ctx, companyID, projectID, uc.assignRepo, uc.statusRepo, uc.progressRepo); err != nil {
			return nil, err
		}
		if p, err = uc.progressRepo.GetProjectProgress(ctx, companyID, projectID); err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrNotFound
		}
	}
	return toProgressResponse(p), nil
}

// Dashboard avance completo de la empresa: cada proyecto en alcance con sus
// subproyectos asignados.
func (uc *UseCase) Dashboard(ctx context.Context, companyID string) (*dto.DashboardResponse, error) {
	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	projectIDs, err := uc.assignRepo.ScopeProjectIDs(ctx, companyID)
	if err != nil {
		return nil, err
	}
	// Una sola lectura de los agregados materializados de la empresa; solo los
	// subproyectos sin agregado caen al camino de recomputación bajo demanda.
	materialized, err := uc.progressRepo.ListSubProjectCompletions(ctx, companyID)
	if err != nil {
		return nil, err
	}
	bySub := make(map[string]*entity.SubProjectCompletion, len(materialized))
	for _, c := range materialized {
		bySub[c.SubProjectID] = c
	}
	out := &dto.DashboardResponse{CompanyID: companyID, Projects: []dto.DashboardProjectResponse{}}
	for _, projectID := range projectIDs {
		project, err := uc.GetProjectProgress(ctx, companyID, projectID)
		if err != nil {
			return nil, err
		}
		subIDs, err := uc.assignRepo.ScopeSubProjectIDs(ctx, companyID, projectID)
		if err != nil {
			return nil, err
		}
		subs := make([]dto.SubProjectCompletionResponse, 0, len(subIDs))
		for _, subID := range subIDs {
			if c, ok := bySub[subID]; ok {
				subs = append(subs, *toCompletionResponse(c))
				continue
			}
			c, err := uc.GetSubProjectCompletion(ctx, companyID, subID)
			if err != nil {
				return nil, err
			}
			subs = append(subs, *c)
		}
		out.Projects = append(out.Projects, dto.DashboardProjectResponse{
			Project:     *project,
			SubProjects: subs,
		})
	}
	return out, nil
}

// Reconcile recomputa TODOS los agregados de la empresa desde el ledger y el
// alcance vigentes. Pensado para correrse periódicamente o tras un incidente:
// como la recomputación es una función pura del estado fuente, la pasada es
// segura en cualquier momento y deja cualquier agregado desfasado consistente.
func (uc *UseCase) Reconcile(ctx context.Context, companyID string) (*dto.ReconcileResponse, error) {
	ctx, cancel := uc.opCtx(ctx)
	defer cancel()

	out := &dto.ReconcileResponse{CompanyID: companyID}
	err := uc.tx.Run(ctx, func(
		statusRepo repository.TaskStatusRepository,
		assignRepo repository.AssignmentRepository,
		_ repository.WorkItemRepository,
		progressRepo repository.ProgressRepository,
	) error {
		projectIDs, err := assignRepo.ScopeProjectIDs(ctx, companyID)
		if err != nil {
			return err
		}
		for _, projectID := range projectIDs {
			subIDs, err := assignRepo.ScopeSubProjectIDs(ctx, companyID, projectID)
			if err != nil {
				return err
			}
			for _, subID := range subIDs {
				if err := RecomputeSubProject(ctx, companyID, subID, assignRepo, statusRepo, progressRepo); err != nil {
					return err
				}
				out.SubProjectsRecomputed++
			}
			if err := RecomputeProject(ctx, companyID, projectID, assignRepo, statusRepo, progressRepo); err != nil {
				return err
			}
			out.ProjectsRecomputed++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("company_id", companyID).
		Int("sub_projects", out.SubProjectsRecomputed).
		Int("projects", out.ProjectsRecomputed).
		Msg("reconciliación de agregados completada")
	return out, nil
}

func toCompletionResponse(c *entity.SubProjectCompletion) *dto.SubProjectCompletionResponse {
	if c == nil {
		return nil
	}
	return &dto.SubProjectCompletionResponse{
		CompanyID:      c.CompanyID,
		SubProjectID:   c.SubProjectID,
		TotalTasks:     c.TotalTasks,
		CompletedTasks: c.CompletedTasks,
		Rate:           c.Rate,
		AllCompleted:   c.AllCompleted,
		CompletionDate: c.CompletionDate,
		Evaluated:      c.Evaluated,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toProgressResponse(p *entity.ProjectProgress) *dto.ProjectProgressResponse {
	if p == nil {
		return nil
	}
	return &dto.ProjectProgressResponse{
		CompanyID:      p.CompanyID,
		ProjectID:      p.ProjectID,
		TotalTasks:     p.TotalTasks,
		CompletedTasks: p.CompletedTasks,
		Rate:           p.Rate,
		UpdatedAt:      p.UpdatedAt,
	}
}
