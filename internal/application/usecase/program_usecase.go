package usecase

import (
	"context"

	"github.com/jhoicas/Consultoria-api/internal/application/dto"
	"github.com/jhoicas/Consultoria-api/internal/domain"
	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
	"github.com/jhoicas/Consultoria-api/internal/domain/repository"
)

// ProgramUseCase lectura del árbol de trabajo compartido para la capa de
// presentación. El árbol es único para todos los tenants; aquí no hay nada
// por empresa.
type ProgramUseCase struct {
	repo repository.WorkItemRepository
}

// NewProgramUseCase construye el caso de uso.
func NewProgramUseCase(repo repository.WorkItemRepository) *ProgramUseCase {
	return &ProgramUseCase{repo: repo}
}

// List devuelve todos los proyectos con subproyectos y tareas anidados.
func (uc *ProgramUseCase) List(ctx context.Context) (*dto.ProgramListResponse, error) {
	projects, err := uc.repo.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProgramResponse, 0, len(projects))
	for _, p := range projects {
		program, err := uc.build(ctx, p)
		if err != nil {
			return nil, err
		}
		items = append(items, *program)
	}
	return &dto.ProgramListResponse{Items: items}, nil
}

// GetByID devuelve un proyecto con su árbol completo.
func (uc *ProgramUseCase) GetByID(ctx context.Context, id string) (*dto.ProgramResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Level != entity.LevelProject {
		return nil, domain.ErrNotFound
	}
	return uc.build(ctx, p)
}

func (uc *ProgramUseCase) build(ctx context.Context, p *entity.WorkItem) (*dto.ProgramResponse, error) {
	subs, err := uc.repo.ListChildren(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	subItems := make([]dto.SubProjectResponse, 0, len(subs))
	for _, sub := range subs {
		tasks, err := uc.repo.ListChildren(ctx, sub.ID)
		if err != nil {
			return nil, err
		}
		taskItems := make([]dto.TaskResponse, 0, len(tasks))
		for _, t := range tasks {
			taskItems = append(taskItems, dto.TaskResponse{
				ID:          t.ID,
				Name:        t.Name,
				Description: t.Description,
				Position:    t.Position,
			})
		}
		subItems = append(subItems, dto.SubProjectResponse{
			ID:          sub.ID,
			Name:        sub.Name,
			Description: sub.Description,
			Position:    sub.Position,
			Tasks:       taskItems,
		})
	}
	return &dto.ProgramResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Position:    p.Position,
		SubProjects: subItems,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}
