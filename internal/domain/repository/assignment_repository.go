package repository

import (
	"context"

	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
)

// AssignmentRepository puerto de persistencia del registro de asignaciones.
// La resolución de alcance vive aquí porque es un join entre asignaciones y
// el árbol; siempre considera únicamente asignaciones activas.
type AssignmentRepository interface {
	Get(ctx context.Context, companyID, workItemID string) (*entity.Assignment, error)
	Create(ctx context.Context, a *entity.Assignment) error
	SetStatus(ctx context.Context, id, status string) error
	ListActiveByCompany(ctx context.Context, companyID string) ([]*entity.Assignment, error)

	// ScopeTaskIDs unión deduplicada de ids de tarea alcanzables desde todas
	// las asignaciones activas de la empresa (a cualquier nivel).
	ScopeTaskIDs(ctx context.Context, companyID string) ([]string, error)

	// ScopeTaskIDsOfSubProject tareas en alcance dentro de un subproyecto.
	ScopeTaskIDsOfSubProject(ctx context.Context, companyID, subProjectID string) ([]string, error)

	// InScope informa si una tarea concreta está en el alcance activo.
	InScope(ctx context.Context, companyID, taskID string) (bool, error)

	// ScopeProjectIDs proyectos con al menos una tarea en alcance.
	ScopeProjectIDs(ctx context.Context, companyID string) ([]string, error)

	// ScopeSubProjectIDs subproyectos de un proyecto con tareas en alcance.
	ScopeSubProjectIDs(ctx context.Context, companyID, projectID string) ([]string, error)
}
