package entity

import "time"

// Estados de una asignación. La revocación es soft-delete: la fila queda
// inactive y el historial de aprobaciones de la empresa se conserva para auditoría.
const (
	AssignmentActive   = "active"
	AssignmentInactive = "inactive"
)

// Assignment vincula una empresa con un nodo del árbol (a cualquier nivel).
// Asignar un proyecto implica todas sus tareas descendientes; un subproyecto,
// sus tareas; una tarea, solo ella. El alcance efectivo es la unión deduplicada
// de todas las asignaciones activas.
type Assignment struct {
	ID         string
	CompanyID  string
	WorkItemID string
	Level      string // nivel del work item asignado (desnormalizado para consultas)
	Status     string // active, inactive
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
