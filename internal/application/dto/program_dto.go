package dto

import "time"

// TaskResponse tarea (hoja del árbol compartido).
type TaskResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Position    int    `json:"position"`
}

// SubProjectResponse subproyecto con sus tareas.
type SubProjectResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Position    int            `json:"position"`
	Tasks       []TaskResponse `json:"tasks,omitempty"`
}

// ProgramResponse proyecto con subproyectos anidados (árbol de presentación).
type ProgramResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Position    int                  `json:"position"`
	SubProjects []SubProjectResponse `json:"sub_projects,omitempty"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ProgramListResponse listado de proyectos del programa.
type ProgramListResponse struct {
	Items []ProgramResponse `json:"items"`
}
