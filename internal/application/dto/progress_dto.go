package dto

import "time"

// SubProjectCompletionResponse agregado por (empresa, subproyecto).
type SubProjectCompletionResponse struct {
	CompanyID      string     `json:"company_id"`
	SubProjectID   string     `json:"sub_project_id"`
	TotalTasks     int        `json:"total_tasks"`
	CompletedTasks int        `json:"completed_tasks"`
	Rate           int        `json:"rate"`
	AllCompleted   bool       `json:"all_completed"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	Evaluated      bool       `json:"evaluated"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ProjectProgressResponse agregado ponderado por (empresa, proyecto).
type ProjectProgressResponse struct {
	CompanyID      string    `json:"company_id"`
	ProjectID      string    `json:"project_id"`
	TotalTasks     int       `json:"total_tasks"`
	CompletedTasks int       `json:"completed_tasks"`
	Rate           int       `json:"rate"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DashboardProjectResponse proyecto con sus subproyectos para el tablero.
type DashboardProjectResponse struct {
	Project     ProjectProgressResponse        `json:"project"`
	SubProjects []SubProjectCompletionResponse `json:"sub_projects"`
}

// DashboardResponse avance completo de la empresa.
type DashboardResponse struct {
	CompanyID string                     `json:"company_id"`
	Projects  []DashboardProjectResponse `json:"projects"`
}

// ReconcileResponse resultado de la pasada de reconciliación.
type ReconcileResponse struct {
	CompanyID             string `json:"company_id"`
	SubProjectsRecomputed int    `json:"sub_projects_recomputed"`
	ProjectsRecomputed    int    `json:"projects_recomputed"`
}
