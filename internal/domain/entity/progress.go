package entity

import "time"

// SubProjectCompletion agregado materializado por (empresa, subproyecto).
// Siempre recomputable desde el ledger + asignaciones; el Aggregator lo
// sobreescribe completo en cada upsert, nunca lo incrementa en sitio.
//
// Invariantes: CompletedTasks ≤ TotalTasks; Rate = round(Completed/Total*100)
// (0 si Total es 0); AllCompleted ⇔ Total > 0 ∧ Completed = Total.
type SubProjectCompletion struct {
	CompanyID      string
	SubProjectID   string
	TotalTasks     int
	CompletedTasks int
	Rate           int // porcentaje entero 0..100
	AllCompleted   bool
	CompletionDate *time.Time
	Evaluated      bool // true tras publicar el reporte: cierra el subproyecto para la empresa
	UpdatedAt      time.Time
}

// ProjectProgress agregado por (empresa, proyecto), ponderado por número de
// tareas: Rate = ΣCompleted/ΣTotal sobre los subproyectos asignados, no el
// promedio simple de tasas.
type ProjectProgress struct {
	CompanyID      string
	ProjectID      string
	TotalTasks     int
	CompletedTasks int
	Rate           int
	UpdatedAt      time.Time
}
