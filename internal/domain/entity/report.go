package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un reporte de evaluación.
const (
	ReportDraft     = "draft"
	ReportPublished = "published"
)

// EvaluationReport reporte del consultor sobre un subproyecto completado.
// Existe a lo sumo uno por (empresa, subproyecto); lo garantiza un índice
// único además del chequeo en el caso de uso. Tras publicarse es inmutable.
type EvaluationReport struct {
	ID              string
	CompanyID       string
	SubProjectID    string
	Score           decimal.Decimal // 0.00 .. 100.00
	Strengths       string
	Weaknesses      string
	Recommendations string
	Status          string // draft, published
	CreatedBy       string // consultor que lo redactó
	PublishedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
