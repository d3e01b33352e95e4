package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateReportRequest borrador de reporte de evaluación.
type CreateReportRequest struct {
	CompanyID       string          `json:"company_id"`
	SubProjectID    string          `json:"sub_project_id"`
	Score           decimal.Decimal `json:"score"` // 0.00 .. 100.00
	Strengths       string          `json:"strengths"`
	Weaknesses      string          `json:"weaknesses"`
	Recommendations string          `json:"recommendations"`
}

// ReportResponse reporte de evaluación en respuestas.
type ReportResponse struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	SubProjectID    string          `json:"sub_project_id"`
	Score           decimal.Decimal `json:"score"`
	Strengths       string          `json:"strengths"`
	Weaknesses      string          `json:"weaknesses"`
	Recommendations string          `json:"recommendations"`
	Status          string          `json:"status"`
	CreatedBy       string          `json:"created_by"`
	PublishedAt     *time.Time      `json:"published_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// EligibilityResponse respuesta de IsEligible.
type EligibilityResponse struct {
	CompanyID    string `json:"company_id"`
	SubProjectID string `json:"sub_project_id"`
	Eligible     bool   `json:"eligible"`
	Reason       string `json:"reason,omitempty"`
}
