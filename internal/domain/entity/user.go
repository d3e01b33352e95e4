package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleConsultor = "consultor"
	RoleEmpresa   = "empresa"
)

// User usuario del sistema, siempre ligado a una empresa.
// Los consultores y administradores pertenecen a la empresa operadora del programa.
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string
	Name         string
	Role         string // admin, consultor, empresa
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
