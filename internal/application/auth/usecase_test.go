package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Consultoria-api/internal/application/apptest"
	"github.com/jhoicas/Consultoria-api/internal/application/auth"
	"github.com/jhoicas/Consultoria-api/internal/application/dto"
	"github.com/jhoicas/Consultoria-api/internal/domain"
	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
	pkgjwt "github.com/jhoicas/Consultoria-api/pkg/jwt"
)

const (
	testSecret = "test-secret"
	testIssuer = "consultoria-pro-test"
	companyID  = "empresa-a"
)

func newFixture(t *testing.T) (*auth.AuthUseCase, *apptest.Store) {
	t.Helper()
	st := apptest.NewStore()
	st.AddCompany(companyID, "Empresa A")
	uc := auth.NewAuthUseCase(st.Users(), st.Companies(), auth.JWTConfig{
		Secret:     testSecret,
		ExpMinutes: 60,
		Issuer:     testIssuer,
	})
	return uc, st
}

func register(t *testing.T, uc *auth.AuthUseCase, email, role string) *dto.UserResponse {
	t.Helper()
	user, err := uc.RegisterUser(dto.RegisterRequest{
		CompanyID: companyID,
		Email:     email,
		Password:  "secreto-123",
		Name:      "Usuario de Prueba",
		Role:      role,
	})
	require.NoError(t, err)
	return user
}

func TestRegisterUser_CreaUsuario(t *testing.T) {
	uc, _ := newFixture(t)

	user := register(t, uc, "ana@empresa-a.co", entity.RoleEmpresa)
	assert.Equal(t, "ana@empresa-a.co", user.Email)
	assert.Equal(t, entity.RoleEmpresa, user.Role)
	assert.Equal(t, "active", user.Status)
	assert.NotEmpty(t, user.ID)
}

func TestRegisterUser_RolePorDefectoEsEmpresa(t *testing.T) {
	uc, _ := newFixture(t)

	user := register(t, uc, "sin-rol@empresa-a.co", "")
	assert.Equal(t, entity.RoleEmpresa, user.Role)
}

func TestRegisterUser_EmailDuplicado(t *testing.T) {
	uc, _ := newFixture(t)

	register(t, uc, "ana@empresa-a.co", entity.RoleEmpresa)
	_, err := uc.RegisterUser(dto.RegisterRequest{
		CompanyID: companyID,
		Email:     "ana@empresa-a.co",
		Password:  "otro-secreto",
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterUser_EmpresaInexistente(t *testing.T) {
	uc, _ := newFixture(t)

	_, err := uc.RegisterUser(dto.RegisterRequest{
		CompanyID: "no-existe",
		Email:     "ana@empresa-a.co",
		Password:  "secreto-123",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLogin_CredencialesValidas(t *testing.T) {
	uc, _ := newFixture(t)

	register(t, uc, "consultor@operadora.co", entity.RoleConsultor)
	resp, err := uc.Login(dto.LoginRequest{Email: "consultor@operadora.co", Password: "secreto-123"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, entity.RoleConsultor, resp.User.Role)

	// El token lleva identidad + empresa + rol para el middleware RBAC.
	userID, tokenCompanyID, role, err := pkgjwt.Parse(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)
	assert.Equal(t, companyID, tokenCompanyID)
	assert.Equal(t, entity.RoleConsultor, role)
}

func TestLogin_PasswordIncorrecto(t *testing.T) {
	uc, _ := newFixture(t)

	register(t, uc, "ana@empresa-a.co", entity.RoleEmpresa)
	_, err := uc.Login(dto.LoginRequest{Email: "ana@empresa-a.co", Password: "equivocado"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInexistente(t *testing.T) {
	uc, _ := newFixture(t)

	_, err := uc.Login(dto.LoginRequest{Email: "nadie@empresa-a.co", Password: "secreto-123"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	uc, st := newFixture(t)

	user := register(t, uc, "ana@empresa-a.co", entity.RoleEmpresa)
	st.SetUserStatus(user.ID, "inactive")
	_, err := uc.Login(dto.LoginRequest{Email: "ana@empresa-a.co", Password: "secreto-123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
