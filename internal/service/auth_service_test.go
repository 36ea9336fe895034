package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/course-portal-api/internal/models"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
)

type mockPrincipalRepo struct {
	principals map[models.Role]map[string]*models.Principal
	findErr    error
	createErr  error
}

func newMockPrincipalRepo() *mockPrincipalRepo {
	return &mockPrincipalRepo{principals: map[models.Role]map[string]*models.Principal{}}
}

func (m *mockPrincipalRepo) FindByID(ctx context.Context, role models.Role, id string) (*models.Principal, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	p, ok := m.principals[role][id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (m *mockPrincipalRepo) Create(ctx context.Context, principal *models.Principal) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.principals[principal.Role][principal.ID]; ok {
		return &pq.Error{Code: "23505"}
	}
	if m.principals[principal.Role] == nil {
		m.principals[principal.Role] = map[string]*models.Principal{}
	}
	m.principals[principal.Role][principal.ID] = principal
	return nil
}

func (m *mockPrincipalRepo) UpdatePassword(ctx context.Context, role models.Role, id, passwordHash string) error {
	p, ok := m.principals[role][id]
	if !ok {
		return sql.ErrNoRows
	}
	p.PasswordHash = passwordHash
	return nil
}

type mockAuditRecorder struct {
	logs []*models.AuditLog
	err  error
}

func (m *mockAuditRecorder) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if m.err != nil {
		return m.err
	}
	m.logs = append(m.logs, log)
	return nil
}

func newTestAuthService(repo principalRepository, audit auditRecorder) *AuthService {
	return NewAuthService(repo, audit, nil, nil, nil, AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "course-portal-test",
		BcryptCost:        bcrypt.MinCost,
	})
}

func registerStudent(t *testing.T, svc *AuthService) {
	t.Helper()
	age := 20
	_, err := svc.RegisterStudent(context.Background(), models.RegisterStudentRequest{
		StudentID: "S001",
		Name:      "Alice",
		Password:  "password123",
		Age:       &age,
	})
	require.NoError(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newMockPrincipalRepo()
	audit := &mockAuditRecorder{}
	svc := newTestAuthService(repo, audit)
	registerStudent(t, svc)

	stored := repo.principals[models.RoleStudent]["S001"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "password123", stored.PasswordHash)

	resp, err := svc.Login(context.Background(), models.LoginRequest{ID: "S001", Password: "password123", Role: models.RoleStudent})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
	assert.Equal(t, "Alice", resp.User.Name)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "S001", claims.PrincipalID)
	assert.Equal(t, models.RoleStudent, claims.Role)

	require.Len(t, audit.logs, 2)
	assert.Equal(t, models.AuditActionRegister, audit.logs[0].Action)
	assert.Equal(t, models.AuditActionLogin, audit.logs[1].Action)
}

func TestRegisterDuplicateID(t *testing.T) {
	svc := newTestAuthService(newMockPrincipalRepo(), nil)
	registerStudent(t, svc)

	_, err := svc.RegisterStudent(context.Background(), models.RegisterStudentRequest{StudentID: "S001", Name: "Other", Password: "password123"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrDuplicateID)
}

func TestRegisterSameIDAcrossRoles(t *testing.T) {
	svc := newTestAuthService(newMockPrincipalRepo(), nil)
	registerStudent(t, svc)

	_, err := svc.RegisterTeacher(context.Background(), models.RegisterTeacherRequest{TeacherID: "S001", Name: "Teacher", Password: "password123"})
	assert.NoError(t, err)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService(newMockPrincipalRepo(), nil)
	negative := -1

	_, err := svc.RegisterStudent(context.Background(), models.RegisterStudentRequest{StudentID: "S002", Name: "Bob", Password: "password123", Age: &negative})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.RegisterAdmin(context.Background(), models.RegisterAdminRequest{AdminID: "A2", Name: "Root"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newTestAuthService(newMockPrincipalRepo(), nil)
	registerStudent(t, svc)

	_, unknownErr := svc.Login(context.Background(), models.LoginRequest{ID: "S404", Password: "password123", Role: models.RoleStudent})
	_, mismatchErr := svc.Login(context.Background(), models.LoginRequest{ID: "S001", Password: "wrong-password", Role: models.RoleStudent})

	require.Error(t, unknownErr)
	require.Error(t, mismatchErr)
	assert.Equal(t, appErrors.FromError(unknownErr), appErrors.FromError(mismatchErr))
	assert.Equal(t, "INVALID_CREDENTIALS", appErrors.FromError(unknownErr).Code)
}

func TestLoginWrongRoleNamespace(t *testing.T) {
	svc := newTestAuthService(newMockPrincipalRepo(), nil)
	registerStudent(t, svc)

	_, err := svc.Login(context.Background(), models.LoginRequest{ID: "S001", Password: "password123", Role: models.RoleTeacher})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestLoginStoreUnavailable(t *testing.T) {
	repo := newMockPrincipalRepo()
	repo.findErr = context.DeadlineExceeded
	svc := newTestAuthService(repo, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{ID: "S001", Password: "password123", Role: models.RoleStudent})
	assert.ErrorIs(t, err, appErrors.ErrStoreUnavailable)
}

func TestLoginAuditFailureIsIgnored(t *testing.T) {
	audit := &mockAuditRecorder{err: errors.New("audit down")}
	svc := newTestAuthService(newMockPrincipalRepo(), audit)
	registerStudent(t, svc)

	_, err := svc.Login(context.Background(), models.LoginRequest{ID: "S001", Password: "password123", Role: models.RoleStudent})
	assert.NoError(t, err)
}

func TestTokenLifecycle(t *testing.T) {
	svc := newTestAuthService(newMockPrincipalRepo(), nil)
	registerStudent(t, svc)

	issued := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	resp, err := svc.Login(context.Background(), models.LoginRequest{ID: "S001", Password: "password123", Role: models.RoleStudent})
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, err = svc.ValidateToken(resp.AccessToken)
	assert.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(61 * time.Minute) }
	_, err = svc.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, appErrors.ErrTokenExpired)
}

func TestTokenSignedWithOtherSecret(t *testing.T) {
	svc := newTestAuthService(newMockPrincipalRepo(), nil)
	claims := &models.JWTClaims{
		PrincipalID: "A1",
		Name:        "Mallory",
		Role:        models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "course-portal-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("another-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(forged)
	assert.ErrorIs(t, err, appErrors.ErrTokenInvalid)
}

func TestTokenDefects(t *testing.T) {
	svc := newTestAuthService(newMockPrincipalRepo(), nil)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &models.JWTClaims{
		PrincipalID:      "A1",
		Role:             models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{
		PrincipalID: "X",
		Role:        models.Role("root"),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "course-portal-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{
		PrincipalID:      "S1",
		Role:             models.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "course-portal-test"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":   "not.a.jwt",
		"alg none":  noneToken,
		"bad role":  badRole,
		"no expiry": noExpiry,
		"empty":     "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, appErrors.ErrTokenInvalid)
		})
	}
}

func TestResetPassword(t *testing.T) {
	repo := newMockPrincipalRepo()
	svc := newTestAuthService(repo, nil)
	_, err := svc.RegisterAdmin(context.Background(), models.RegisterAdminRequest{AdminID: "A001", Name: "Root", Password: "initial-pass"})
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(context.Background(), models.RoleAdmin, "A001", "rotated-pass"))

	_, err = svc.Login(context.Background(), models.LoginRequest{ID: "A001", Password: "initial-pass", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), models.LoginRequest{ID: "A001", Password: "rotated-pass", Role: models.RoleAdmin})
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.ResetPassword(context.Background(), models.RoleAdmin, "A404", "rotated-pass"), appErrors.ErrNotFound)
	assert.ErrorIs(t, svc.ResetPassword(context.Background(), models.RoleAdmin, "A001", "short"), appErrors.ErrValidation)
	assert.ErrorIs(t, svc.ResetPassword(context.Background(), models.Role("root"), "A001", "rotated-pass"), appErrors.ErrValidation)
}
