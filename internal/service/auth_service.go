package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/pkg/database"
	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
)

const (
	tokenTypeBearer        = "Bearer"
	minResetPasswordLength = 8
)

type principalRepository interface {
	FindByID(ctx context.Context, role models.Role, id string) (*models.Principal, error)
	Create(ctx context.Context, principal *models.Principal) error
	UpdatePassword(ctx context.Context, role models.Role, id, passwordHash string) error
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	BcryptCost        int
}

// AuthService registers principals and issues and verifies session tokens.
type AuthService struct {
	repo      principalRepository
	audit     auditRecorder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
	dummyHash []byte
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo principalRepository, audit auditRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = time.Hour
	}
	if config.BcryptCost < bcrypt.MinCost || config.BcryptCost > bcrypt.MaxCost {
		config.BcryptCost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("course-portal:unknown-principal"), config.BcryptCost)
	if err != nil {
		logger.Warn("failed to prepare dummy password hash", zap.Error(err))
	}
	return &AuthService{
		repo:      repo,
		audit:     audit,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       time.Now,
		dummyHash: dummy,
	}
}

// HashPassword hashes a clear-text password with the configured cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// RegisterStudent creates a student account.
func (s *AuthService) RegisterStudent(ctx context.Context, req models.RegisterStudentRequest) (*models.PrincipalInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err, "invalid student registration payload")
	}
	return s.register(ctx, req.Principal(), req.Password)
}

// RegisterTeacher creates a teacher account.
func (s *AuthService) RegisterTeacher(ctx context.Context, req models.RegisterTeacherRequest) (*models.PrincipalInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err, "invalid teacher registration payload")
	}
	return s.register(ctx, req.Principal(), req.Password)
}

// RegisterAdmin creates an administrator account. Callers must already be admins.
func (s *AuthService) RegisterAdmin(ctx context.Context, req models.RegisterAdminRequest) (*models.PrincipalInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err, "invalid admin registration payload")
	}
	return s.register(ctx, req.Principal(), req.Password)
}

func (s *AuthService) register(ctx context.Context, principal *models.Principal, password string) (*models.PrincipalInfo, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	principal.PasswordHash = hash

	if err := s.repo.Create(ctx, principal); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateID, string(principal.Role)+" id already registered")
		}
		return nil, storeFailure(err, "failed to register "+string(principal.Role))
	}

	s.logger.Info("principal registered", zap.String("role", string(principal.Role)), zap.String("id", principal.ID))
	s.record(ctx, &models.AuditLog{
		ActorID:    &principal.ID,
		ActorRole:  roleRef(principal.Role),
		Action:     models.AuditActionRegister,
		Resource:   "auth",
		ResourceID: &principal.ID,
	})

	info := principal.Info()
	return &info, nil
}

// ResetPassword replaces the password of an existing principal.
func (s *AuthService) ResetPassword(ctx context.Context, role models.Role, id, password string) error {
	if !role.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	if len(password) < minResetPasswordLength || len(password) > 72 {
		return appErrors.Clone(appErrors.ErrValidation, "password must be between 8 and 72 characters")
	}
	hash, err := s.HashPassword(password)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, role, id, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, string(role)+" not found")
		}
		return storeFailure(err, "failed to reset password")
	}
	s.logger.Info("password reset", zap.String("role", string(role)), zap.String("id", id))
	return nil
}

// Login authenticates a principal of req.Role and returns a session token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailure(err, "invalid login payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}

	principal, err := s.repo.FindByID(ctx, req.Role, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Same bcrypt work as a real mismatch.
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
			s.metrics.RecordLogin(req.Role, false)
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, storeFailure(err, "failed to fetch principal")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.RecordLogin(req.Role, false)
		return nil, appErrors.ErrInvalidCredentials
	}

	accessToken, issuedAt, err := s.generateAccessToken(principal)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.metrics.RecordLogin(req.Role, true)
	s.record(ctx, &models.AuditLog{
		ActorID:    &principal.ID,
		ActorRole:  roleRef(principal.Role),
		Action:     models.AuditActionLogin,
		Resource:   "auth",
		ResourceID: &principal.ID,
		IPAddress:  req.IP,
		UserAgent:  req.UserAgent,
	})

	return &models.LoginResponse{
		AccessToken: accessToken,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		User:        principal.Info(),
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
// Expiry is reported separately from every other defect.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.AccessTokenSecret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.Wrap(err, appErrors.ErrTokenExpired.Code, appErrors.ErrTokenExpired.Status, appErrors.ErrTokenExpired.Message)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrTokenInvalid.Code, appErrors.ErrTokenInvalid.Status, appErrors.ErrTokenInvalid.Message)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.PrincipalID == "" || !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrTokenInvalid, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(principal *models.Principal) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		PrincipalID: principal.ID,
		Name:        principal.Name,
		Role:        principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   principal.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, issuedAt, nil
}

func (s *AuthService) record(ctx context.Context, entry *models.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", entry.Action), zap.Error(err))
	}
}

func roleRef(role models.Role) *string {
	r := string(role)
	return &r
}
