package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a principal of a given role.
type LoginRequest struct {
	ID        string `json:"id" validate:"required,max=64"`
	Password  string `json:"password" validate:"required"`
	Role      Role   `json:"-"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued token and principal info.
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	IssuedAt    time.Time     `json:"issued_at"`
	User        PrincipalInfo `json:"user"`
}

// RegisterStudentRequest payload for student sign-up.
type RegisterStudentRequest struct {
	StudentID string  `json:"student_id" validate:"required,max=64"`
	Name      string  `json:"name" validate:"required,max=255"`
	Password  string  `json:"password" validate:"required,min=6,max=72"`
	Gender    *string `json:"gender" validate:"omitempty,max=16"`
	Age       *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
}

// Principal converts the payload into a stored principal without a hash.
func (r RegisterStudentRequest) Principal() *Principal {
	return &Principal{ID: r.StudentID, Name: r.Name, Role: RoleStudent, Gender: r.Gender, Age: r.Age}
}

// RegisterTeacherRequest payload for teacher sign-up.
type RegisterTeacherRequest struct {
	TeacherID string  `json:"teacher_id" validate:"required,max=64"`
	Name      string  `json:"name" validate:"required,max=255"`
	Password  string  `json:"password" validate:"required,min=6,max=72"`
	Age       *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Title     *string `json:"title" validate:"omitempty,max=128"`
}

func (r RegisterTeacherRequest) Principal() *Principal {
	return &Principal{ID: r.TeacherID, Name: r.Name, Role: RoleTeacher, Age: r.Age, Title: r.Title}
}

// RegisterAdminRequest payload for creating another administrator.
type RegisterAdminRequest struct {
	AdminID  string `json:"admin_id" validate:"required,max=64"`
	Name     string `json:"name" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (r RegisterAdminRequest) Principal() *Principal {
	return &Principal{ID: r.AdminID, Name: r.Name, Role: RoleAdmin}
}

// JWTClaims represents the session token payload.
type JWTClaims struct {
	PrincipalID string `json:"id"`
	Name        string `json:"name"`
	Role        Role   `json:"role"`
	jwt.RegisteredClaims
}

// Info returns the identity carried by the claims.
func (c *JWTClaims) Info() PrincipalInfo {
	return PrincipalInfo{ID: c.PrincipalID, Name: c.Name, Role: c.Role}
}
