package models

// Role identifies which principal namespace an identity belongs to.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// AllRoles is the allow-list for operations open to any authenticated principal.
var AllRoles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

// Principal is a stored identity. Gender and age apply to students, age and title to teachers.
type Principal struct {
	ID           string  `db:"id"`
	Name         string  `db:"name"`
	Role         Role    `db:"-"`
	PasswordHash string  `db:"password_hash"`
	Gender       *string `db:"gender"`
	Age          *int    `db:"age"`
	Title        *string `db:"title"`
}

// PrincipalInfo is the public-safe view of a principal returned to clients.
type PrincipalInfo struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Role   Role    `json:"role"`
	Gender *string `json:"gender,omitempty"`
	Age    *int    `json:"age,omitempty"`
	Title  *string `json:"title,omitempty"`
}

// Info strips credentials from the principal.
func (p *Principal) Info() PrincipalInfo {
	return PrincipalInfo{
		ID:     p.ID,
		Name:   p.Name,
		Role:   p.Role,
		Gender: p.Gender,
		Age:    p.Age,
		Title:  p.Title,
	}
}
