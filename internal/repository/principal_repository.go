package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-portal-api/internal/models"
)

type principalQueries struct {
	find   string
	insert string
	update string
}

var principalSQL = map[models.Role]principalQueries{
	models.RoleStudent: {
		find:   `SELECT student_id AS id, name, password_hash, gender, age FROM students WHERE student_id = $1 LIMIT 1`,
		insert: `INSERT INTO students (student_id, name, password_hash, gender, age) VALUES (:id, :name, :password_hash, :gender, :age)`,
		update: `UPDATE students SET password_hash = $2 WHERE student_id = $1`,
	},
	models.RoleTeacher: {
		find:   `SELECT teacher_id AS id, name, password_hash, age, title FROM teachers WHERE teacher_id = $1 LIMIT 1`,
		insert: `INSERT INTO teachers (teacher_id, name, password_hash, age, title) VALUES (:id, :name, :password_hash, :age, :title)`,
		update: `UPDATE teachers SET password_hash = $2 WHERE teacher_id = $1`,
	},
	models.RoleAdmin: {
		find:   `SELECT admin_id AS id, name, password_hash FROM administrators WHERE admin_id = $1 LIMIT 1`,
		insert: `INSERT INTO administrators (admin_id, name, password_hash) VALUES (:id, :name, :password_hash)`,
		update: `UPDATE administrators SET password_hash = $2 WHERE admin_id = $1`,
	},
}

// PrincipalRepository stores students, teachers and administrators, each in its own table.
type PrincipalRepository struct {
	db *sqlx.DB
}

// NewPrincipalRepository creates a new instance of PrincipalRepository.
func NewPrincipalRepository(db *sqlx.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

func queriesFor(role models.Role) (principalQueries, error) {
	q, ok := principalSQL[role]
	if !ok {
		return principalQueries{}, fmt.Errorf("unknown role %q", role)
	}
	return q, nil
}

// FindByID returns the principal with id inside the role's namespace, or sql.ErrNoRows.
func (r *PrincipalRepository) FindByID(ctx context.Context, role models.Role, id string) (*models.Principal, error) {
	q, err := queriesFor(role)
	if err != nil {
		return nil, err
	}
	var principal models.Principal
	if err := r.db.GetContext(ctx, &principal, q.find, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find %s by id: %w", role, err)
	}
	principal.Role = role
	return &principal, nil
}

// Create inserts a principal. A taken id surfaces as a unique violation.
func (r *PrincipalRepository) Create(ctx context.Context, principal *models.Principal) error {
	q, err := queriesFor(principal.Role)
	if err != nil {
		return err
	}
	if _, err := r.db.NamedExecContext(ctx, q.insert, principal); err != nil {
		return fmt.Errorf("create %s: %w", principal.Role, err)
	}
	return nil
}

// UpdatePassword replaces the stored hash, returning sql.ErrNoRows for unknown ids.
func (r *PrincipalRepository) UpdatePassword(ctx context.Context, role models.Role, id, passwordHash string) error {
	q, err := queriesFor(role)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, q.update, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update %s password: %w", role, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s password rows: %w", role, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
