package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert course: %w", &pq.Error{Code: "23505"})
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsForeignKeyViolation(err))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestIsForeignKeyViolation(t *testing.T) {
	err := fmt.Errorf("insert selection: %w", &pq.Error{Code: "23503"})
	assert.True(t, IsForeignKeyViolation(err))
	assert.False(t, IsUniqueViolation(err))
}

func TestIsOutOfRange(t *testing.T) {
	assert.True(t, IsOutOfRange(fmt.Errorf("insert course: %w", &pq.Error{Code: "22003"})))
	assert.True(t, IsOutOfRange(&pq.Error{Code: "22001"}))
	assert.False(t, IsOutOfRange(&pq.Error{Code: "23505"}))
	assert.False(t, IsOutOfRange(errors.New("boom")))
}

func TestIsUnavailable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), true},
		{"bad conn", driver.ErrBadConn, true},
		{"connection class", &pq.Error{Code: "08006"}, true},
		{"constraint", &pq.Error{Code: "23505"}, false},
		{"plain", errors.New("syntax"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsUnavailable(tc.err))
		})
	}
}
