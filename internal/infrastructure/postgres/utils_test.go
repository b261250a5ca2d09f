package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ana", "%ana%"},
		{"50%", `%50\%%`},
		{"a_b", `%a\_b%`},
		{`c:\x`, `%c:\\x%`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, likePattern(tt.in))
	}
}

func TestViolations(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := fmt.Errorf("delete: %w", &pgconn.PgError{Code: "23503"})

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isUniqueViolation(fk))
	assert.True(t, isForeignKeyViolation(fk))
	assert.False(t, isForeignKeyViolation(errors.New("23503")))
}
