package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDBName(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		db   string
		want string
	}{
		{"replaces path", "postgres://u:p@host:5432/postgres?sslmode=disable", "loopline", "postgres://u:p@host:5432/loopline?sslmode=disable"},
		{"leading slash kept single", "postgresql://host/old", "/new", "postgresql://host/new"},
		{"missing scheme", "u@host:5432/old", "loopline", "postgres://u@host:5432/loopline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WithDBName(tt.dsn, tt.db)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithDBName_Rejects(t *testing.T) {
	_, err := WithDBName("", "x")
	assert.Error(t, err)
	_, err = WithDBName("mysql://host/db", "x")
	assert.Error(t, err)
}

func TestOpen_DoesNotConnect(t *testing.T) {
	// sql.Open only validates the driver name; no server is needed.
	db, err := Open("postgres://nobody@127.0.0.1:1/none")
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}
