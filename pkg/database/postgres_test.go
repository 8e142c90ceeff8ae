package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deep-platform/deep-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "deep", Password: "secret", Name: "deep", SSLMode: "require"})
	assert.Equal(t, "host=db port=5433 user=deep password=secret dbname=deep sslmode=require", dsn)
}
