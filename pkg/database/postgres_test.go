package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/privacy-admin-api/pkg/config"
)

func TestDSNQuotesAwkwardValues(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "privacy",
		Password: `it's a secret\`,
		Name:     "privacy_admin",
	})

	assert.Equal(t, `host=db port=5432 user=privacy password='it\'s a secret\\' dbname=privacy_admin sslmode=disable application_name=privacy-admin-api connect_timeout=5`, dsn)
}

func TestDSNSkipsEmptyPassword(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "localhost", Port: 5433, User: "u", Name: "n", SSLMode: "require"})

	assert.NotContains(t, dsn, "password=")
	assert.Contains(t, dsn, "sslmode=require")
}
