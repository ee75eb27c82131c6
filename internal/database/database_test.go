package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect_NotConfigured(t *testing.T) {
	db, err := Connect("")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, db)
}
