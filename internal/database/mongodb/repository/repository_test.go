package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsDuplicateKey(t *testing.T) {
	duplicateError := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
	assert.True(t, IsDuplicateKey(duplicateError))
	assert.True(t, IsDuplicateKey(fmt.Errorf("insert failed: %w", duplicateError)))

	assert.False(t, IsDuplicateKey(errors.New("connection reset")))
	assert.False(t, IsDuplicateKey(nil))
}
