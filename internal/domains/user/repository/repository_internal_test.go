package repository

import (
	"hostel/internal/domains/user/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginKey(t *testing.T) {
	assert.Equal(t, "meera", loginKey("  Meera "))
	assert.Equal(t, "meera@example.com", loginKey("Meera@Example.com"))
}

func TestByID(t *testing.T) {
	filter := byID("0d9c8b7a-6f5e-4d3c-8b2a-190817161514")
	where, args := filter.GetWhereClause()

	assert.Contains(t, where, model.TableName+"."+model.FieldID)
	assert.Equal(t, "0d9c8b7a-6f5e-4d3c-8b2a-190817161514", args[model.FieldID])
}

func TestByLogin(t *testing.T) {
	filter := byLogin(" Meera ")
	where, args := filter.GetWhereClause()

	assert.Contains(t, where, " OR ")
	assert.Equal(t, "meera", args[model.FieldUsername])
	assert.Equal(t, "meera", args[model.FieldEmail])
}
