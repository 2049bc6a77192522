package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/spent/internal/model"
)

func TestSetupTestDB(t *testing.T) {
	db := SetupTestDB(t, NewExpenseBuilder("alice").
		With("12.50", model.CategoryFood, "2024-03-15").
		With("40", model.CategoryTransport, "2024-03-16").
		ForUser("bob").
		With("3", model.CategoryOther, "2024-03-16").
		Build())

	assert.Equal(t, 2, db.Count("alice"))
	assert.Equal(t, 1, db.Count("bob"))

	got := db.MustGet("exp-003")
	assert.Equal(t, "bob", got.UserID)
	assert.Equal(t, "other #3", got.Description)
}
