package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spent/internal/model"
)

func TestDraft_Validate(t *testing.T) {
	valid := Draft{Amount: "$1,250.50", Description: " rent share ", Category: "Bills", Date: "2024-03-01"}

	v, errs := valid.Validate()
	require.Nil(t, errs)
	assert.True(t, v.Amount.Equal(decimal.RequireFromString("1250.50")))
	assert.Equal(t, "rent share", v.Description)
	assert.Equal(t, model.CategoryBills, v.Category)
	assert.Equal(t, march1, v.Date)
	assert.True(t, valid.CanSave())

	tests := []struct {
		name   string
		draft  Draft
		fields []FormField
	}{
		{name: "empty amount", draft: Draft{Description: "x", Date: "2024-03-01"}, fields: []FormField{FormAmount}},
		{name: "negative amount", draft: Draft{Amount: "-4", Description: "x", Date: "2024-03-01"}, fields: []FormField{FormAmount}},
		{name: "garbage amount", draft: Draft{Amount: "ten", Description: "x", Date: "2024-03-01"}, fields: []FormField{FormAmount}},
		{name: "blank description", draft: Draft{Amount: "4", Description: " ", Date: "2024-03-01"}, fields: []FormField{FormDescription}},
		{name: "bad date", draft: Draft{Amount: "4", Description: "x", Date: "03/01/2024"}, fields: []FormField{FormDate}},
		{name: "everything", draft: Draft{}, fields: []FormField{FormAmount, FormDescription, FormDate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := tt.draft.Validate()
			require.NotNil(t, errs)
			assert.Equal(t, tt.fields, errs.Fields())
			assert.False(t, tt.draft.CanSave())
		})
	}
}

func TestDraft_UnknownCategoryNormalizes(t *testing.T) {
	v, errs := Draft{Amount: "4", Description: "x", Category: "pets", Date: "2024-03-01"}.Validate()
	require.Nil(t, errs)
	assert.Equal(t, model.CategoryOther, v.Category)
}

func TestDraft_FocusField(t *testing.T) {
	tests := []struct {
		name  string
		want  FormField
		draft Draft
	}{
		{
			name:  "flagged amount first",
			draft: Draft{Required: []model.Field{model.FieldDescription, model.FieldAmount}, Date: "2024-03-01"},
			want:  FormAmount,
		},
		{
			name:  "flagged description",
			draft: Draft{Amount: "5", Required: []model.Field{model.FieldDescription}, Date: "2024-03-01"},
			want:  FormDescription,
		},
		{
			name:  "unflagged invalid date",
			draft: Draft{Amount: "5", Description: "x", Date: "soon"},
			want:  FormDate,
		},
		{
			name:  "valid",
			draft: Draft{Amount: "5", Description: "x", Date: "2024-03-01", Required: []model.Field{model.FieldDescription}},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.draft.FocusField())
		})
	}
}

func TestDraftFromResult(t *testing.T) {
	today := time.Date(2024, 5, 9, 18, 0, 0, 0, time.UTC)
	r := model.ExtractionResult{
		Amount:      dec("-2"),
		Description: str("  snacks "),
		Category:    "weird",
	}

	d := DraftFromResult(r, []model.Field{model.FieldAmount}, "snacks", today)
	assert.Equal(t, "", d.Amount, "non-positive amounts are not pre-filled")
	assert.Equal(t, "snacks", d.Description)
	assert.Equal(t, "other", d.Category)
	assert.Equal(t, "2024-05-09", d.Date)
	assert.Equal(t, "snacks", d.RawInput)
	assert.True(t, d.IsRequired(FormAmount))
	assert.False(t, d.IsRequired(FormDate))
}

func TestDraft_ValueAndSet(t *testing.T) {
	var d Draft
	for _, f := range FormFields() {
		d.Set(f, string(f)+"-value")
	}
	for _, f := range FormFields() {
		assert.Equal(t, string(f)+"-value", d.Value(f))
	}
}

func TestFieldErrors_Error(t *testing.T) {
	errs := FieldErrors{FormDate: "use YYYY-MM-DD", FormAmount: "bad"}
	assert.Equal(t, "invalid expense: amount: bad; date: use YYYY-MM-DD", errs.Error())
}
