package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByName(t *testing.T) {
	catalog := Load()

	got, category, ok := catalog.FindByName("CSP Core")
	require.True(t, ok)
	assert.Equal(t, "D365 CSP Core", got.Name)
	assert.Equal(t, CategoryCSPTransaction, category)

	got, category, ok = catalog.FindByName("erp envisioning workshop")
	require.True(t, ok)
	assert.Equal(t, CategoryWorkshop, category)
	assert.Contains(t, got.Blockers, "country")

	_, _, ok = catalog.FindByName("no such engagement")
	assert.False(t, ok)

	_, _, ok = catalog.FindByName("")
	assert.False(t, ok)
}

func TestApplyMarketRate(t *testing.T) {
	catalog := Load()
	workshop, _, ok := catalog.FindByName("ERP Envisioning Workshop")
	require.True(t, ok)

	patched := ApplyMarketRate(workshop, 163)

	var rateField *FormField
	for i := range patched.FormFields {
		if patched.FormFields[i].FieldName == "market_rate" {
			rateField = &patched.FormFields[i]
		}
	}
	require.NotNil(t, rateField)
	assert.Equal(t, float64(163), rateField.Value)
	assert.NotContains(t, patched.Blockers, "country")

	// The catalog entry itself must stay untouched.
	fresh, _, _ := catalog.FindByName("ERP Envisioning Workshop")
	assert.Len(t, fresh.FormFields, 2)
	assert.Contains(t, fresh.Blockers, "country")

	// Applying twice updates in place instead of duplicating the field.
	again := ApplyMarketRate(patched, 116)
	count := 0
	for _, f := range again.FormFields {
		if f.FieldName == "market_rate" {
			count++
			assert.Equal(t, float64(116), f.Value)
		}
	}
	assert.Equal(t, 1, count)
}
