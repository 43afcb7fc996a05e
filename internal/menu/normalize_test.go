package menu

import (
	"encoding/json"
	"testing"

	"caterpro-ai/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCompleteness(t *testing.T) {
	// Any subset of fields may be missing; every known field must
	// still come back defined with the right container type.
	m, err := Normalize(`{}`)
	require.NoError(t, err)

	assert.Equal(t, "New Menu Proposal", m.MenuTitle)
	assert.Equal(t, "A custom menu proposal crafted for your event.", m.Description)
	assert.True(t, m.Partial)

	for _, entry := range stringListKeys {
		list := m.StringSection(entry.canonical)
		require.NotNil(t, list, entry.canonical)
		assert.NotNil(t, *list, entry.canonical)
		assert.Empty(t, *list, entry.canonical)
	}
	assert.NotNil(t, m.ShoppingList)
	assert.NotNil(t, m.RecommendedEquipment)
	assert.NotNil(t, m.BeveragePairings)
	assert.NotNil(t, m.BusinessAnalysis)
	assert.NotNil(t, m.SalesScripts)
}

func TestNormalizeSynonymFallback(t *testing.T) {
	m, err := Normalize(`{"mains": ["X"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, m.MainCourses)

	// The canonical key always wins over a synonym.
	m, err = Normalize(`{"mainCourses": ["A"], "mains": ["B"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, m.MainCourses)
}

func TestNormalizeMalformedElementFiltering(t *testing.T) {
	raw := `{"shoppingList": [null, "a string", 42,
		{"name": "Flour", "quantity": "2kg", "category": "Dry goods"},
		{"name": "Butter"}]}`
	m, err := Normalize(raw)
	require.NoError(t, err)

	require.Len(t, m.ShoppingList, 2)
	assert.Equal(t, "Flour", m.ShoppingList[0].Name)
	assert.Equal(t, "2kg", m.ShoppingList[0].Quantity)
	assert.Equal(t, "Butter", m.ShoppingList[1].Name)
}

func TestNormalizeNonArrayCollapses(t *testing.T) {
	m, err := Normalize(`{"appetizers": "not a list", "beveragePairings": 7, "recommendedEquipment": null}`)
	require.NoError(t, err)
	assert.Empty(t, m.Appetizers)
	assert.Empty(t, m.BeveragePairings)
	assert.Empty(t, m.RecommendedEquipment)
}

func TestNormalizeIdempotence(t *testing.T) {
	first, err := Normalize(`{"menuTitle": "Harvest Dinner", "mains": ["Duck"],
		"shoppingList": [{"name": "Duck", "quantity": "4"}],
		"chefNotes": {"secret": true}}`)
	require.NoError(t, err)

	data, err := json.Marshal(first)
	require.NoError(t, err)

	second, err := Normalize(string(data))
	require.NoError(t, err)

	// Partial only flags the pass that inserted the default text; the
	// content itself must round-trip unchanged.
	first.Partial = false
	second.Partial = false
	assert.Equal(t, first, second)
}

func TestNormalizeUnknownFieldsPassThrough(t *testing.T) {
	m, err := Normalize(`{"plating": ["family style"], "menuTitle": "T"}`)
	require.NoError(t, err)
	require.Contains(t, m.Extra, "plating")

	data, err := json.Marshal(m)
	require.NoError(t, err)
	var round map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &round))
	assert.JSONEq(t, `["family style"]`, string(round["plating"]))
}

func TestNormalizeCodeFences(t *testing.T) {
	m, err := Normalize("```json\n{\"menuTitle\": \"Fenced\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Fenced", m.MenuTitle)

	m, err = Normalize("```\n{\"menuTitle\": \"Bare fence\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Bare fence", m.MenuTitle)
}

func TestNormalizeFailures(t *testing.T) {
	for name, input := range map[string]string{
		"Empty":      "",
		"Whitespace": "   \n ",
		"NotJSON":    "Sorry, I cannot help with that.",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(input)
			require.Error(t, err)
			state := apperr.Classify(err)
			assert.Equal(t, apperr.KindInterrupted, state.Kind)
		})
	}
}

func TestNormalizeScenario(t *testing.T) {
	m, err := Normalize(`{"mainCourse": ["Beef Wellington"], "sideDish": ["Haricots Verts"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beef Wellington"}, m.MainCourses)
	assert.Equal(t, []string{"Haricots Verts"}, m.SideDishes)
	assert.Empty(t, m.Appetizers)
	assert.Equal(t, "New Menu Proposal", m.MenuTitle)
}

func TestNormalizeStringifiesScalars(t *testing.T) {
	m, err := Normalize(`{"serviceNotes": ["Plated", 2, true, null, {"x":1}]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Plated", "2", "true"}, m.ServiceNotes)
}
