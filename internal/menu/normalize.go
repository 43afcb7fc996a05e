package menu

import (
	"encoding/json"
	"fmt"
	"strings"

	"caterpro-ai/internal/apperr"
)

const (
	defaultTitle       = "New Menu Proposal"
	defaultDescription = "A custom menu proposal crafted for your event."
)

// keyEntry pairs a canonical field name with the synonyms the model is
// known to emit. The first present key wins; order matters.
type keyEntry struct {
	canonical string
	synonyms  []string
}

var scalarKeys = []keyEntry{
	{"menuTitle", []string{"title", "name", "menuName"}},
	{"description", []string{"summary", "overview"}},
}

var stringListKeys = []keyEntry{
	{"appetizers", []string{"appetizer", "starters", "starter"}},
	{"mainCourses", []string{"mainCourse", "mains", "main", "entrees"}},
	{"sideDishes", []string{"sideDish", "sides", "side"}},
	{"dessert", []string{"desserts", "sweets"}},
	{"dietaryNotes", []string{"dietary", "dietNotes"}},
	{"miseEnPlace", []string{"misEnPlace", "prepList", "prep"}},
	{"serviceNotes", []string{"service", "serviceNote"}},
	{"deliveryLogistics", []string{"delivery", "logistics"}},
	{"safetyProtocols", []string{"safety", "foodSafety"}},
	{"aiKeywords", []string{"keywords", "seoKeywords"}},
}

var objectListKeys = []keyEntry{
	{"shoppingList", []string{"shopping", "ingredients"}},
	{"recommendedEquipment", []string{"equipment", "equipmentList"}},
	{"beveragePairings", []string{"beverages", "pairings", "drinkPairings"}},
	{"businessAnalysis", []string{"analysis", "businessInsights"}},
	{"salesScripts", []string{"salesScript", "marketingScripts"}},
}

// Normalize coerces a raw model response into a complete Menu. The
// input may be wrapped in Markdown code fences. Every known field of
// the result is defined; unknown fields are preserved in Extra.
func Normalize(raw string) (*Menu, error) {
	text := stripCodeFences(raw)
	if text == "" {
		return nil, apperr.NewInterrupted("empty model response")
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &root); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.NewInterrupted("model response is not a JSON object"), err)
	}

	m := &Menu{}
	consumed := make(map[string]struct{})

	for _, entry := range scalarKeys {
		value, key := resolveKey(root, entry)
		if key != "" {
			consumed[key] = struct{}{}
		}
		scalar := coerceString(value)
		switch entry.canonical {
		case "menuTitle":
			if scalar == "" {
				scalar = defaultTitle
				m.Partial = true
			}
			m.MenuTitle = scalar
		case "description":
			if scalar == "" {
				scalar = defaultDescription
				m.Partial = true
			}
			m.Description = scalar
		}
	}

	for _, entry := range stringListKeys {
		value, key := resolveKey(root, entry)
		if key != "" {
			consumed[key] = struct{}{}
		}
		*m.StringSection(entry.canonical) = coerceStringList(value)
	}

	for _, entry := range objectListKeys {
		value, key := resolveKey(root, entry)
		if key != "" {
			consumed[key] = struct{}{}
		}
		switch entry.canonical {
		case "shoppingList":
			m.ShoppingList = coerceObjectList[ShoppingItem](value)
		case "recommendedEquipment":
			m.RecommendedEquipment = coerceObjectList[Equipment](value)
		case "beveragePairings":
			m.BeveragePairings = coerceObjectList[BeveragePairing](value)
		case "businessAnalysis":
			m.BusinessAnalysis = coerceObjectList[BusinessInsight](value)
		case "salesScripts":
			m.SalesScripts = coerceObjectList[SalesScript](value)
		}
	}

	for key, value := range root {
		if _, ok := consumed[key]; ok {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]json.RawMessage)
		}
		m.Extra[key] = value
	}

	return m, nil
}

// resolveKey returns the value of the first present key, canonical
// first, then synonyms in declared order.
func resolveKey(root map[string]json.RawMessage, entry keyEntry) (json.RawMessage, string) {
	if value, ok := root[entry.canonical]; ok {
		return value, entry.canonical
	}
	for _, synonym := range entry.synonyms {
		if value, ok := root[synonym]; ok {
			return value, synonym
		}
	}
	return nil, ""
}

func coerceString(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}

// coerceStringList keeps string elements and stringifies scalar ones;
// null, objects, and nested arrays are dropped. Non-array values
// collapse to an empty list.
func coerceStringList(raw json.RawMessage) []string {
	out := []string{}
	if raw == nil {
		return out
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return out
	}

	for _, elem := range elems {
		var s string
		if err := json.Unmarshal(elem, &s); err == nil {
			out = append(out, s)
			continue
		}
		var scalar any
		if err := json.Unmarshal(elem, &scalar); err != nil || scalar == nil {
			continue
		}
		switch scalar.(type) {
		case float64, bool:
			out = append(out, fmt.Sprint(scalar))
		}
	}
	return out
}

// coerceObjectList decodes an array of objects, dropping elements that
// are null or not objects. Non-array values collapse to an empty list.
func coerceObjectList[T any](raw json.RawMessage) []T {
	out := []T{}
	if raw == nil {
		return out
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return out
	}

	for _, elem := range elems {
		if !isJSONObject(elem) {
			continue
		}
		var v T
		if err := json.Unmarshal(elem, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "{")
}

// stripCodeFences removes a surrounding Markdown code block, with or
// without a language tag.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
