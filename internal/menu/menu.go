package menu

import (
	"encoding/json"
	"fmt"
	"time"
)

// ShoppingItem is one purchasable entry on the consolidated list.
type ShoppingItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Category string `json:"category"`
	Store    string `json:"store"`
	Cost     string `json:"cost"`
}

// Equipment is a recommended piece of service or kitchen equipment.
type Equipment struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BeveragePairing suggests a drink for a specific menu item.
type BeveragePairing struct {
	MenuItem   string `json:"menuItem"`
	Suggestion string `json:"suggestion"`
}

// BusinessInsight is a per-dish commercial assessment.
type BusinessInsight struct {
	Name                string `json:"name"`
	Category            string `json:"category"`
	ProfitMargin        string `json:"profitMargin"`
	PopularityPotential string `json:"popularityPotential"`
	Description         string `json:"description"`
}

// SalesScript is a ready-to-use piece of marketing copy.
type SalesScript struct {
	Title  string `json:"title"`
	Script string `json:"script"`
}

// Menu is a fully populated catering proposal. After normalization
// every field is defined: list fields are non-nil slices (possibly
// empty) and scalar fields are never blank.
type Menu struct {
	MenuTitle   string `json:"menuTitle"`
	Description string `json:"description"`

	Appetizers        []string `json:"appetizers"`
	MainCourses       []string `json:"mainCourses"`
	SideDishes        []string `json:"sideDishes"`
	Dessert           []string `json:"dessert"`
	DietaryNotes      []string `json:"dietaryNotes"`
	MiseEnPlace       []string `json:"miseEnPlace"`
	ServiceNotes      []string `json:"serviceNotes"`
	DeliveryLogistics []string `json:"deliveryLogistics"`
	SafetyProtocols   []string `json:"safetyProtocols"`
	AIKeywords        []string `json:"aiKeywords"`

	ShoppingList         []ShoppingItem    `json:"shoppingList"`
	RecommendedEquipment []Equipment       `json:"recommendedEquipment"`
	BeveragePairings     []BeveragePairing `json:"beveragePairings"`
	BusinessAnalysis     []BusinessInsight `json:"businessAnalysis"`
	SalesScripts         []SalesScript     `json:"salesScripts"`

	// Extra carries unknown top-level fields from the model unmodified.
	Extra map[string]json.RawMessage `json:"-"`

	// Partial is set when a scalar field had to fall back to its
	// default. The defaults are kept for display either way.
	Partial bool `json:"-"`
}

// SavedMenu wraps a Menu persisted by the user.
type SavedMenu struct {
	ID      int64     `json:"id"`
	Title   string    `json:"title"`
	Content Menu      `json:"content"`
	SavedAt time.Time `json:"savedAt"`
}

// MarshalJSON re-emits unknown fields alongside the known ones so that
// normalization round-trips without loss.
func (m Menu) MarshalJSON() ([]byte, error) {
	type alias Menu
	base, err := json.Marshal(alias(m))
	if err != nil {
		return nil, err
	}
	if len(m.Extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for key, value := range m.Extra {
		if _, known := merged[key]; !known {
			merged[key] = value
		}
	}
	return json.Marshal(merged)
}

// StringSection returns the string-list section addressed by its
// canonical key, or nil if the key does not name one.
func (m *Menu) StringSection(key string) *[]string {
	switch key {
	case "appetizers":
		return &m.Appetizers
	case "mainCourses":
		return &m.MainCourses
	case "sideDishes":
		return &m.SideDishes
	case "dessert":
		return &m.Dessert
	case "dietaryNotes":
		return &m.DietaryNotes
	case "miseEnPlace":
		return &m.MiseEnPlace
	case "serviceNotes":
		return &m.ServiceNotes
	case "deliveryLogistics":
		return &m.DeliveryLogistics
	case "safetyProtocols":
		return &m.SafetyProtocols
	case "aiKeywords":
		return &m.AIKeywords
	}
	return nil
}

// ReplaceItem swaps one entry of a string section by index.
func (m *Menu) ReplaceItem(section string, index int, item string) error {
	list := m.StringSection(section)
	if list == nil {
		return fmt.Errorf("unknown menu section %q", section)
	}
	if index < 0 || index >= len(*list) {
		return fmt.Errorf("index %d out of range for section %q", index, section)
	}
	(*list)[index] = item
	return nil
}

// InsertItem appends a new entry to a string section.
func (m *Menu) InsertItem(section string, item string) error {
	list := m.StringSection(section)
	if list == nil {
		return fmt.Errorf("unknown menu section %q", section)
	}
	*list = append(*list, item)
	return nil
}

// SetShoppingQuantity updates the quantity of one shopping-list entry.
func (m *Menu) SetShoppingQuantity(index int, quantity string) error {
	if index < 0 || index >= len(m.ShoppingList) {
		return fmt.Errorf("shopping list index %d out of range", index)
	}
	m.ShoppingList[index].Quantity = quantity
	return nil
}

// TotalChecklistItems is the flattened entry count across every
// list-type section.
func (m *Menu) TotalChecklistItems() int {
	total := len(m.Appetizers) + len(m.MainCourses) + len(m.SideDishes) +
		len(m.Dessert) + len(m.DietaryNotes) + len(m.MiseEnPlace) +
		len(m.ServiceNotes) + len(m.DeliveryLogistics) + len(m.SafetyProtocols) +
		len(m.AIKeywords)
	total += len(m.ShoppingList) + len(m.RecommendedEquipment) +
		len(m.BeveragePairings) + len(m.BusinessAnalysis) + len(m.SalesScripts)
	return total
}
