package generate

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"
	"time"

	"caterpro-ai/internal/apperr"
	"caterpro-ai/internal/llm"
	"caterpro-ai/internal/menu"
	"caterpro-ai/internal/shared"
)

//go:embed menu_prompt.md
var menuPrompt string

//go:embed item_prompt.md
var itemPrompt string

//go:embed custom_item_prompt.md
var customItemPrompt string

// Request captures the event parameters for a menu generation.
type Request struct {
	EventType           string
	GuestCount          string
	BudgetLevel         string
	ServiceStyle        string
	Cuisine             string
	DietaryRestrictions []string
	Currency            string
	StrategyHook        string
}

// Result is a fully generated menu plus call metadata.
type Result struct {
	Menu *menu.Menu
	// TotalItems is the flattened count across all list sections,
	// used to size the preparation checklist.
	TotalItems int
	Meta       shared.OpMeta
}

// Generator turns event parameters into complete menu proposals.
type Generator struct {
	textGen llm.TextGenerator
	// itemGen serves the single-line calls; defaults to textGen.
	itemGen llm.TextGenerator
}

func NewGenerator(textGen llm.TextGenerator) *Generator {
	return &Generator{textGen: textGen, itemGen: textGen}
}

// WithItemGenerator routes the single-item operations to a lighter model.
func (g *Generator) WithItemGenerator(itemGen llm.TextGenerator) *Generator {
	g.itemGen = itemGen
	return g
}

// Generate issues one model call and normalizes the response into a Menu.
// Remote errors are returned raw so the caller can classify them at the
// display boundary.
func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	start := time.Now()

	prompt, err := buildMenuPrompt(req)
	if err != nil {
		return Result{}, err
	}

	resp, err := g.textGen.GenerateContent(ctx, llm.Request{
		Prompt:         prompt,
		ResponseSchema: menuSchema(),
		Temperature:    0.7,
	})
	if err != nil {
		return Result{}, err
	}

	meta := shared.OpMeta{
		Operation: "GenerateMenu",
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}

	m, err := menu.Normalize(resp.Content)
	if err != nil {
		return Result{Meta: meta}, err
	}

	return Result{
		Menu:       m,
		TotalItems: m.TotalChecklistItems(),
		Meta:       meta,
	}, nil
}

// RegenerateItem asks the model to rewrite a single menu line following a
// free-text instruction and returns the replacement text.
func (g *Generator) RegenerateItem(ctx context.Context, existing, instruction string) (string, shared.OpMeta, error) {
	data := struct {
		Existing    string
		Instruction string
	}{Existing: existing, Instruction: instruction}

	return g.generateLine(ctx, "item", itemPrompt, "RegenerateItem", data)
}

// GenerateCustomItem asks the model for one new item for the given menu
// section, phrased from a free-text description.
func (g *Generator) GenerateCustomItem(ctx context.Context, description, section string) (string, shared.OpMeta, error) {
	data := struct {
		Description string
		Section     string
	}{Description: description, Section: section}

	return g.generateLine(ctx, "customItem", customItemPrompt, "GenerateCustomItem", data)
}

func (g *Generator) generateLine(ctx context.Context, name, promptText, operation string, data any) (string, shared.OpMeta, error) {
	start := time.Now()

	prompt, err := buildPrompt(name, promptText, data)
	if err != nil {
		return "", shared.OpMeta{}, err
	}

	resp, err := g.itemGen.GenerateContent(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: 0.8,
	})
	meta := shared.OpMeta{
		Operation: operation,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		return "", meta, err
	}

	item := cleanItemText(resp.Content)
	if item == "" {
		return "", meta, apperr.NewInterrupted("empty replacement item")
	}
	return item, meta, nil
}

type menuPromptData struct {
	Request
	CuisineConstraint bool
	DietaryList       string
}

func buildMenuPrompt(req Request) (string, error) {
	data := menuPromptData{
		Request:           req,
		CuisineConstraint: req.Cuisine != "" && !strings.EqualFold(req.Cuisine, "any"),
		DietaryList:       strings.Join(req.DietaryRestrictions, ", "),
	}
	return buildPrompt("menu", menuPrompt, data)
}

func buildPrompt(name, promptText string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(promptText)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// cleanItemText reduces a single-line model answer to bare item text:
// first non-empty line, no bullets, labels, quotes or emphasis markers.
func cleanItemText(s string) string {
	line := ""
	for _, candidate := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			line = trimmed
			break
		}
	}

	line = strings.TrimLeft(line, "-*• \t")
	if idx := strings.Index(line, ":"); idx > 0 && idx < 20 {
		label := strings.ToLower(line[:idx])
		if label == "item" || label == "new item" || label == "replacement" || label == "answer" {
			line = line[idx+1:]
		}
	}
	line = strings.ReplaceAll(line, "**", "")
	line = strings.Trim(line, "`\"' ")

	return strings.TrimSpace(line)
}

func menuSchema() *llm.Schema {
	stringField := &llm.Schema{Type: llm.TypeString}

	return llm.ObjectSchema(map[string]*llm.Schema{
		"menuTitle":         {Type: llm.TypeString, Description: "Creative name for the menu proposal"},
		"description":       {Type: llm.TypeString, Description: "Short client-facing summary"},
		"appetizers":        llm.StringArraySchema("Appetizer dishes"),
		"mainCourses":       llm.StringArraySchema("Main course dishes"),
		"sideDishes":        llm.StringArraySchema("Side dishes"),
		"dessert":           llm.StringArraySchema("Dessert options"),
		"dietaryNotes":      llm.StringArraySchema("How the dietary restrictions are honored"),
		"miseEnPlace":       llm.StringArraySchema("Preparation steps before service"),
		"serviceNotes":      llm.StringArraySchema("Notes for staff during service"),
		"deliveryLogistics": llm.StringArraySchema("Transport and delivery plan"),
		"safetyProtocols":   llm.StringArraySchema("Food safety protocols"),
		"aiKeywords":        llm.StringArraySchema("Marketing keywords for this menu"),
		"shoppingList": llm.ObjectArraySchema("Ingredients to purchase", map[string]*llm.Schema{
			"name":     stringField,
			"quantity": stringField,
			"category": stringField,
			"store":    stringField,
			"cost":     stringField,
		}),
		"recommendedEquipment": llm.ObjectArraySchema("Equipment needed for the event", map[string]*llm.Schema{
			"name":        stringField,
			"description": stringField,
		}),
		"beveragePairings": llm.ObjectArraySchema("Beverage suggestions per menu item", map[string]*llm.Schema{
			"menuItem":   stringField,
			"suggestion": stringField,
		}),
		"businessAnalysis": llm.ObjectArraySchema("Profitability analysis per dish", map[string]*llm.Schema{
			"name":                stringField,
			"category":            stringField,
			"profitMargin":        {Type: llm.TypeString, Description: "e.g. High, Medium, Low"},
			"popularityPotential": {Type: llm.TypeString, Description: "e.g. High, Medium, Low"},
			"description":         stringField,
		}),
		"salesScripts": llm.ObjectArraySchema("Short upselling scripts", map[string]*llm.Schema{
			"title":  stringField,
			"script": stringField,
		}),
	}, "menuTitle", "description", "appetizers", "mainCourses", "sideDishes", "dessert")
}
