package suppliers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"caterpro-ai/internal/llm"

	"github.com/PuerkitoBio/goquery"
)

// Supplier is a sourcing option extracted from a supplier directory page.
type Supplier struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Location   string   `json:"location"`
	Contact    string   `json:"contact"`
	Specialty  string   `json:"specialty"`
	Ingredient []string `json:"ingredients"`
}

// Finder looks up suppliers for shopping-list ingredients by scraping a
// directory page and asking the model to match suppliers to ingredients.
type Finder struct {
	textGen      llm.TextGenerator
	directoryURL string
	httpClient   *http.Client
}

func NewFinder(textGen llm.TextGenerator, directoryURL string) *Finder {
	return &Finder{
		textGen:      textGen,
		directoryURL: directoryURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Find fetches the directory, strips it to plain text and asks the model
// which suppliers can source the given ingredients.
func (f *Finder) Find(ctx context.Context, ingredients []string) ([]Supplier, error) {
	content, err := f.fetchAndCleanHTML(ctx, f.directoryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier directory: %w", err)
	}

	prompt := fmt.Sprintf(`
You are a catering procurement expert. The text below comes from a supplier directory page.
Match suppliers to the ingredients the caterer needs to source.

Ingredients needed:
%s

Return strictly a JSON object with this structure:
{
  "suppliers": [
    {
      "name": "Supplier name",
      "category": "e.g. Produce, Meat, Dairy",
      "location": "City or area if listed",
      "contact": "Phone, email or website if listed",
      "specialty": "One line on what they are good for",
      "ingredients": ["which of the needed ingredients they can supply"]
    }
  ]
}
Only include suppliers that appear in the directory text. If none match, return an empty list.

Directory content:
%s
`, "- "+strings.Join(ingredients, "\n- "), content)

	resp, err := f.textGen.GenerateContent(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("supplier extraction failed: %w", err)
	}

	var extracted struct {
		Suppliers []Supplier `json:"suppliers"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(resp.Content)), &extracted); err != nil {
		return nil, fmt.Errorf("failed to parse supplier response: %w", err)
	}
	return extracted.Suppliers, nil
}

func (f *Finder) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
