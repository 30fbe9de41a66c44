package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"stylelab-server/modules/common/model"
)

//go:embed styles.yaml
var defaultStyles []byte

// Catalog - 읽기 전용 스타일 카탈로그
type Catalog struct {
	styles []model.Style
	byID   map[string]int
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(defaultStyles)
}

// Parse builds a catalog from YAML, rejecting duplicate or empty ids.
func Parse(data []byte) (*Catalog, error) {
	var styles []model.Style
	if err := yaml.Unmarshal(data, &styles); err != nil {
		return nil, fmt.Errorf("parse style catalog: %w", err)
	}

	c := &Catalog{styles: styles, byID: make(map[string]int, len(styles))}
	for i, s := range styles {
		if s.ID == "" {
			return nil, fmt.Errorf("style #%d has no id", i)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate style id %q", s.ID)
		}
		c.byID[s.ID] = i
	}
	return c, nil
}

// GetByID returns a copy of the style.
func (c *Catalog) GetByID(id string) (*model.Style, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	s := c.styles[i]
	return &s, true
}

func (c *Catalog) All() []model.Style {
	out := make([]model.Style, len(c.styles))
	copy(out, c.styles)
	return out
}

// Search matches name, category, tags and prompt template, case-insensitively.
func (c *Catalog) Search(query string) []model.Style {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.All()
	}

	out := []model.Style{}
	for _, s := range c.styles {
		if matches(s, q) {
			out = append(out, s)
		}
	}
	return out
}

func matches(s model.Style, q string) bool {
	if strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.Category), q) ||
		strings.Contains(strings.ToLower(s.PromptTemplate), q) {
		return true
	}
	for _, tag := range s.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// FilterCategory keeps styles in category; "" and "All" keep everything.
func FilterCategory(styles []model.Style, category string) []model.Style {
	if category == "" || category == "All" {
		return styles
	}
	out := []model.Style{}
	for _, s := range styles {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// Paginate slices with bounds clamping.
func Paginate(styles []model.Style, offset, limit int) []model.Style {
	if offset >= len(styles) || limit <= 0 {
		return []model.Style{}
	}
	end := len(styles)
	if limit < end-offset {
		end = offset + limit
	}
	return styles[offset:end]
}
