// Package catalog loads the static list of asset categories the batch job
// tracks.
package catalog

import (
    "errors"
    "fmt"
    "os"
    "strings"

    "gopkg.in/yaml.v3"
)

// Asset is one tracked instrument.
type Asset struct {
    Symbol string `json:"symbol" yaml:"symbol"`
    Name   string `json:"name" yaml:"name"`
    Unit   string `json:"unit" yaml:"unit"`
    Icon   string `json:"icon" yaml:"icon"`
    Source string `json:"source" yaml:"source"`
    // Alternates are tried in order after Symbol when it yields no data.
    Alternates []string `json:"alternates,omitempty" yaml:"alternates,omitempty"`
    // Category is filled from the enclosing category on load.
    Category string `json:"-" yaml:"-"`
}

// Candidates returns Symbol followed by its alternates, without duplicates.
func (a Asset) Candidates() []string {
    out := []string{a.Symbol}
    seen := map[string]struct{}{a.Symbol: {}}
    for _, s := range a.Alternates {
        s = strings.TrimSpace(s)
        if s == "" { continue }
        if _, dup := seen[s]; dup { continue }
        seen[s] = struct{}{}
        out = append(out, s)
    }
    return out
}

type Category struct {
    ID     string  `json:"id" yaml:"id"`
    Name   string  `json:"name" yaml:"name"`
    Assets []Asset `json:"assets" yaml:"assets"`
}

type Catalog struct {
    Categories []Category `json:"categories" yaml:"categories"`
}

// Len is the number of assets across all categories.
func (c *Catalog) Len() int {
    n := 0
    for _, cat := range c.Categories { n += len(cat.Assets) }
    return n
}

// Load reads a catalog file. YAML is a superset of JSON, so config.json
// files parse unchanged.
func Load(path string) (*Catalog, error) {
    b, err := os.ReadFile(path)
    if err != nil {
        return nil, fmt.Errorf("read catalog: %w", err)
    }
    return Parse(b)
}

func Parse(b []byte) (*Catalog, error) {
    var c Catalog
    if err := yaml.Unmarshal(b, &c); err != nil {
        return nil, fmt.Errorf("parse catalog: %w", err)
    }
    if err := c.normalize(); err != nil {
        return nil, err
    }
    return &c, nil
}

func (c *Catalog) normalize() error {
    if len(c.Categories) == 0 {
        return errors.New("catalog: no categories")
    }
    for i := range c.Categories {
        cat := &c.Categories[i]
        if strings.TrimSpace(cat.ID) == "" {
            return fmt.Errorf("catalog: category %d has no id", i)
        }
        for j := range cat.Assets {
            a := &cat.Assets[j]
            if strings.TrimSpace(a.Symbol) == "" {
                return fmt.Errorf("catalog: category %q asset %d has no symbol", cat.ID, j)
            }
            a.Source = strings.TrimSpace(a.Source)
            a.Category = cat.ID
        }
    }
    return nil
}
