package memory

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Variant is a purchasable product variant known to the sandbox backend.
type Variant struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Price string `yaml:"price" json:"price"`
}

// CatalogFile represents the structure of catalog.yaml
type CatalogFile struct {
	Variants []Variant `yaml:"variants" json:"variants"`
}

// Catalog maps variant IDs to variants.
type Catalog map[string]Variant

// LoadCatalog reads a catalog file (YAML or JSON). A missing file yields an
// empty catalog, which makes the backend accept any variant at price zero.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return Catalog{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Catalog{}, nil
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file CatalogFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse catalog json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
		}
	}

	catalog := make(Catalog, len(file.Variants))
	for _, v := range file.Variants {
		if v.ID == "" {
			continue
		}
		if _, err := parseCents(v.Price); err != nil {
			return nil, fmt.Errorf("variant %q: %w", v.ID, err)
		}
		catalog[v.ID] = v
	}
	return catalog, nil
}

func parseCents(price string) (int64, error) {
	if price == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(price, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid price %q", price)
	}
	return int64(math.Round(f * 100)), nil
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
