// Package catalogs loads the host catalogs the remap tables are derived from:
// the labs material registry and the cable, fluid-pipe and item-pipe types.
package catalogs

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

type Catalogs struct {
	Materials MaterialCatalog
	Pipes     PipeCatalog
}

type MaterialCatalog struct {
	Registry string
	Defs     []MaterialDef
	Digest   string
}

type MaterialDef struct {
	Name string `json:"name"`
	ID   int    `json:"id,omitempty"`
}

type PipeCatalog struct {
	Insulations []string `json:"insulations"`
	FluidPipes  []string `json:"fluid_pipes"`
	ItemPipes   []string `json:"item_pipes"`
	Digest      string   `json:"-"`
}

// Names returns every material name, sorted.
func (m MaterialCatalog) Names() []string {
	out := make([]string, 0, len(m.Defs))
	for _, d := range m.Defs {
		out = append(out, d.Name)
	}
	sort.Strings(out)
	return out
}

// Load reads and validates materials.json and pipes.json from dir. Any missing
// or invalid catalog is an error; remap tables cannot be built without them.
func Load(dir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadMaterials(filepath.Join(dir, "materials.json"), &c.Materials); err != nil {
		return nil, err
	}
	if err := loadPipes(filepath.Join(dir, "pipes.json"), &c.Pipes); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadMaterials(path string, out *MaterialCatalog) error {
	raw, err := readValidated(path, "materials.schema.json")
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var doc struct {
		Registry  string        `json:"registry"`
		Materials []MaterialDef `json:"materials"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("materials.json: %w", err)
	}
	seen := map[string]bool{}
	for _, d := range doc.Materials {
		if seen[d.Name] {
			return fmt.Errorf("materials.json: duplicate material %q", d.Name)
		}
		seen[d.Name] = true
	}
	out.Registry = doc.Registry
	out.Defs = doc.Materials
	return nil
}

func loadPipes(path string, out *PipeCatalog) error {
	raw, err := readValidated(path, "pipes.schema.json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("pipes.json: %w", err)
	}
	out.Digest = sha256Hex(raw)
	return nil
}

func readValidated(path, schemaName string) ([]byte, error) {
	name := filepath.Base(path)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	schema, err := compileSchema(schemaName)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return raw, nil
}

func compileSchema(name string) (*jsonschema.Schema, error) {
	b, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, err
	}
	s, err := jsonschema.CompileString(name, string(b))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return s, nil
}
