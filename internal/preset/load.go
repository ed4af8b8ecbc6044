package preset

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// fileApp is the YAML shape of one catalog file entry.
type fileApp struct {
	Name        string   `yaml:"name" json:"name"`
	DrawViewKey string   `yaml:"drawViewKey" json:"drawViewKey"`
	Activities  []string `yaml:"activities" json:"activities"`
}

// LoadFile merges a user catalog file into c. Entries for packages
// already present replace the existing preset and keep its position;
// new packages append in lexicographic order. Unknown fields and
// schema violations are rejected; an empty file is a no-op.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read preset catalog: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc map[string]fileApp
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse preset catalog %s: %w", path, err)
	}

	if err := validateCatalog(doc); err != nil {
		return fmt.Errorf("invalid preset catalog %s: %w", path, err)
	}

	pkgs := make([]string, 0, len(doc))
	for pkg := range doc {
		pkgs = append(pkgs, pkg)
	}
	slices.Sort(pkgs)

	for _, pkg := range pkgs {
		entry := doc[pkg]
		err := c.Add(App{
			Package:     pkg,
			Name:        entry.Name,
			DrawViewKey: entry.DrawViewKey,
			Activities:  entry.Activities,
		})
		if err != nil {
			return fmt.Errorf("invalid preset catalog %s: %w", path, err)
		}
	}
	return nil
}

// validateCatalog unifies the decoded document with the embedded CUE
// schema. This catches structural mistakes (empty strings, missing
// fields, no activities) with positions the YAML decoder cannot give.
func validateCatalog(doc map[string]fileApp) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	data := ctx.Encode(doc)
	if err := data.Err(); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	return schema.Unify(data).Validate(cue.Concrete(true))
}
