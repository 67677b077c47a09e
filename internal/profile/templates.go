package profile

import (
	_ "embed"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// Placeholder is replaced with the fully-qualified profile name.
const Placeholder = "{profile_name}"

// Template is one file written into every new profile.
type Template struct {
	File string `toml:"file"`
	Body string `toml:"body"`
	Mode string `toml:"mode"`
}

// Perm returns the file mode for the rendered file, 0644 unless overridden.
func (t Template) Perm() (fs.FileMode, error) {
	if t.Mode == "" {
		return 0o644, nil
	}
	v, err := strconv.ParseUint(t.Mode, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("template %s: invalid mode %q", t.File, t.Mode)
	}
	return fs.FileMode(v).Perm(), nil
}

// Render substitutes the qualified profile name into the template body.
func Render(t Template, qualified string) string {
	return strings.ReplaceAll(t.Body, Placeholder, qualified)
}

var (
	//go:embed templates.toml
	templateData []byte

	templatesOnce sync.Once
	templates     []Template
	templatesErr  error
)

// DefaultTemplates returns the embedded template registry.
func DefaultTemplates() ([]Template, error) {
	templatesOnce.Do(func() {
		templates, templatesErr = ParseTemplates(templateData)
	})
	if templatesErr != nil {
		return nil, templatesErr
	}
	return append([]Template(nil), templates...), nil
}

// ParseTemplates decodes a TOML template registry.
func ParseTemplates(data []byte) ([]Template, error) {
	var doc struct {
		Templates []Template `toml:"template"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse profile templates: %w", err)
	}
	seen := make(map[string]bool, len(doc.Templates))
	for _, t := range doc.Templates {
		if t.File == "" {
			return nil, fmt.Errorf("parse profile templates: template without file name")
		}
		if seen[t.File] {
			return nil, fmt.Errorf("parse profile templates: duplicate file %s", t.File)
		}
		seen[t.File] = true
		if _, err := t.Perm(); err != nil {
			return nil, err
		}
	}
	return doc.Templates, nil
}
