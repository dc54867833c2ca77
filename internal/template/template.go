// Package template renders the named VHDL shapes (entity, architecture,
// process, component, component_instance) from parameter maps.
package template

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	texttemplate "text/template"
)

//go:embed shapes/*.vhd.tmpl
var shapes embed.FS

const indentUnit = "    "

// Provider renders shapes. It is safe for concurrent use once constructed.
type Provider struct {
	tmpl *texttemplate.Template
}

// New parses the embedded shapes.
func New() (*Provider, error) {
	tmpl, err := texttemplate.New("vhdl").Funcs(texttemplate.FuncMap{
		"join":   strings.Join,
		"indent": indent,
	}).ParseFS(shapes, "shapes/*.vhd.tmpl")
	if err != nil {
		return nil, fmt.Errorf("template: parse shapes: %w", err)
	}
	return &Provider{tmpl: tmpl}, nil
}

// Render executes the shape with params.
func (p *Provider) Render(shape string, params map[string]any) (string, error) {
	t := p.tmpl.Lookup(shape + ".vhd.tmpl")
	if t == nil {
		return "", fmt.Errorf("template: unknown shape %q", shape)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("template: render %s: %w", shape, err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Shapes lists the available shape names.
func (p *Provider) Shapes() []string {
	var names []string
	for _, t := range p.tmpl.Templates() {
		if name, ok := strings.CutSuffix(t.Name(), ".vhd.tmpl"); ok {
			names = append(names, name)
		}
	}
	return names
}

func indent(depth int, text string) string {
	pad := strings.Repeat(indentUnit, depth)
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}
