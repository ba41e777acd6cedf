// Package selector holds the catalog of agents the user can pick from.
package selector

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Option is one selectable agent.
type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
	Icon  string `yaml:"icon"`
}

// DefaultOptions is the catalog shipped with the widget.
var DefaultOptions = []Option{
	{Value: "ai_assistant", Label: "AI-ассистент", Icon: "🧑‍💻"},
	{Value: "ai_navigator", Label: "AI-Навигатор", Icon: "🧭"},
	{Value: "student_navigator", Label: "Навигатор студента", Icon: "👨‍🎓"},
	{Value: "green_navigator", Label: "Green Navigator", Icon: "🌱"},
	{Value: "communication", Label: "Коммуникации", Icon: "💬"},
}

type Catalog struct {
	options []Option
}

func New(options []Option) *Catalog {
	return &Catalog{options: append([]Option(nil), options...)}
}

func Default() *Catalog {
	return New(DefaultOptions)
}

type catalogFile struct {
	Agents []Option `yaml:"agents"`
}

// Load reads a catalog from a YAML file of the form
//
//	agents:
//	  - value: ai_assistant
//	    label: AI-ассистент
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read agent catalog")
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parse agent catalog %s", path)
	}
	if len(f.Agents) == 0 {
		return nil, errors.Errorf("agent catalog %s lists no agents", path)
	}
	for i, o := range f.Agents {
		if o.Value == "" {
			return nil, errors.Errorf("agent catalog %s: entry %d has no value", path, i)
		}
	}
	return New(f.Agents), nil
}

func (c *Catalog) Options() []Option {
	return append([]Option(nil), c.options...)
}

// First is the agent selected before the user picks one.
func (c *Catalog) First() Option {
	if len(c.options) == 0 {
		return Option{}
	}
	return c.options[0]
}

func (c *Catalog) Lookup(value string) (Option, bool) {
	for _, o := range c.options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

func (c *Catalog) Has(value string) bool {
	_, ok := c.Lookup(value)
	return ok
}

// Filter returns the options whose label or value contains query,
// ignoring case and surrounding space. An empty query matches everything.
func (c *Catalog) Filter(query string) []Option {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.Options()
	}
	var out []Option
	for _, o := range c.options {
		if strings.Contains(strings.ToLower(o.Label), q) || strings.Contains(strings.ToLower(o.Value), q) {
			out = append(out, o)
		}
	}
	return out
}
