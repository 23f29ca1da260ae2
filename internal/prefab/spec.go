package prefab

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Spec is an entity template: a name plus one YAML node per component,
// keyed by registered component name.
//
//	name: mover
//	components:
//	  position: {x: 0, y: 0}
//	  velocity: {x: 1, y: 0.5}
type Spec struct {
	Name       string               `yaml:"name"`
	Components map[string]yaml.Node `yaml:"components"`
}

// ComponentNames returns the component keys in sorted order.
func (s Spec) ComponentNames() []string {
	names := make([]string, 0, len(s.Components))
	for n := range s.Components {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Load reads one spec file. A spec without a name is named after its file.
func Load(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("read prefab %s: %w", path, err)
	}
	return Parse(data, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// Parse decodes a spec document, using fallbackName when it has no name.
func Parse(data []byte, fallbackName string) (Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Spec{}, fmt.Errorf("parse prefab %s: %w", fallbackName, err)
	}
	if spec.Name == "" {
		spec.Name = fallbackName
	}
	if spec.Name == "" {
		return Spec{}, fmt.Errorf("prefab has no name")
	}
	return spec, nil
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".lua"
}
