package prefab

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Library holds the specs loaded from a directory, keyed by name.
type Library struct {
	dir   string
	specs map[string]Spec
}

// LoadDir loads every .yaml/.yml file in dir. A missing directory yields an
// empty library.
func LoadDir(dir string) (*Library, error) {
	lib := &Library{dir: dir, specs: make(map[string]Spec)}
	if err := lib.Reload(); err != nil {
		return nil, err
	}
	return lib, nil
}

// Reload re-reads the whole directory. On error the previous specs are kept.
func (l *Library) Reload() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read prefab dir %s: %w", l.dir, err)
	}
	specs := make(map[string]Spec, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isSpecFile(entry.Name()) {
			continue
		}
		spec, err := Load(filepath.Join(l.dir, entry.Name()))
		if err != nil {
			return err
		}
		if _, dup := specs[spec.Name]; dup {
			return fmt.Errorf("duplicate prefab %q in %s", spec.Name, l.dir)
		}
		specs[spec.Name] = spec
	}
	l.specs = specs
	return nil
}

// Add registers spec, replacing any spec of the same name.
func (l *Library) Add(spec Spec) { l.specs[spec.Name] = spec }

func (l *Library) Get(name string) (Spec, bool) {
	s, ok := l.specs[name]
	return s, ok
}

func (l *Library) Dir() string { return l.dir }
func (l *Library) Count() int  { return len(l.specs) }

// Names returns the spec names in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.specs))
	for n := range l.specs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
