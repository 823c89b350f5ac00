package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one configured service. Zero Period and Digits mean the engine
// defaults; an empty Algorithm means SHA1.
type Entry struct {
	Name      string `yaml:"-"`
	Secret    string `yaml:"secret"`
	Period    uint32 `yaml:"period"`
	Digits    int    `yaml:"digits"`
	Algorithm string `yaml:"algorithm"`
}

// File is a parsed secrets file. Entries keep file order.
type File struct {
	Path    string
	Entries []Entry
}

// Load reads a JSON or YAML secrets file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse decodes a top-level mapping of service name to either a secret
// string or a {secret, period, digits, algorithm} mapping. JSON input is
// accepted since it is valid YAML.
func Parse(data []byte) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	f := &File{}
	if len(doc.Content) == 0 {
		return f, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: expected a mapping of name to secret", ErrInvalidConfig, root.Line)
	}

	index := make(map[string]int)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]

		name := strings.TrimSpace(key.Value)
		if key.Kind != yaml.ScalarNode || name == "" {
			return nil, fmt.Errorf("%w: line %d: entry names must be non-empty strings", ErrInvalidConfig, key.Line)
		}

		var e Entry
		switch val.Kind {
		case yaml.ScalarNode:
			if val.Tag != "!!null" {
				e.Secret = val.Value
			}
		case yaml.MappingNode:
			if err := val.Decode(&e); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
			}
		default:
			return nil, fmt.Errorf("%w: line %d: %s must be a secret string or a mapping", ErrInvalidConfig, val.Line, name)
		}
		e.Name = name

		// A repeated name replaces the earlier value in place.
		if at, ok := index[name]; ok {
			f.Entries[at] = e
			continue
		}
		index[name] = len(f.Entries)
		f.Entries = append(f.Entries, e)
	}
	return f, nil
}

// Names lists the configured names in file order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Entries))
	for _, e := range f.Entries {
		names = append(names, e.Name)
	}
	return names
}

// Lookup finds an entry by exact name.
func (f *File) Lookup(name string) (Entry, bool) {
	for _, e := range f.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Filter keeps the entries whose name contains substr, case-insensitively.
func (f *File) Filter(substr string) *File {
	if substr == "" {
		return f
	}
	needle := strings.ToLower(substr)
	out := &File{Path: f.Path}
	for _, e := range f.Entries {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// Select keeps only the named entries, in the order given. Unknown names
// are reported together.
func (f *File) Select(names ...string) (*File, error) {
	if len(names) == 0 {
		return f, nil
	}
	out := &File{Path: f.Path}
	var missing []string
	for _, name := range names {
		e, ok := f.Lookup(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		out.Entries = append(out.Entries, e)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, strings.Join(missing, ", "))
	}
	return out, nil
}
