package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Registry holds validated profiles by name.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]*ExtractionProfile
	order    []string
}

// NewRegistry returns a registry preloaded with the built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]*ExtractionProfile)}
	for _, p := range Builtins() {
		if err := r.Register(p); err != nil {
			panic(fmt.Sprintf("built-in profile %s: %v", p.Name, err))
		}
	}
	return r
}

// Register validates p and adds it, replacing any profile with the same name.
func (r *Registry) Register(p *ExtractionProfile) error {
	if p == nil {
		return errors.New("nil profile")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[p.Name]; !exists {
		r.order = append(r.order, p.Name)
	}
	r.profiles[p.Name] = p
	return nil
}

// Get returns the profile called name.
func (r *Registry) Get(name string) (*ExtractionProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[name]
	if !ok {
		names := append([]string(nil), r.order...)
		sort.Strings(names)
		return nil, fmt.Errorf("unknown profile '%s' (available: %v)", name, names)
	}
	return p, nil
}

// Names returns profile names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// All returns the profiles in registration order.
func (r *Registry) All() []*ExtractionProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ExtractionProfile, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.profiles[name])
	}
	return out
}

// ForMessage returns the first registered profile for the given message type
// ("camt.054"), or nil.
func (r *Registry) ForMessage(message string) *ExtractionProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		if p := r.profiles[name]; p.Message == message {
			return p
		}
	}
	return nil
}

// LoadFile reads profiles from a YAML file and registers them. The file
// holds either a single profile or a "profiles:" list.
func (r *Registry) LoadFile(path string) ([]*ExtractionProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	loaded, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("profile file %s: %w", path, err)
	}
	for _, p := range loaded {
		if err := r.Register(p); err != nil {
			return nil, fmt.Errorf("profile file %s: %w", path, err)
		}
	}
	return loaded, nil
}

type profileFile struct {
	Profiles []*ExtractionProfile `yaml:"profiles"`
}

// Decode parses YAML profile definitions without registering them.
func Decode(r io.Reader) ([]*ExtractionProfile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	if len(file.Profiles) > 0 {
		return file.Profiles, nil
	}

	var single ExtractionProfile
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if single.Name == "" && len(single.Fields) == 0 {
		return nil, errors.New("no profiles defined")
	}
	return []*ExtractionProfile{&single}, nil
}
