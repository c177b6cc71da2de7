// Package bucket manages the curated bucket list and the manifest cache
// built from it.
package bucket

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Bucket is a named, curated collection of package repositories folded into
// the manifest cache.
type Bucket struct {
	Name  string   `yaml:"name"`
	Repos []string `yaml:"repos"`
}

// List is the persisted bucket configuration (buckets.yaml).
type List struct {
	Version int      `yaml:"version"`
	Buckets []Bucket `yaml:"buckets"`
}

// DefaultList returns the seed bucket configuration written on first use.
func DefaultList() *List {
	return &List{
		Version: 1,
		Buckets: []Bucket{
			{
				Name: "main",
				Repos: []string{
					"https://github.com/BurntSushi/ripgrep",
					"https://github.com/sharkdp/fd",
					"https://github.com/sharkdp/bat",
					"https://github.com/junegunn/fzf",
					"https://github.com/jqlang/jq",
				},
			},
		},
	}
}

// LoadList reads buckets.yaml. A missing file yields the default list.
func LoadList(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultList(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading bucket list %s: %w", path, err)
	}

	var l List
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parsing bucket list %s: %w", path, err)
	}
	return &l, nil
}

// SaveList writes buckets.yaml atomically.
func SaveList(path string, l *List) error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshaling bucket list: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp bucket list %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp bucket list to %s: %w", path, err)
	}
	return nil
}

// Get returns the bucket with the given name.
func (l *List) Get(name string) (*Bucket, bool) {
	for i := range l.Buckets {
		if l.Buckets[i].Name == name {
			return &l.Buckets[i], true
		}
	}
	return nil, false
}

// Add appends a bucket. Fails if the name already exists.
func (l *List) Add(b Bucket) error {
	if _, ok := l.Get(b.Name); ok {
		return fmt.Errorf("bucket '%s' already exists", b.Name)
	}
	l.Buckets = append(l.Buckets, b)
	return nil
}

// Remove drops the bucket with the given name.
func (l *List) Remove(name string) error {
	for i := range l.Buckets {
		if l.Buckets[i].Name == name {
			l.Buckets = append(l.Buckets[:i], l.Buckets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("bucket '%s' not found", name)
}
