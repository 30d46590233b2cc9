// Package configlet collects device configuration files to publish to
// CloudVision alongside a container topology.
//
// Each file becomes one configlet named after its base name, optionally
// prefixed so that configlets managed by this tool can be filtered on the
// CloudVision side:
//
//	list, err := configlet.List("intended/configs", configlet.Options{Prefix: "AVD"})
//	// intended/configs/DC1-LEAF1A.cfg -> "AVD_DC1-LEAF1A"
package configlet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
)

const (
	// DefaultExtension is the file extension collected when none is given.
	DefaultExtension = "cfg"

	// NoPrefix disables prefixing, like an empty prefix.
	NoPrefix = "none"
)

// ErrNotDirectory is returned by [List] when the source path is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Configlet is one configuration file.
type Configlet struct {
	Name    string
	Path    string
	Content string
}

// Options controls which files [List] collects and how they are named.
type Options struct {
	// Prefix is prepended to every name as "<prefix>_". Empty or "none"
	// disables it.
	Prefix string

	// Extension selects files by suffix, with or without a leading dot.
	// Defaults to "cfg".
	Extension string

	// Recursive also collects files in sub-directories.
	Recursive bool
}

func (o Options) extension() string {
	ext := strings.TrimPrefix(o.Extension, ".")
	if ext == "" {
		return DefaultExtension
	}
	return ext
}

// Name returns the configlet name for the file at path.
func (o Options) Name(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if o.Prefix == "" || strings.EqualFold(o.Prefix, NoPrefix) {
		return base
	}
	return o.Prefix + "_" + base
}

// List reads every matching file under dir and returns the configlets sorted
// by name. When two files map to the same name, the one with the
// lexicographically greater path wins.
func List(dir string, opts Options) ([]Configlet, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("configlet dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("configlet dir %s: %w", dir, ErrNotDirectory)
	}

	pattern := "*." + opts.extension()
	if opts.Recursive {
		pattern = "**/" + pattern
	}
	paths, err := doublestar.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(paths)

	byName := make(map[string]Configlet, len(paths))
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if fi.IsDir() {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read configlet: %w", err)
		}
		name := opts.Name(p)
		byName[name] = Configlet{Name: name, Path: p, Content: string(data)}
	}

	out := make([]Configlet, 0, len(byName))
	for _, c := range byName {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Map returns the configlets keyed by name.
func Map(list []Configlet) map[string]string {
	m := make(map[string]string, len(list))
	for _, c := range list {
		m[c.Name] = c.Content
	}
	return m
}
