// Package profile scaffolds, lists, and documents compose profiles.
//
// A profile is a directory of templated files living under
// <plugin>/profiles/<name> in the source tree, or under the oci-env checkout's
// own profiles directory. Profiles are created once and never modified here.
package profile

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pulp/oci-env/internal/toolroot"
)

const (
	profilesDir = "profiles"
	readmeFile  = "README.md"
)

var (
	// ErrAlreadyExists indicates the profile directory is already present.
	ErrAlreadyExists = errors.New("profile already exists")
	// ErrNotFound indicates the profile directory is absent.
	ErrNotFound = errors.New("profile not found")
	// ErrNoDocs indicates the profile has no README.md.
	ErrNoDocs = errors.New("profile has no README.md")
	// ErrFileWrite indicates a template could not be written.
	ErrFileWrite = errors.New("profile file write failed")
	// ErrInvalidName indicates a profile or plugin name that is not a single path element.
	ErrInvalidName = errors.New("invalid profile name")
)

// Error describes a failure for a specific profile. It matches its sentinel
// with errors.Is and exposes the underlying cause, if any.
type Error struct {
	Profile string
	Path    string
	Kind    error
	Cause   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrAlreadyExists:
		return fmt.Sprintf("a profile already exists at %s", e.Path)
	case ErrNotFound:
		return fmt.Sprintf("%s doesn't exist", e.Profile)
	case ErrNoDocs:
		return fmt.Sprintf("%s doesn't have a README.md", e.Profile)
	case ErrFileWrite:
		return fmt.Sprintf("write %s: %v", e.Path, e.Cause)
	default:
		return fmt.Sprintf("%s: %v", e.Profile, e.Kind)
	}
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Manager owns profile operations rooted at a source tree and tool checkout.
type Manager struct {
	SrcDir    string
	ToolRoot  string
	Templates []Template
}

// NewManager builds a Manager using the embedded template registry.
func NewManager(srcDir, toolRoot string) (*Manager, error) {
	tmpls, err := DefaultTemplates()
	if err != nil {
		return nil, err
	}
	return &Manager{SrcDir: srcDir, ToolRoot: toolRoot, Templates: tmpls}, nil
}

// Created reports the outcome of Init.
type Created struct {
	Name  string
	Dir   string
	Files []string
}

// QualifiedName joins plugin and profile the way COMPOSE_PROFILE expects.
func QualifiedName(plugin, name string) string {
	if plugin == "" {
		return name
	}
	return plugin + "/" + name
}

// SplitName separates a qualified name on its first slash. Bare names belong
// to the tool's own namespace.
func SplitName(qualified string) (plugin, name string) {
	if p, n, ok := strings.Cut(qualified, "/"); ok {
		return p, n
	}
	return toolroot.Namespace, qualified
}

// ProfilesRoot returns the directory holding the given plugin's profiles.
func (m *Manager) ProfilesRoot(plugin string) string {
	if plugin == "" {
		return filepath.Join(m.ToolRoot, profilesDir)
	}
	return filepath.Join(m.SrcDir, plugin, profilesDir)
}

// Init creates a new profile and renders every template into it. Files are
// written independently; a failed write leaves earlier files in place.
func (m *Manager) Init(plugin, name string) (Created, error) {
	qualified := QualifiedName(plugin, name)
	if err := validateElement(name); err != nil {
		return Created{}, &Error{Profile: qualified, Kind: ErrInvalidName, Cause: err}
	}
	if plugin != "" {
		if err := validateElement(plugin); err != nil {
			return Created{}, &Error{Profile: qualified, Kind: ErrInvalidName, Cause: err}
		}
	}

	root := m.ProfilesRoot(plugin)
	if err := os.Mkdir(root, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return Created{}, err
	}

	dir := filepath.Join(root, name)
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return Created{}, &Error{Profile: qualified, Path: dir, Kind: ErrAlreadyExists}
		}
		return Created{}, err
	}

	created := Created{Name: qualified, Dir: dir}
	for _, t := range m.Templates {
		path := filepath.Join(dir, t.File)
		if err := writeExclusive(path, t, qualified); err != nil {
			return created, &Error{Profile: qualified, Path: path, Kind: ErrFileWrite, Cause: err}
		}
		created.Files = append(created.Files, path)
	}
	return created, nil
}

func writeExclusive(path string, t Template, qualified string) error {
	perm, err := t.Perm()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(Render(t, qualified)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func validateElement(s string) error {
	switch {
	case strings.TrimSpace(s) == "":
		return errors.New("name must not be empty")
	case s == "." || s == "..":
		return fmt.Errorf("%q is not a valid name", s)
	case strings.ContainsRune(s, '/') || strings.ContainsRune(s, filepath.Separator):
		return fmt.Errorf("%q must not contain a path separator", s)
	}
	return nil
}

// Entry is a profile discovered on disk.
type Entry struct {
	Name    string
	Dir     string
	Summary string
}

// PluginProfiles groups the profiles of one plugin.
type PluginProfiles struct {
	Plugin   string
	Profiles []Entry
}

// List enumerates plugins under SrcDir that carry a profiles directory.
// Profiles in the tool's own namespace are reported by bare name.
func (m *Manager) List() ([]PluginProfiles, error) {
	plugins, err := subdirs(m.SrcDir)
	if err != nil {
		return nil, err
	}
	var result []PluginProfiles
	for _, plugin := range plugins {
		root := filepath.Join(m.SrcDir, plugin, profilesDir)
		if !isDir(root) {
			continue
		}
		names, err := subdirs(root)
		if err != nil {
			return nil, err
		}
		group := PluginProfiles{Plugin: plugin}
		for _, name := range names {
			display := QualifiedName(plugin, name)
			if plugin == toolroot.Namespace {
				display = name
			}
			dir := filepath.Join(root, name)
			group.Profiles = append(group.Profiles, Entry{
				Name:    display,
				Dir:     dir,
				Summary: readmeSummary(filepath.Join(dir, readmeFile)),
			})
		}
		result = append(result, group)
	}
	return result, nil
}

// Docs returns the README.md of a profile verbatim.
func (m *Manager) Docs(qualified string) (string, error) {
	plugin, name := SplitName(qualified)
	dir := filepath.Join(m.SrcDir, plugin, profilesDir, name)
	if !isDir(dir) {
		return "", &Error{Profile: qualified, Path: dir, Kind: ErrNotFound}
	}
	path := filepath.Join(dir, readmeFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &Error{Profile: qualified, Path: path, Kind: ErrNoDocs}
		}
		return "", err
	}
	return string(data), nil
}

func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if isDir(filepath.Join(dir, entry.Name())) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.IsDir()
}

// readmeSummary returns the first non-empty README line without heading markers.
func readmeSummary(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimLeft(scanner.Text(), "#"))
		if line != "" {
			return line
		}
	}
	return ""
}
