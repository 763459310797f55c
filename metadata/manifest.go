// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metadata

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// ModuleDependencyType tells where a module dependency is sourced from.
type ModuleDependencyType string

const (
	// ModuleDependencyLocal is a module at a filesystem path.
	ModuleDependencyLocal ModuleDependencyType = "local"
	// ModuleDependencyRemote is a module fetched from a repository URL at
	// a pinned revision.
	ModuleDependencyRemote ModuleDependencyType = "remote"
	// ModuleDependencyShare is a published module resolved by version
	// from the shared registry.
	ModuleDependencyShare ModuleDependencyType = "share"
	// ModuleDependencyRuntime is a module bundled with the runtime.
	ModuleDependencyRuntime ModuleDependencyType = "runtime"
	// ModuleDependencyModule refers to the current module itself.
	ModuleDependencyModule ModuleDependencyType = "module"
)

// LibraryDependencyType tells where an external (native) library
// dependency is sourced from.
type LibraryDependencyType string

const (
	LibraryDependencyLocal  LibraryDependencyType = "local"
	LibraryDependencyRemote LibraryDependencyType = "remote"
	LibraryDependencyShare  LibraryDependencyType = "share"
	// LibraryDependencySystem is a library resolved by the platform
	// loader, named without path or version.
	LibraryDependencySystem LibraryDependencyType = "system"
)

// ModuleDependency is one entry of the [modules] manifest table. The
// populated fields depend on Type.
type ModuleDependency struct {
	Type ModuleDependencyType `toml:"type"`

	// Local.
	Path string `toml:"path,omitempty"`

	// Remote.
	URL      string `toml:"url,omitempty"`
	Revision string `toml:"revision,omitempty"`

	// Share.
	Version string `toml:"version,omitempty"`

	// Values parameterizes the dependency; Condition gates it.
	Values    map[string]string `toml:"values,omitempty"`
	Condition string            `toml:"condition,omitempty"`
}

// LibraryDependency is one entry of the [libraries] manifest table.
type LibraryDependency struct {
	Type LibraryDependencyType `toml:"type"`

	Path     string `toml:"path,omitempty"`
	URL      string `toml:"url,omitempty"`
	Revision string `toml:"revision,omitempty"`
	Version  string `toml:"version,omitempty"`

	// Name is the loader-resolved name for system libraries.
	Name string `toml:"name,omitempty"`
}

// Manifest is a module's metadata document.
type Manifest struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Edition string `toml:"edition"`

	Modules   map[string]ModuleDependency  `toml:"modules"`
	Libraries map[string]LibraryDependency `toml:"libraries"`
}

// LoadManifest decodes and validates a TOML manifest.
func LoadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if _, err := toml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks structural consistency: the identity fields, the
// edition, and per-type required fields of every dependency.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("manifest: name is required")
	}
	if m.Edition != RuntimeEdition {
		return fmt.Errorf("manifest %q: edition %q is not supported (runtime edition %q)", m.Name, m.Edition, RuntimeEdition)
	}
	if _, err := ParseVersion(m.Version); err != nil {
		return fmt.Errorf("manifest %q: %v", m.Name, err)
	}
	for name, dep := range m.Modules {
		if err := dep.validate(); err != nil {
			return fmt.Errorf("manifest %q: module dependency %q: %v", m.Name, name, err)
		}
	}
	for name, dep := range m.Libraries {
		if err := dep.validate(); err != nil {
			return fmt.Errorf("manifest %q: library dependency %q: %v", m.Name, name, err)
		}
	}
	return nil
}

func (d ModuleDependency) validate() error {
	switch d.Type {
	case ModuleDependencyLocal:
		if d.Path == "" {
			return fmt.Errorf("local dependency requires path")
		}
	case ModuleDependencyRemote:
		if d.URL == "" || d.Revision == "" {
			return fmt.Errorf("remote dependency requires url and revision")
		}
	case ModuleDependencyShare:
		if _, err := ParseVersion(d.Version); err != nil {
			return fmt.Errorf("share dependency: %v", err)
		}
	case ModuleDependencyRuntime, ModuleDependencyModule:
	default:
		return fmt.Errorf("unknown dependency type %q", d.Type)
	}
	return nil
}

func (d LibraryDependency) validate() error {
	switch d.Type {
	case LibraryDependencyLocal:
		if d.Path == "" {
			return fmt.Errorf("local library requires path")
		}
	case LibraryDependencyRemote:
		if d.URL == "" || d.Revision == "" {
			return fmt.Errorf("remote library requires url and revision")
		}
	case LibraryDependencyShare:
		if _, err := ParseVersion(d.Version); err != nil {
			return fmt.Errorf("share library: %v", err)
		}
	case LibraryDependencySystem:
		if d.Name == "" {
			return fmt.Errorf("system library requires name")
		}
	default:
		return fmt.Errorf("unknown library type %q", d.Type)
	}
	return nil
}
