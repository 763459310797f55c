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

// Package metadata carries the runtime identity (edition, version) and the
// module manifest model: dependency declarations parsed from TOML.
package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

// RuntimeName identifies this runtime implementation.
const RuntimeName = "tachyon"

// RuntimeEdition names the ISA edition this runtime implements. Editions
// are opaque strings; two runtimes interoperate only on an exact match.
const RuntimeEdition = "2025"

// EffectiveVersion is a semantic version with 16-bit components.
type EffectiveVersion struct {
	Major uint16
	Minor uint16
	Patch uint16
}

// RuntimeVersion returns the version of this runtime.
func RuntimeVersion() EffectiveVersion {
	return EffectiveVersion{Major: 0, Minor: 1, Patch: 0}
}

func (v EffectiveVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ToU64 packs the version into one integer with patch in the low 16 bits,
// then minor, then major.
func (v EffectiveVersion) ToU64() uint64 {
	return uint64(v.Major)<<32 | uint64(v.Minor)<<16 | uint64(v.Patch)
}

// VersionFromU64 unpacks a version produced by ToU64.
func VersionFromU64(u uint64) EffectiveVersion {
	return EffectiveVersion{
		Major: uint16(u >> 32),
		Minor: uint16(u >> 16),
		Patch: uint16(u),
	}
}

// ParseVersion parses "major.minor.patch". All three components are
// required.
func ParseVersion(s string) (EffectiveVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return EffectiveVersion{}, fmt.Errorf("invalid version %q: want major.minor.patch", s)
	}
	var nums [3]uint16
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return EffectiveVersion{}, fmt.Errorf("invalid version %q: %v", s, err)
		}
		nums[i] = uint16(n)
	}
	return EffectiveVersion{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// VersionCompatibility is the outcome of comparing two versions under the
// dependency resolution rules.
type VersionCompatibility int

const (
	VersionEquals VersionCompatibility = iota
	VersionGreaterThan
	VersionLessThan
	VersionConflict
)

func (c VersionCompatibility) String() string {
	switch c {
	case VersionEquals:
		return "equals"
	case VersionGreaterThan:
		return "greater_than"
	case VersionLessThan:
		return "less_than"
	case VersionConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Compatible compares v against other. Differing majors never
// interoperate. Under a zero major the minor acts as the breaking
// component, so a minor mismatch is also a conflict; otherwise the result
// orders the two versions.
func (v EffectiveVersion) Compatible(other EffectiveVersion) VersionCompatibility {
	if v.Major != other.Major {
		return VersionConflict
	}
	if v.Major == 0 {
		if v.Minor != other.Minor {
			return VersionConflict
		}
		return orderU16(v.Patch, other.Patch)
	}
	if v.Minor != other.Minor {
		return orderU16(v.Minor, other.Minor)
	}
	return orderU16(v.Patch, other.Patch)
}

func orderU16(a, b uint16) VersionCompatibility {
	switch {
	case a == b:
		return VersionEquals
	case a > b:
		return VersionGreaterThan
	default:
		return VersionLessThan
	}
}
