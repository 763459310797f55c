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

package tachyon

import "go.uber.org/zap"

// Config controls machine-wide limits and services.
type Config struct {
	// MaxCallDepth bounds nested function calls. A call past the limit
	// fails with ErrStackOverflow.
	MaxCallDepth int

	// MaxMemoryBytes bounds the total size of live dynamically allocated
	// chunks per module. Zero means unlimited.
	MaxMemoryBytes int64

	// SkipVerification disables the load-time verifier. Modules are then
	// checked only by the lazy run-time guards.
	SkipVerification bool

	// Logger receives structured execution diagnostics. Nil selects a
	// no-op logger.
	Logger *zap.Logger
}

// DefaultConfig returns the configuration used by NewMachine when none is
// supplied.
func DefaultConfig() Config {
	return Config{
		MaxCallDepth:   1000,
		MaxMemoryBytes: 1 << 30,
	}
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
