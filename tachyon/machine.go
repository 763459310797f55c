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

import (
	"fmt"

	"go.uber.org/zap"
)

// Machine owns the loaded modules, the host call tables, and the
// execution limits. A Machine is not safe for concurrent use; run one
// Machine per goroutine and share only data spaces, with external
// synchronization.
type Machine struct {
	cfg Config
	log *zap.Logger

	modules      []*moduleInstance
	moduleByName map[string]*moduleInstance

	envCalls  map[uint32]HostFunc
	externals []HostFunc

	hostHandles *hostHandleTable
}

// moduleInstance is one loaded module with its imports resolved and its
// data sections instantiated.
type moduleInstance struct {
	module *Module
	index  uint32
	data   *dataSpace

	// funcImports[i] is the resolved target of FunctionImports[i].
	funcImports []resolvedFunction
}

type resolvedFunction struct {
	inst *moduleInstance
	fn   *Function
}

// NewMachine creates an empty machine.
func NewMachine(cfg Config) *Machine {
	m := &Machine{
		cfg:          cfg,
		log:          cfg.logger(),
		moduleByName: make(map[string]*moduleInstance),
		envCalls:     make(map[uint32]HostFunc),
		hostHandles:  newHostHandleTable(),
	}
	m.registerBuiltinEnvCalls()
	return m
}

// LoadModule verifies, links and instantiates mod. Imports must name
// modules loaded earlier.
func (m *Machine) LoadModule(mod *Module) error {
	if _, ok := m.moduleByName[mod.Name]; ok {
		return fmt.Errorf("module %q already loaded", mod.Name)
	}
	if !m.cfg.SkipVerification {
		if err := VerifyModule(mod); err != nil {
			return err
		}
	}

	inst := &moduleInstance{
		module: mod,
		index:  uint32(len(m.modules)),
	}

	inst.funcImports = make([]resolvedFunction, len(mod.FunctionImports))
	for i, imp := range mod.FunctionImports {
		target, ok := m.moduleByName[imp.Module]
		if !ok {
			return fmt.Errorf("%w: module %q imports function %q from unloaded module %q",
				ErrFunctionNotFound, mod.Name, imp.Name, imp.Module)
		}
		idx, ok := target.module.FindFunction(imp.Name)
		if !ok {
			return fmt.Errorf("%w: module %q exports no function %q",
				ErrFunctionNotFound, imp.Module, imp.Name)
		}
		rf, err := target.resolveFunction(idx)
		if err != nil {
			return err
		}
		inst.funcImports[i] = rf
	}

	dataImports := make([]resolvedData, len(mod.DataImports))
	for i, imp := range mod.DataImports {
		target, ok := m.moduleByName[imp.Module]
		if !ok {
			return fmt.Errorf("%w: module %q imports data %q from unloaded module %q",
				ErrDataAccess, mod.Name, imp.Name, imp.Module)
		}
		idx, ok := target.findData(imp.Name, imp.Kind)
		if !ok {
			return fmt.Errorf("%w: module %q exports no %s data %q",
				ErrDataAccess, imp.Module, imp.Kind, imp.Name)
		}
		dataImports[i] = resolvedData{space: target.data, index: idx}
	}
	inst.data = newDataSpace(mod, dataImports, m.cfg.MaxMemoryBytes)

	m.modules = append(m.modules, inst)
	m.moduleByName[mod.Name] = inst
	m.log.Debug("module loaded",
		zap.String("module", mod.Name),
		zap.Int("functions", len(mod.Functions)),
		zap.Int("data_items", mod.DataPublicCount()))
	return nil
}

// resolveFunction maps a function public index to its defining module and
// body, following import chains.
func (mi *moduleInstance) resolveFunction(publicIndex uint32) (resolvedFunction, error) {
	i := int(publicIndex)
	if i < len(mi.funcImports) {
		return mi.funcImports[i], nil
	}
	i -= len(mi.funcImports)
	if i < len(mi.module.Functions) {
		return resolvedFunction{inst: mi, fn: &mi.module.Functions[i]}, nil
	}
	return resolvedFunction{}, fmt.Errorf("%w: function public index %d in module %q",
		ErrFunctionNotFound, publicIndex, mi.module.Name)
}

// findData returns the public index of the named internal data item of
// the given kind.
func (mi *moduleInstance) findData(name string, kind DataKind) (uint32, bool) {
	mod := mi.module
	base := len(mod.DataImports)
	sections := [3][]DataDef{mod.ReadOnlyData, mod.ReadWriteData, mod.UninitData}
	for k, section := range sections {
		for i, d := range section {
			if DataKind(k) == kind && d.Name == name {
				return uint32(base + i), true
			}
		}
		base += len(section)
	}
	return 0, false
}

func (m *Machine) instanceAt(moduleIndex uint32) (*moduleInstance, error) {
	if int(moduleIndex) >= len(m.modules) {
		return nil, fmt.Errorf("%w: module index %d", ErrDataAccess, moduleIndex)
	}
	return m.modules[moduleIndex], nil
}

func (m *Machine) instance(name string) (*moduleInstance, error) {
	inst, ok := m.moduleByName[name]
	if !ok {
		return nil, fmt.Errorf("module %q not loaded", name)
	}
	return inst, nil
}
