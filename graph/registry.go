// Copyright 2014 The Cayley Authors. All rights reserved.
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

package graph

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrBackendNotRegistered  = errors.New("backend is not registered")
	ErrOperationNotSupported = errors.New("operation is not supported")
)

var (
	registryMu      sync.RWMutex
	backendRegistry = make(map[string]Registration)
)

type NewBackendFunc func(address string, opts Options) (Backend, error)
type InitBackendFunc func(address string, opts Options) error

type Registration struct {
	NewFunc      NewBackendFunc
	InitFunc     InitBackendFunc
	IsPersistent bool
}

func RegisterBackend(name string, register Registration) {
	if register.NewFunc == nil {
		panic("NewFunc must not be nil")
	}
	registryMu.Lock()
	defer registryMu.Unlock()

	// Register backend with friendly name
	if _, found := backendRegistry[name]; found {
		panic(fmt.Sprintf("Already registered backend %q.", name))
	}
	backendRegistry[name] = register
}

func lookup(name string) (Registration, error) {
	registryMu.RLock()
	r, registered := backendRegistry[name]
	registryMu.RUnlock()
	if !registered {
		return r, fmt.Errorf("%w: %q", ErrBackendNotRegistered, name)
	}
	return r, nil
}

// NewBackend opens a registered backend.
func NewBackend(name, address string, opts Options) (Backend, error) {
	r, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return r.NewFunc(address, opts)
}

// InitBackend prepares storage for a persistent backend.
func InitBackend(name, address string, opts Options) error {
	r, err := lookup(name)
	if err != nil {
		return err
	} else if r.InitFunc == nil {
		return ErrOperationNotSupported
	}
	return r.InitFunc(address, opts)
}

func IsRegistered(name string) bool {
	_, err := lookup(name)
	return err == nil
}

func IsPersistent(name string) bool {
	r, _ := lookup(name)
	return r.IsPersistent
}

// Backends lists names of all registered backends.
func Backends() []string {
	registryMu.RLock()
	t := make([]string, 0, len(backendRegistry))
	for n := range backendRegistry {
		t = append(t, n)
	}
	registryMu.RUnlock()
	sort.Strings(t)
	return t
}
