// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"os"
)

// Env represents a Source where its underlying values
// are extracted from environment variables.
type Env struct {
	lookup   func(string) (string, bool)
	bindings map[string]string
}

// FromEnv returns a Source which sets each key in bindings, indexed by
// environment variable name, to the value of that variable. Unset
// variables are skipped.
func FromEnv(bindings map[string]string) Env {
	return Env{
		lookup:   os.LookupEnv,
		bindings: bindings,
	}
}

// Apply implements the Source interface.
func (src Env) Apply(store Store) error {
	for name, key := range src.bindings {
		v, ok := src.lookup(name)
		if !ok {
			continue
		}
		err := store.Set(key, v)
		if err != nil {
			return err
		}
	}
	return nil
}
