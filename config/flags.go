// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"github.com/spf13/pflag"
)

// Flags represents a Source where its underlying values come from
// command line flags.
type Flags struct {
	fs       *pflag.FlagSet
	bindings map[string]string
}

// FromFlags returns a Source which sets each key in bindings, indexed by
// flag name, to the value of that flag. Only flags which were explicitly
// set on the command line are applied so flag defaults never override
// other sources.
func FromFlags(fs *pflag.FlagSet, bindings map[string]string) Flags {
	return Flags{
		fs:       fs,
		bindings: bindings,
	}
}

// Apply implements the Source interface.
func (src Flags) Apply(store Store) error {
	var err error
	src.fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		key, ok := src.bindings[f.Name]
		if !ok {
			return
		}
		err = store.Set(key, f.Value.String())
	})
	return err
}
