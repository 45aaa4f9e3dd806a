// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"errors"
	"io"
)

// Map is an ordinary map[string]any but implements the Source interface.
type Map map[string]any

// Apply implements the Source interface. It recursively walks the underlying
// map to find key value pairs to set on the given store.
func (m Map) Apply(store Store) error {
	return walkMap(m, store, "")
}

func walkMap(m map[string]any, store Store, prefix string) error {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch x := v.(type) {
		case map[string]any:
			err := walkMap(x, store, key)
			if err != nil {
				return err
			}
		case Map:
			err := walkMap(x, store, key)
			if err != nil {
				return err
			}
		default:
			err := store.Set(key, x)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// closeReader closes r if it is an [io.Closer], joining any
// close error into err.
func closeReader(err *error, r io.Reader) {
	c, ok := r.(io.Closer)
	if !ok {
		return
	}
	*err = errors.Join(*err, c.Close())
}
