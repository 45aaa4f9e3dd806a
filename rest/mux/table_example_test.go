// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mux

import (
	"fmt"
	"net/http"
)

func ExampleTable_Lookup() {
	table := NewTable()
	table.Register(MethodGet, "/items/:id", http.NotFoundHandler())
	table.Register(MethodGet, "/items/special", http.NotFoundHandler())

	m, ok := table.Lookup(http.MethodGet, "/items/42")
	fmt.Println(ok, m.Pattern, m.Params["id"])

	m, ok = table.Lookup(http.MethodGet, "/items/special")
	fmt.Println(ok, m.Pattern)

	_, ok = table.Lookup(http.MethodPost, "/items/42")
	fmt.Println(ok)
	// Output:
	// true /items/:id 42
	// true /items/special
	// false
}
