// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"fmt"
	"net/http"
)

func ExampleJSON() {
	enc, err := JSON(map[string]any{"b": 2, "a": "b"}).Encode()
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(enc.Status, enc.Header.Get("Content-Type"))
	fmt.Println(string(enc.Body))
	// Output:
	// 200 application/json
	// {"a":"b","b":2}
}

func ExampleStatusText() {
	enc, err := StatusText(http.StatusNotFound, "No route /no-such-path").Encode()
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(enc.Status, enc.Header.Get("Content-Length"))
	fmt.Println(string(enc.Body))
	// Output:
	// 404 22
	// No route /no-such-path
}
