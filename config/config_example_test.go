// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"strings"
	"time"
)

func Example() {
	type Config struct {
		Http struct {
			Addr         string        `config:"addr"`
			DrainTimeout time.Duration `config:"drainTimeout"`
		} `config:"http"`
	}

	m, err := Read(
		FromYaml(strings.NewReader("http:\n  addr: 0.0.0.0:3000\n  drainTimeout: 5s\n")),
		Map{"http": map[string]any{"addr": "127.0.0.1:8080"}},
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	var cfg Config
	err = m.Unmarshal(&cfg)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(cfg.Http.Addr)
	fmt.Println(cfg.Http.DrainTimeout)
	// Output:
	// 127.0.0.1:8080
	// 5s
}
