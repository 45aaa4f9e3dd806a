// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/birkin/routedemo"
	"github.com/birkin/routedemo/config"
	"github.com/birkin/routedemo/internal/server"

	"github.com/spf13/cobra"
)

//go:embed config.yaml
var configDir embed.FS

var flagBindings = map[string]string{
	"addr":          "http.addr",
	"log-level":     "logging.level",
	"log-format":    "logging.format",
	"drain-timeout": "http.drainTimeout",
}

var envBindings = map[string]string{
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.target",
	"GOOGLE_CLOUD_PROJECT":        "otel.projectId",
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "demoserver",
		Short:         "Serve the demo routes over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srcs, err := sources(cmd)
			if err != nil {
				return err
			}
			return routedemo.Run(cmd.Context(), server.Build(), srcs...)
		},
	}

	fs := cmd.Flags()
	fs.String("config", "", "path to a yaml or json file overriding the default config")
	fs.String("addr", "0.0.0.0:3000", "address to listen on")
	fs.String("log-level", "INFO", "minimum log level")
	fs.String("log-format", "json", "log format: json, text or zap")
	fs.Duration("drain-timeout", 0, "how long to wait for in-flight requests on shutdown, 0 waits forever")

	return cmd
}

// sources lists config sources in increasing order of precedence:
// embedded defaults, the --config file, environment variables and
// finally explicitly set flags.
func sources(cmd *cobra.Command) ([]config.Source, error) {
	srcs := []config.Source{
		config.FromYaml(
			config.RenderTextTemplate(
				config.NewFileReader(configDir, "config.yaml"),
			),
		),
	}

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path != "" {
		srcs = append(srcs, fileSource(path))
	}

	srcs = append(
		srcs,
		config.FromEnv(envBindings),
		config.FromFlags(cmd.Flags(), flagBindings),
	)
	return srcs, nil
}

func fileSource(path string) config.Source {
	r := config.NewFileReader(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return config.FromJson(r)
	}
	return config.FromYaml(r)
}
