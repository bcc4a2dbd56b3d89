/*
 * Copyright 2026 The BlitzBoard Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/blitzboard/blitzboard/cmd/blitzboard/config"
	"github.com/blitzboard/blitzboard/internal/version"
)

const healthTimeout = 3 * time.Second

var (
	clientOnly bool
)

// RelayHealth is the health of the relay as reported by its /health route.
type RelayHealth struct {
	Status  string    `json:"status" yaml:"status"`
	Time    time.Time `json:"time" yaml:"time"`
	Version string    `json:"version" yaml:"version"`
}

// VersionInfo is the output of the version command.
type VersionInfo struct {
	Client version.Info `json:"client" yaml:"client"`
	Relay  *RelayHealth `json:"relay,omitempty" yaml:"relay,omitempty"`
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of BlitzBoard",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{Client: version.Get()}
			if build := viper.GetString("build-version"); build != "" {
				info.Client.Version = build
			}

			var relayErr error
			if !clientOnly {
				info.Relay, relayErr = fetchHealth(cmd.Context(), config.Read().HealthURL())
			}

			switch viper.GetString("output") {
			case "":
				cmd.Printf("BlitzBoard Client: %s\n", info.Client.Version)
				cmd.Printf("Go: %s\n", info.Client.GoVersion)
				cmd.Printf("Platform: %s\n", info.Client.Platform)
				if info.Client.BuildDate != "" {
					cmd.Printf("Build Date: %s\n", info.Client.BuildDate)
				}
				if info.Relay != nil {
					cmd.Printf("BlitzBoard Relay: %s (%s)\n", info.Relay.Version, info.Relay.Status)
				}
			case "yaml":
				marshalled, err := yaml.Marshal(&info)
				if err != nil {
					return fmt.Errorf("marshal YAML: %w", err)
				}
				cmd.Println(string(marshalled))
			case "json":
				marshalled, err := json.MarshalIndent(&info, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal JSON: %w", err)
				}
				cmd.Println(string(marshalled))
			}

			if relayErr != nil {
				cmd.PrintErrf("Error: relay is unreachable: %v\n", relayErr)
			}
			return nil
		},
	}
}

func fetchHealth(ctx context.Context, healthURL string) (*RelayHealth, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", healthURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: %s", healthURL, resp.Status)
	}

	health := &RelayHealth{}
	if err := json.NewDecoder(resp.Body).Decode(health); err != nil {
		return nil, fmt.Errorf("decode health: %w", err)
	}
	return health, nil
}

func init() {
	cmd := newVersionCmd()
	cmd.Flags().BoolVar(
		&clientOnly,
		"client",
		false,
		"Shows client version only (no relay required).",
	)
	rootCmd.AddCommand(cmd)
}
