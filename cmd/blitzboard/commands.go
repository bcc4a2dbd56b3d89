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

// Package main is the entry point of the BlitzBoard CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blitzboard/blitzboard/cmd/blitzboard/config"
	"github.com/blitzboard/blitzboard/cmd/blitzboard/document"
	"github.com/blitzboard/blitzboard/server/logging"
)

var (
	flagEnvFile  string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:           "blitzboard",
	Short:         "Realtime collaborative document editor",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(flagEnvFile); err != nil {
			return err
		}
		return logging.SetLogLevel(flagLogLevel)
	},
}

// Run executes CLI.
func Run() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}

	return 0
}

func init() {
	rootCmd.AddCommand(document.SubCmd)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagEnvFile, "env-file", ".env", "Path of the .env file to load")
	flags.StringVarP(&flagLogLevel, "log-level", "l", "info", "Log level: debug, info, warn, error, panic, fatal")

	flags.String("store-url", "", "URL of the document store: memory://, mongodb://, postgres:// or https://")
	flags.String("store-key", "", "API key of an http(s) document store")
	flags.String("api-url", "", "HTTP base URL of the relay, for health checks")
	flags.String("relay-url", "", "ws:// or wss:// base URL of the relay; overrides --ws-*")
	flags.String("ws-protocol", config.DefaultWSProtocol, "Protocol of the relay: ws or wss")
	flags.String("ws-host", config.DefaultWSHost, "Host of the relay")
	flags.Int("ws-port", config.DefaultWSPort, "Port of the relay")
	flags.String("access-token", "", "Access token issued by the identity provider")
	flags.String("jwt-secret", "", "Secret to verify access tokens with; tokens are not verified when empty")
	flags.String("user-id", "", "User ID, when no access token is given")
	flags.String("email", "", "Email of the user, when no access token is given")
	flags.String("name", "", "Display name of the user, when no access token is given")
	flags.StringP("output", "o", "", "Output format: json or yaml")

	for _, key := range config.Keys {
		if err := viper.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", key, err))
		}
	}
}
