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
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blitzboard/blitzboard/server"
	"github.com/blitzboard/blitzboard/server/logging"
	"github.com/blitzboard/blitzboard/server/relay"
)

var (
	gracefulTimeout = 10 * time.Second
)

var (
	flagConfPath     string
	flagProfiling    bool
	flagPingInterval time.Duration
	flagPongTimeout  time.Duration
	flagAutosave     time.Duration

	conf = server.NewConfig()
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server [options]",
		Short: "Start the BlitzBoard relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf.Relay.PingInterval = flagPingInterval.String()
			conf.Relay.PongTimeout = flagPongTimeout.String()
			conf.Backend.AutosaveInterval = flagAutosave.String()
			if storeURL := viper.GetString("store-url"); storeURL != "" {
				conf.Backend.StoreURL = storeURL
			}
			conf.Backend.StoreKey = viper.GetString("store-key")
			if !flagProfiling {
				conf.Profiling = nil
			}

			// If config file is given, command-line arguments will be overwritten.
			if flagConfPath != "" {
				parsed, err := server.NewConfigFromFile(flagConfPath)
				if err != nil {
					return err
				}
				conf = parsed
			}

			b, err := server.New(conf)
			if err != nil {
				return err
			}

			if err := b.Start(); err != nil {
				return err
			}

			if code := handleSignal(b); code != 0 {
				return fmt.Errorf("exit code: %d", code)
			}

			return nil
		},
	}
}

func handleSignal(b *server.BlitzBoard) int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	var sig os.Signal
	select {
	case s := <-sigCh:
		sig = s
	case <-b.ShutdownCh():
		return 0
	}

	graceful := sig == syscall.SIGINT || sig == syscall.SIGTERM
	logging.DefaultLogger().Infof("received %s, shutting down", sig)

	gracefulCh := make(chan struct{})
	go func() {
		if err := b.Shutdown(graceful); err != nil {
			return
		}
		close(gracefulCh)
	}()

	select {
	case <-sigCh:
		return 1
	case <-time.After(gracefulTimeout):
		return 1
	case <-gracefulCh:
		return 0
	}
}

func init() {
	cmd := newServerCmd()
	cmd.Flags().StringVarP(
		&flagConfPath,
		"config",
		"c",
		"",
		"Config path",
	)
	cmd.Flags().IntVar(
		&conf.Relay.Port,
		"port",
		server.DefaultRelayPort,
		"Relay port",
	)
	cmd.Flags().StringVar(
		&conf.Relay.CertFile,
		"cert-file",
		"",
		"Relay certification file's path",
	)
	cmd.Flags().StringVar(
		&conf.Relay.KeyFile,
		"key-file",
		"",
		"Relay key file's path",
	)
	cmd.Flags().DurationVar(
		&flagPingInterval,
		"ping-interval",
		relay.DefaultPingInterval,
		"Interval of keepalive pings sent to peers",
	)
	cmd.Flags().DurationVar(
		&flagPongTimeout,
		"pong-timeout",
		relay.DefaultPongTimeout,
		"Peers silent for longer than this are dropped",
	)
	cmd.Flags().IntVar(
		&conf.Relay.QueueSize,
		"queue-size",
		relay.DefaultQueueSize,
		"Frames queued per peer before frames are dropped for it",
	)
	cmd.Flags().StringSliceVar(
		&conf.Relay.AllowedOrigins,
		"allowed-origins",
		nil,
		"Origins allowed to open streams; any origin when empty",
	)
	cmd.Flags().StringVar(
		&conf.Backend.BrokerURL,
		"broker-url",
		"",
		"Redis URL to fan frames out across relays; in-process when empty",
	)
	cmd.Flags().StringVar(
		&conf.Backend.BrokerPassword,
		"broker-password",
		"",
		"Password of the Redis broker",
	)
	cmd.Flags().DurationVar(
		&flagAutosave,
		"autosave-interval",
		server.DefaultAutosaveInterval,
		"Interval of saving relayed edits to the store; 0 disables autosave",
	)
	cmd.Flags().BoolVar(
		&flagProfiling,
		"enable-profiling",
		false,
		"Serve metrics and profiling data",
	)
	cmd.Flags().IntVar(
		&conf.Profiling.Port,
		"profiling-port",
		server.DefaultProfilingPort,
		"Profiling port",
	)
	cmd.Flags().BoolVar(
		&conf.Profiling.EnablePprof,
		"enable-pprof",
		false,
		"Enable runtime profiling data via HTTP server.",
	)

	rootCmd.AddCommand(cmd)
}
