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

// Package config provides the configuration of the BlitzBoard CLI. Values
// come from flags, BLITZBOARD_* environment variables and an optional .env
// file, in that order of precedence.
package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blitzboard/blitzboard/api/types"
	"github.com/blitzboard/blitzboard/client"
	"github.com/blitzboard/blitzboard/pkg/errors"
	"github.com/blitzboard/blitzboard/server/backend"
	"github.com/blitzboard/blitzboard/server/backend/database"
	"github.com/blitzboard/blitzboard/server/backend/database/postgrest"
	"github.com/blitzboard/blitzboard/server/logging"
)

// EnvPrefix is the prefix of the environment variables read by the CLI.
const EnvPrefix = "BLITZBOARD"

// Below are the default values of the CLI config.
const (
	DefaultWSProtocol = "ws"
	DefaultWSHost     = "localhost"
	DefaultWSPort     = 8080
)

var (
	// ErrNoIdentity is returned when neither an access token nor a user ID
	// is configured.
	ErrNoIdentity = errors.Unauthenticated("no access token or user ID").WithCode("ErrNoIdentity")

	// ErrStoreKeyRequired is returned when an http(s) store has no key.
	ErrStoreKeyRequired = errors.InvalidArgument("store key is required for http(s) stores").WithCode("ErrStoreKeyRequired")
)

// Config is the configuration of the CLI.
type Config struct {
	StoreURL    string `yaml:"store-url" validate:"required"`
	StoreKey    string `yaml:"store-key"`
	APIURL      string `yaml:"api-url" validate:"omitempty,url"`
	RelayURL    string `yaml:"relay-url" validate:"omitempty,ws_url"`
	WSProtocol  string `yaml:"ws-protocol" validate:"required,oneof=ws wss"`
	WSHost      string `yaml:"ws-host" validate:"required"`
	WSPort      int    `yaml:"ws-port" validate:"min=1,max=65535"`
	AccessToken string `yaml:"access-token"`
	JWTSecret   string `yaml:"jwt-secret"`
	UserID      string `yaml:"user-id"`
	Email       string `yaml:"email" validate:"omitempty,email"`
	Name        string `yaml:"name"`
	Output      string `yaml:"output" validate:"omitempty,oneof=json yaml"`
}

// Keys are the viper keys of the config, also used as flag names. The
// environment variable of a key is EnvPrefix_KEY with dashes as underscores.
var Keys = []string{
	"store-url", "store-key", "api-url", "relay-url",
	"ws-protocol", "ws-host", "ws-port",
	"access-token", "jwt-secret", "user-id", "email", "name", "output",
}

// Init binds the environment to viper, after loading envFile if it exists.
func Init(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.SetDefault("ws-protocol", DefaultWSProtocol)
	viper.SetDefault("ws-host", DefaultWSHost)
	viper.SetDefault("ws-port", DefaultWSPort)
	for _, key := range append(Keys, "build-version") {
		if err := viper.BindEnv(key); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the config from viper and validates it.
func Load() (*Config, error) {
	conf := Read()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Read reads the config from viper without validating it.
func Read() *Config {
	return &Config{
		StoreURL:    viper.GetString("store-url"),
		StoreKey:    viper.GetString("store-key"),
		APIURL:      viper.GetString("api-url"),
		RelayURL:    viper.GetString("relay-url"),
		WSProtocol:  viper.GetString("ws-protocol"),
		WSHost:      viper.GetString("ws-host"),
		WSPort:      viper.GetInt("ws-port"),
		AccessToken: viper.GetString("access-token"),
		JWTSecret:   viper.GetString("jwt-secret"),
		UserID:      viper.GetString("user-id"),
		Email:       viper.GetString("email"),
		Name:        viper.GetString("name"),
		Output:      viper.GetString("output"),
	}
}

// Preload checks the config before a command runs, so that a command fails
// before doing anything when the config is invalid.
func Preload(_ *cobra.Command, _ []string) error {
	_, err := Load()
	return err
}

// Validate returns an error if the config is invalid.
func (c *Config) Validate() error {
	if err := types.ValidateStruct(c); err != nil {
		return err
	}

	scheme := strings.ToLower(c.StoreURL)
	if (strings.HasPrefix(scheme, "http://") || strings.HasPrefix(scheme, "https://")) && c.StoreKey == "" {
		return ErrStoreKeyRequired
	}
	return nil
}

// RelayBase returns the ws:// or wss:// base URL of the relay.
func (c *Config) RelayBase() string {
	if c.RelayURL != "" {
		return c.RelayURL
	}

	u := url.URL{
		Scheme: c.WSProtocol,
		Host:   c.WSHost + ":" + strconv.Itoa(c.WSPort),
	}
	return u.String()
}

// HealthURL returns the health endpoint of the relay.
func (c *Config) HealthURL() string {
	if c.APIURL != "" {
		return strings.TrimRight(c.APIURL, "/") + "/health"
	}

	base := c.RelayBase()
	if rest, ok := strings.CutPrefix(base, "wss://"); ok {
		return "https://" + strings.TrimRight(rest, "/") + "/health"
	}
	return "http://" + strings.TrimRight(strings.TrimPrefix(base, "ws://"), "/") + "/health"
}

// Session returns the signed-in user, from the access token if there is one,
// otherwise from the user ID, email and name.
func (c *Config) Session() (types.Session, error) {
	if c.AccessToken != "" {
		return client.SessionFromToken(c.AccessToken, c.JWTSecret)
	}
	if c.UserID == "" {
		return types.Session{}, ErrNoIdentity
	}

	return types.Session{UserID: c.UserID, Email: c.Email, Name: c.Name}, nil
}

// OpenStore opens the document store. http(s) stores are called with the
// access token of the user so row-level policies apply.
func (c *Config) OpenStore(ctx context.Context) (database.Database, error) {
	lower := strings.ToLower(c.StoreURL)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return postgrest.New(postgrest.Config{
			URL:         c.StoreURL,
			APIKey:      c.StoreKey,
			AccessToken: c.AccessToken,
		})
	}

	return backend.OpenDatabase(ctx, c.StoreURL, c.StoreKey)
}

// NewClient opens the store and creates a client for the signed-in user. The
// user is registered in the user directory. The returned function closes the
// store.
func NewClient(ctx context.Context, opts ...client.Option) (*client.Client, func(), error) {
	conf, err := Load()
	if err != nil {
		return nil, nil, err
	}

	session, err := conf.Session()
	if err != nil {
		return nil, nil, err
	}

	db, err := conf.OpenStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := db.Close(); err != nil {
			logging.DefaultLogger().Warnf("close store: %v", err)
		}
	}

	opts = append([]client.Option{client.WithRelayURL(conf.RelayBase())}, opts...)
	cli, err := client.New(db, session, opts...)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	if err := cli.Register(ctx); err != nil {
		logging.LogError(logging.DefaultLogger(), "register user", err)
	}

	return cli, closeStore, nil
}
