// Copyright 2014 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config reads surf settings from a config file, the environment and
// command line flags.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/spf13/viper"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/voc"
)

const (
	KeyBackend  = "store.backend"
	KeyAddress  = "store.address"
	KeyPath     = "store.path"
	KeyReadOnly = "store.read_only"
	KeyOptions  = "store.options"

	KeyLoadBatch = "load.batch"

	KeyHTTPHost    = "http.host"
	KeyHTTPPort    = "http.port"
	KeyHTTPTimeout = "http.timeout"

	KeyNamespaces = "namespaces"
)

const (
	// EnvPrefix is the prefix of environment overrides, e.g. SURF_STORE_BACKEND.
	EnvPrefix = "SURF"
	// EnvConfig points to an explicit config file.
	EnvConfig = "SURF_CFG"
)

const (
	DefaultBackend = "memstore"
	DefaultHost    = "127.0.0.1"
	DefaultPort    = 64210
	DefaultTimeout = 30 * time.Second
)

// Config is the resolved configuration of a surf process.
type Config struct {
	Backend  string
	Address  string
	ReadOnly bool
	Options  graph.Options

	LoadBatch int

	Host    string
	Port    int
	Timeout time.Duration

	// Namespaces maps prefixes to namespace IRIs.
	Namespaces map[string]string
}

// New returns a viper instance with defaults and environment overrides set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBackend, DefaultBackend)
	v.SetDefault(KeyLoadBatch, quad.DefaultBatch)
	v.SetDefault(KeyHTTPHost, DefaultHost)
	v.SetDefault(KeyHTTPPort, DefaultPort)
	v.SetDefault(KeyHTTPTimeout, DefaultTimeout)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Read loads a config file into v. Without an explicit file, $SURF_CFG is
// used, then surf.{yml,json,toml} is searched in the working directory,
// $HOME/.surf and /etc/surf. A missing file is not an error unless it was
// named explicitly.
func Read(v *viper.Viper, file string) error {
	if file == "" {
		file = os.Getenv(EnvConfig)
	}
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("surf")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.surf")
		v.AddConfigPath("/etc/surf")
	}
	err := v.ReadInConfig()
	var nf viper.ConfigFileNotFoundError
	if errors.As(err, &nf) {
		clog.Infof("no config file found, using defaults and flags only")
		return nil
	} else if err != nil {
		return fmt.Errorf("could not read config: %w", err)
	}
	clog.Infof("using config file %q", v.ConfigFileUsed())
	return nil
}

// Load resolves the configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	c := &Config{
		Backend:    v.GetString(KeyBackend),
		Address:    v.GetString(KeyAddress),
		ReadOnly:   v.GetBool(KeyReadOnly),
		Options:    graph.Options(v.GetStringMap(KeyOptions)),
		LoadBatch:  v.GetInt(KeyLoadBatch),
		Host:       v.GetString(KeyHTTPHost),
		Port:       v.GetInt(KeyHTTPPort),
		Timeout:    v.GetDuration(KeyHTTPTimeout),
		Namespaces: v.GetStringMapString(KeyNamespaces),
	}
	if c.Address == "" {
		// store.path is the older name of store.address
		c.Address = v.GetString(KeyPath)
	}
	if c.Options == nil {
		c.Options = graph.Options{}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the values that have no usable fallback.
func (c *Config) Validate() error {
	switch {
	case c.Backend == "":
		return fmt.Errorf("%s must be set", KeyBackend)
	case c.LoadBatch <= 0:
		return fmt.Errorf("%s must be positive, got %d", KeyLoadBatch, c.LoadBatch)
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("%s is out of range: %d", KeyHTTPPort, c.Port)
	case c.Timeout < 0:
		return fmt.Errorf("%s must not be negative", KeyHTTPTimeout)
	}
	return nil
}

// Listen returns the host:port address of the HTTP server.
func (c *Config) Listen() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// RegisterNamespaces adds configured prefixes to a registry, in prefix order.
func (c *Config) RegisterNamespaces(r *voc.Registry) {
	prefixes := make([]string, 0, len(c.Namespaces))
	for p := range c.Namespaces {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	for _, p := range prefixes {
		r.Register(p, c.Namespaces[p])
	}
}

// storeOptions returns backend options with the load batch filled in.
func (c *Config) storeOptions() graph.Options {
	opts := make(graph.Options, len(c.Options)+1)
	for k, v := range c.Options {
		opts[k] = v
	}
	if _, ok := opts["batch"]; !ok {
		opts["batch"] = c.LoadBatch
	}
	return opts
}

// Init prepares storage of a persistent backend.
func (c *Config) Init() error {
	if graph.IsRegistered(c.Backend) && !graph.IsPersistent(c.Backend) {
		return fmt.Errorf("%w: %q is not persistent", graph.ErrOperationNotSupported, c.Backend)
	}
	return graph.InitBackend(c.Backend, c.Address, c.storeOptions())
}

// Open opens the configured backend. With init set, persistent backends are
// initialized first; an existing database is not an error.
func (c *Config) Open(init bool) (graph.Backend, error) {
	clog.Infof("using backend %q (%s)", c.Backend, c.Address)
	if init && graph.IsPersistent(c.Backend) {
		if err := c.Init(); errors.Is(err, graph.ErrDatabaseExists) {
			clog.Infof("database already initialized, skipping init")
		} else if err != nil {
			return nil, err
		}
	}
	b, err := graph.NewBackend(c.Backend, c.Address, c.storeOptions())
	if os.IsNotExist(err) {
		err = fmt.Errorf("database does not exist at %q, run with --init to create it: %w", c.Address, err)
	}
	return b, err
}
