package main

import (
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/search"
)

type config struct {
	// Addr is the address that the preview HTTP server listens on.
	Addr string

	// BaseURL is the address that the preview server is *served* on.
	// This can be different, such as if you are listening on
	// localhost:8080 but access it through example.com.
	BaseURL string `yaml:"base_url"`

	// Lang is the language used for parser function messages.
	Lang string

	// Page is the title results are filtered against when rendering
	// from the command line, where there is no real "current page".
	Page string

	// Engine names the engine the parser function queries.
	// If empty and exactly one engine is enabled, that one is used.
	Engine string

	// Determines the interval to check the connection to the engines.
	PingInterval timeDuration `yaml:"ping_interval"`

	// Engines specifies configuration for engines.
	//
	// An engine that is in here is implicitly enabled unless it also
	// exists in the Disabled field.
	Engines map[string]search.Config `yaml:"engines"`

	// Disabled lists the names of engines to not initialize.
	Disabled []string `yaml:"disabled"`
}

// timeDuration is a wrapper on time.Duration which allows the decoding of
// time.Duration values.
type timeDuration struct {
	time.Duration
}

var defaultConfig = config{
	Addr:         ":8080",
	BaseURL:      "http://localhost:8080",
	Lang:         "en",
	PingInterval: timeDuration{time.Minute * 15},

	Engines: map[string]search.Config{},
}

var cfg = defaultConfig

func loadConfig(path string) error {
	h, err := os.Open(path)
	if err != nil {
		return err
	}
	defer h.Close()

	return yaml.NewDecoder(h).Decode(&cfg)
}

func (t *timeDuration) UnmarshalYAML(data *yaml.Node) error {
	if data.Kind != yaml.ScalarNode || data.Tag != "!!str" {
		return fmt.Errorf("expected string, got %v", data.Tag)
	}

	var err error
	t.Duration, err = time.ParseDuration(data.Value)
	return err
}

// Attempts to initialize an engine.
//
// Uses the engine's configuration as specified in the configuration
// file, falling back to defaults for everything unset.
func initializeEngine(name string) (search.Engine, error) {
	cfg, ok := cfg.Engines[name]
	if !ok {
		cfg.Type = name
	}
	cfg.Name = name

	return cfg.New()
}

// Determines if a specific engine has been disabled.
//
// An engine is disabled if it is explicitly disabled, or if it has no
// configuration and is not an engine enabled by default.
func engineIsDisabled(name string) bool {
	// Check if it is explicitly disabled first.
	if slices.Contains(cfg.Disabled, name) {
		return true
	}

	// Not explicitly disabled.
	// Check to see if it was configured.
	if _, ok := cfg.Engines[name]; ok {
		return false
	}

	// Finally, check to see if it is supposed to be enabled by default.
	return !slices.Contains(search.DefaultEngines(), name)
}

// Returns a list of enabled engines.
//
// An enabled engine is one that is not explicitly disabled and is either
// set to be a "default" engine or has been configured.
var enabledEngines = sync.OnceValue(func() []string {
	engines := make([]string, 0)

	// Copy in all default engines provided they aren't disabled.
	for _, v := range search.DefaultEngines() {
		if !engineIsDisabled(v) {
			engines = append(engines, v)
		}
	}

	// Copy in everything that was explicitly configured.
	for k := range cfg.Engines {
		if !engineIsDisabled(k) && !slices.Contains(engines, k) {
			engines = append(engines, k)
		}
	}

	return engines
})

// Picks the engine the parser function should use.
//
// The Engine field wins; otherwise a single enabled engine is
// unambiguous and gets picked on its own.
func directiveEngine() (string, error) {
	if cfg.Engine != "" {
		if engineIsDisabled(cfg.Engine) {
			return "", fmt.Errorf("engine %q is disabled", cfg.Engine)
		}
		return cfg.Engine, nil
	}

	enabled := enabledEngines()
	switch len(enabled) {
	case 0:
		return "", fmt.Errorf("no engines are enabled")
	case 1:
		return enabled[0], nil
	}
	return "", fmt.Errorf("several engines are enabled; set \"engine\" in the config")
}
