package search

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// [Engine] configuration.
// Specifies settings that control how the engine behaves.
//
// This struct should not be modified once passed to an engine.
//
// The zero-value is safe to use, and the struct itself may be unmarshaled
// from JSON or YAML configuration files.
type Config struct {
	// Type determines what backend to use for this engine.
	// For example, to search through the wiki's action API you would
	// put "api" into this field.
	//
	// If you leave this blank, then it defaults to Name.
	// An empty Name and Type is an error.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Name of the engine as it appears in configuration and logs.
	//
	// If left blank, then it defaults to Type.
	// An empty Name and Type is an error.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// User-Agent header value for engines that perform HTTP requests.
	//
	// If left empty, then [DefaultUserAgent] is used.
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`

	// Timeout is the total amount of time an engine will wait for a
	// full response from its backend.
	//
	// If set to 0, then [DefaultTimeout] is used.
	Timeout stringDuration `json:"timeout" yaml:"timeout"`

	// Debug logs extra information when talking to the backend.
	Debug bool `json:"debug" yaml:"debug"`

	// Extra contains extra settings that have no corresponding field in
	// this struct.
	// They are generally [Engine] specific, and may or may not be
	// optional; the "api" engine requires an "endpoint" key and the
	// "sqlite" engine requires a "path" key.
	Extra map[string]any `json:"-" yaml:"-"`
}

// Wrapper struct to allow decoding time.Duration string values (such as
// "5s" or "15m") directly from configuration files.
type stringDuration struct {
	time.Duration
}

// DefaultUserAgent is the user agent that is used when the UserAgent
// field in [Config] is left empty.
const DefaultUserAgent = "SearchParserFunction/" + Version + " (https://www.mediawiki.org/wiki/Extension:SearchParserFunction)"

// Version of the extension, reported in the default user agent.
const Version = "1.1.0"

// Default timeout setting.
const DefaultTimeout = time.Second * 10

// New initializes the engine specified by the configuration.
func (c Config) New() (Engine, error) {
	driverType := c.Type
	if driverType == "" {
		// Fallback to c.Name for the driver type.
		driverType = c.Name
	}
	if driverType == "" {
		// Both c.Name and c.Type is empty.
		return nil, fmt.Errorf("engine config has no name or type")
	}

	// At least one of c.Name or c.Type is known to be non-empty so we
	// only have to check once.
	if c.Name == "" {
		c.Name = c.Type
	}

	// Initialize the driver, if we found it.
	fn, ok := engines[driverType]
	if !ok {
		return nil, fmt.Errorf("engine %q is not known", driverType)
	}
	return fn(c)
}

// MustNew attempts to initialize an [Engine] from the configuration, but
// panics if it fails to do so.
func (c Config) MustNew() Engine {
	e, err := c.New()
	if err != nil {
		panic(err)
	}
	return e
}

// NewHttpClient creates a [HttpClient] according to values set in the
// configuration.
func (c Config) NewHttpClient() *HttpClient {
	// Determine timeout.
	timeout := c.Timeout.Duration
	if timeout <= 0 {
		// Invalid timeout.
		timeout = DefaultTimeout
	}

	// Determine user agent.
	userAgent := c.UserAgent
	if userAgent == "" {
		// Empty user agent, use default.
		userAgent = DefaultUserAgent
	}

	return &HttpClient{
		Timeout:   timeout,
		UserAgent: userAgent,
		Debug:     c.Debug,
	}
}

// UnmarshalJSON parses a JSON configuration.
//
// This is required so we can keep unknown keys.
func (c *Config) UnmarshalJSON(b []byte) error {
	// We cannot get unknown keys through encoding/json unless we
	// unmarshal twice.
	// It's not ideal, but we only do this once on startup.

	// Define a new type to lose all receiver functions.
	// This means that Config won't satisfy json.Unmarshaler anymore, so
	// no recursion occurs.
	type _Config Config

	// Attempt to unmarshal b into our new type.
	var d _Config
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}

	// Now unmarshal b again, but this time into "Extra".
	// This includes all of the extra keys.
	if err := json.Unmarshal(b, &d.Extra); err != nil {
		return err
	}

	// Since we parsed it as map[string]any, it includes *all* keys,
	// even those which have a corresponding field.
	// Remove those.
	for _, key := range []string{"type", "name", "user_agent", "timeout", "debug"} {
		delete(d.Extra, key)
	}

	// Set the receiver to the parsed config and return nil.
	*c = Config(d)
	return nil
}

// UnmarshalYAML parses a YAML configuration, keeping unknown keys in
// Extra just like [Config.UnmarshalJSON] does.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type _Config Config

	var d _Config
	if err := node.Decode(&d); err != nil {
		return err
	}

	if err := node.Decode(&d.Extra); err != nil {
		return err
	}

	for _, key := range []string{"type", "name", "user_agent", "timeout", "debug"} {
		delete(d.Extra, key)
	}

	*c = Config(d)
	return nil
}

// UnmarshalJSON attempts to parse a JSON string into a [time.Duration].
func (w *stringDuration) UnmarshalJSON(b []byte) error {
	// Attempt to unmarshal b into a string.
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	// Try to parse the string as a duration.
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	w.Duration = d
	return nil
}

// UnmarshalYAML attempts to parse a YAML string into a [time.Duration].
func (w *stringDuration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode || node.Tag != "!!str" {
		return fmt.Errorf("expected string, got %v", node.Tag)
	}

	var err error
	w.Duration, err = time.ParseDuration(node.Value)
	return err
}
