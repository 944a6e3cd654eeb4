package search

import (
	"encoding/json"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestConfigUnmarshalJSON(t *testing.T) {
	blob := `{
		"type": "api",
		"name": "wiki",
		"user_agent": "test",
		"timeout": "5s",
		"endpoint": "https://wiki.example.org/w/api.php"
	}`

	var c Config
	if err := json.Unmarshal([]byte(blob), &c); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if c.Type != "api" || c.Name != "wiki" || c.UserAgent != "test" {
		t.Errorf("got %+v", c)
	}
	if c.Timeout.Duration != 5*time.Second {
		t.Errorf("timeout: got %v", c.Timeout.Duration)
	}

	// Unknown keys land in Extra, known keys don't.
	if c.Extra["endpoint"] != "https://wiki.example.org/w/api.php" {
		t.Errorf("extra: got %v", c.Extra)
	}
	if _, ok := c.Extra["type"]; ok {
		t.Errorf("extra should not contain known keys: %v", c.Extra)
	}
}

func TestConfigUnmarshalYAML(t *testing.T) {
	blob := `
type: sqlite
timeout: "30s"
path: /tmp/index.db
`

	var c Config
	if err := yaml.Unmarshal([]byte(blob), &c); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if c.Type != "sqlite" {
		t.Errorf("type: got %q", c.Type)
	}
	if c.Timeout.Duration != 30*time.Second {
		t.Errorf("timeout: got %v", c.Timeout.Duration)
	}
	if c.Extra["path"] != "/tmp/index.db" {
		t.Errorf("extra: got %v", c.Extra)
	}
}

func TestConfigNewUnknownEngine(t *testing.T) {
	if _, err := (Config{Type: "does-not-exist"}).New(); err == nil {
		t.Fatal("expected an error")
	}
}

func TestConfigNewEmpty(t *testing.T) {
	if _, err := (Config{}).New(); err == nil {
		t.Fatal("expected an error")
	}
}

func TestConfigNewHttpClientDefaults(t *testing.T) {
	h := Config{}.NewHttpClient()

	if h.Timeout != DefaultTimeout {
		t.Errorf("timeout: got %v", h.Timeout)
	}
	if h.UserAgent != DefaultUserAgent {
		t.Errorf("user agent: got %q", h.UserAgent)
	}
}
