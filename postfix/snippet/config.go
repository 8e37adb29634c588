// Package snippet implements postfix templates declared in a config file.
// Each template becomes one provider that rewrites the chosen expression
// into an LSP snippet.
package snippet

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/postfix/java/parser"
)

//go:embed templates.yaml
var defaultTemplates []byte

type Config struct {
	Templates []Template `yaml:"templates" toml:"templates"`
}

// Template declares one postfix template.
type Template struct {
	Name        string `yaml:"name" toml:"name"`
	Description string `yaml:"description" toml:"description"`
	Example     string `yaml:"example" toml:"example"`
	// Statement limits the template to expressions that can stand alone
	// as a statement.
	Statement bool `yaml:"statement" toml:"statement"`
	// Outermost prefers the outermost eligible expression.
	Outermost bool `yaml:"outermost" toml:"outermost"`
	// Parenthesize wraps the expression in parentheses unless it is
	// primary, such as a name, call or literal.
	Parenthesize bool `yaml:"parenthesize" toml:"parenthesize"`
	// Types lists the accepted expression types. Empty accepts any.
	Types []string `yaml:"types" toml:"types"`
	Body  string   `yaml:"body" toml:"body"`
}

// Format selects the config syntax.
type Format int

const (
	YAML Format = iota
	TOML
)

// FormatOf picks the format from a file name. Files ending in .toml are
// TOML; everything else is YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return TOML
	}
	return YAML
}

var (
	ErrMissingName   = errors.New("missing name")
	ErrInvalidName   = errors.New("name is not an identifier")
	ErrDuplicateName = errors.New("duplicate name")
	ErrMissingBody   = errors.New("missing body")
	ErrMissingExpr   = errors.New("body does not use $expr")
)

// ConfigError reports a config file that could not be read or is invalid.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("template config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Decode parses and validates a config.
func Decode(data []byte, format Format) (*Config, error) {
	var cfg Config
	var err error
	switch format {
	case TOML:
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&cfg)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads the config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	cfg, err := Decode(data, FormatOf(path))
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

var (
	defaultOnce   sync.Once
	defaultConfig *Config
	defaultErr    error
)

// Default returns the embedded template set.
func Default() (*Config, error) {
	defaultOnce.Do(func() {
		defaultConfig, defaultErr = Decode(defaultTemplates, YAML)
		if defaultErr != nil {
			defaultErr = &ConfigError{Path: "<embedded>", Err: defaultErr}
		}
	})
	return defaultConfig, defaultErr
}

// DefaultYAML returns a copy of the embedded config file.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultTemplates...)
}

// LoadOrDefault loads path, or the embedded templates when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Validate checks every template and reports the first problem together
// with the template's position and name.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for i, t := range c.Templates {
		var err error
		switch {
		case t.Name == "":
			err = ErrMissingName
		case !parser.IsWord(t.Name):
			err = ErrInvalidName
		case seen[t.Name]:
			err = ErrDuplicateName
		case strings.TrimSpace(t.Body) == "":
			err = ErrMissingBody
		case !strings.Contains(t.Body, exprPlaceholder):
			err = ErrMissingExpr
		}
		if err != nil {
			return fmt.Errorf("template %d (%q): %w", i, t.Name, err)
		}
		seen[t.Name] = true
	}
	return nil
}

// Lookup returns the template called name.
func (c *Config) Lookup(name string) (Template, bool) {
	for _, t := range c.Templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}
