// Package config loads the optional .stringsconv.yaml file that provides defaults
// for the command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/loopcontext/stringsconv"
	"github.com/loopcontext/stringsconv/internal/textenc"
)

const DefaultFileName = ".stringsconv.yaml"

// DecoderKind selects how the binary target is decoded.
type DecoderKind string

const (
	DecoderPlist  DecoderKind = "plist"  // in process
	DecoderPlutil DecoderKind = "plutil" // external `plutil -convert xml1`
)

func ParseDecoderKind(s string) (DecoderKind, error) {
	switch k := DecoderKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return DecoderPlist, nil
	case DecoderPlist, DecoderPlutil:
		return k, nil
	default:
		return "", fmt.Errorf("unknown decoder %q (want plist or plutil)", s)
	}
}

// UnmarshalYAML rejects unknown decoder names at load time.
func (k *DecoderKind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("decoder must be a string: %w", err)
	}
	parsed, err := ParseDecoderKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Encoding is the master file encoding as written in YAML.
type Encoding textenc.Encoding

func (e *Encoding) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("master_encoding must be a string: %w", err)
	}
	parsed, err := textenc.ParseEncoding(s)
	if err != nil {
		return err
	}
	*e = Encoding(parsed)
	return nil
}

type Config struct {
	UnsortedMarker string      `yaml:"unsorted_marker"`
	MasterEncoding Encoding    `yaml:"master_encoding"`
	Decoder        DecoderKind `yaml:"decoder"`
	PlutilPath     string      `yaml:"plutil_path"`
	Strict         bool        `yaml:"strict"`
	Verbose        bool        `yaml:"verbose"`
}

func Default() Config {
	return Config{
		UnsortedMarker: stringsconv.DefaultUnsortedMarker,
		MasterEncoding: Encoding(textenc.Auto),
		Decoder:        DecoderPlist,
		PlutilPath:     "plutil",
	}
}

// Load reads path over the defaults. When path is empty, DefaultFileName in the
// working directory is used if it exists; an explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.UnsortedMarker) == "" {
		c.UnsortedMarker = stringsconv.DefaultUnsortedMarker
	}
	if strings.ContainsAny(c.UnsortedMarker, "\r\n") {
		return fmt.Errorf("unsorted_marker must be a single line")
	}
	if strings.HasPrefix(strings.TrimSpace(c.UnsortedMarker), `"`) {
		return fmt.Errorf("unsorted_marker must not start with a double quote")
	}
	if c.MasterEncoding == "" {
		c.MasterEncoding = Encoding(textenc.Auto)
	}
	if c.Decoder == "" {
		c.Decoder = DecoderPlist
	}
	if c.Decoder == DecoderPlutil && strings.TrimSpace(c.PlutilPath) == "" {
		c.PlutilPath = "plutil"
	}
	return nil
}

// Validate applies the same rules Load does, for configs adjusted by flags.
func (c *Config) Validate() error {
	return c.validate()
}
