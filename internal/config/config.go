// Package config holds the runtime configuration shared by all commands.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is populated from flags, environment (PCRYPT_*) and an optional YAML file.
type Config struct {
	// Show prints the configuration and exits.
	Show bool `yaml:"show"`
	// Quiet suppresses per-file output.
	Quiet bool `yaml:"quiet"`
	// Stats prints a summary after processing.
	Stats bool `yaml:"stats"`
	// Delete removes the source after a successful run.
	Delete bool `yaml:"delete"`
	// PreserveTimestamps copies the source modification time to the output.
	PreserveTimestamps bool `mapstructure:"preserve-timestamps" yaml:"preserve-timestamps"`

	// Concurrency is the number of files processed at once.
	Concurrency int `validate:"min=1" yaml:"concurrency"`
	// Workers is the number of partitions each buffer is split into.
	Workers int `validate:"min=1" yaml:"workers"`
	// Mode is the cipher mode for encryption.
	Mode string `validate:"mode" yaml:"mode"`

	Key      Key      `mapstructure:",squash" yaml:",inline"`
	Suffixes Suffixes `mapstructure:",squash" yaml:",inline"`
	Log      Log      `mapstructure:",squash" yaml:",inline"`
	Bench    Bench    `mapstructure:",squash" yaml:",inline"`
	Server   Server   `mapstructure:",squash" yaml:",inline"`

	// Decrypt is set by the decrypt command.
	Decrypt bool `mapstructure:"-" yaml:"decrypt"`

	// Files holds the positional arguments.
	Files []string `mapstructure:"-" yaml:"files"`
}

// Key selects the hex-encoded key source. The key itself is never serialized.
type Key struct {
	String string `label:"--key"      mapstructure:"key"      validate:"exclusive=File" yaml:"-"`
	File   string `label:"--key-file" mapstructure:"key-file" yaml:"key-file"`
}

// Suffixes are appended to output file names.
type Suffixes struct {
	Encrypt string `label:"--encrypt-ext" mapstructure:"encrypt-ext" validate:"required" yaml:"encrypt-ext"`
	Decrypt string `label:"--decrypt-ext" mapstructure:"decrypt-ext" yaml:"decrypt-ext"`
}

// Log configures the logrus logger.
type Log struct {
	Level  string `label:"--log-level"  mapstructure:"log-level"  validate:"oneof=trace debug info warn error" yaml:"log-level"`
	Format string `label:"--log-format" mapstructure:"log-format" validate:"oneof=text json"                  yaml:"log-format"`
}

// Bench configures the benchmark harness.
//
//nolint:lll
type Bench struct {
	DataDir    string        `label:"--data-dir"    mapstructure:"data-dir"    validate:"required"   yaml:"data-dir"`
	ResultsDir string        `label:"--results-dir" mapstructure:"results-dir" validate:"required"   yaml:"results-dir"`
	Sweep      string        `label:"--sweep"       mapstructure:"sweep"       yaml:"sweep"`
	Sizes      []int         `label:"--sizes"       mapstructure:"sizes"       validate:"dive,min=1" yaml:"sizes"`
	Modes      []string      `label:"--modes"       mapstructure:"modes"       validate:"dive,mode"  yaml:"modes"`
	Threads    []int         `label:"--threads"     mapstructure:"threads"     validate:"dive,min=1" yaml:"threads"`
	Synthetic  int           `label:"--synthetic"   mapstructure:"synthetic"   validate:"min=0"      yaml:"synthetic"`
	Timeout    time.Duration `label:"--timeout"     mapstructure:"timeout"     yaml:"timeout"`
	OpenSSL    bool          `label:"--openssl"     mapstructure:"openssl"     yaml:"openssl"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `label:"--addr"             mapstructure:"addr"             validate:"required" yaml:"addr"`
	ShutdownTimeout time.Duration `label:"--shutdown-timeout" mapstructure:"shutdown-timeout" yaml:"shutdown-timeout"`
}

// ErrMissingKey is returned when a command needs a key and none was given.
var ErrMissingKey = errors.New("one of --key or --key-file is required")

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := register(validate); err != nil {
		return err
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	return nil
}

// KeyBytes resolves and decodes the key from --key or --key-file.
func (c *Config) KeyBytes() ([]byte, error) {
	encoded := c.Key.String

	switch {
	case encoded != "":
	case c.Key.File != "":
		data, err := os.ReadFile(c.Key.File)
		if err != nil {
			return nil, fmt.Errorf("reading key file: %w", err)
		}

		encoded = string(data)
	default:
		return nil, ErrMissingKey
	}

	key, err := hex.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("decoding hex key: %w", err)
	}

	return key, nil
}
