package main

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/zoobzio/steg"
	"github.com/zoobzio/steg/internal/logger"
)

const (
	defaultLSB    = 1
	defaultOutput = "text"
)

// Config holds the settings shared by every command. Flags override values
// read from the config file.
type Config struct {
	LogLevel    uint32
	LSB         int
	Version     steg.Version
	Compression steg.Compression
	Digest      steg.DigestAlgo
	Output      string
}

// NewDefaultConfig creates a new Config with default settings.
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:    uint32(log.InfoLevel),
		LSB:         defaultLSB,
		Version:     steg.VersionJSON,
		Compression: steg.CompressNone,
		Digest:      steg.DigestNone,
		Output:      defaultOutput,
	}
}

// NewConfig creates a new Config with default settings and applies any
// settings from the given configuration file.
func NewConfig(configFile string) (*Config, error) {
	config := NewDefaultConfig()
	if configFile == "" {
		return config, nil
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", configFile, err)
	}

	if v.IsSet("log.level") {
		level, err := logger.GetLogLevel(v.GetString("log.level"))
		if err != nil {
			return nil, err
		}
		config.LogLevel = level
	}
	if v.IsSet("lsb") {
		config.LSB = v.GetInt("lsb")
	}
	if v.IsSet("frame.version") {
		version, err := parseVersion(v.GetString("frame.version"))
		if err != nil {
			return nil, err
		}
		config.Version = version
	}
	if v.IsSet("frame.compression") {
		config.Compression = steg.Compression(v.GetString("frame.compression"))
	}
	if v.IsSet("frame.digest") {
		config.Digest = steg.DigestAlgo(v.GetString("frame.digest"))
	}
	if v.IsSet("output") {
		config.Output = v.GetString("output")
	}
	return config, config.validate()
}

func (c *Config) validate() error {
	if !steg.IsValidLSB(c.LSB) {
		return fmt.Errorf("invalid lsb setting %d, want 1-8", c.LSB)
	}
	if !steg.IsValidCompression(c.Compression) {
		return fmt.Errorf("invalid frame.compression setting %q", c.Compression)
	}
	if !steg.IsValidDigestAlgo(c.Digest) {
		return fmt.Errorf("invalid frame.digest setting %q", c.Digest)
	}
	switch c.Output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid output setting %q", c.Output)
	}
	return nil
}

// Engine builds a codec engine from the frame settings.
func (c *Config) Engine() *steg.Engine {
	return steg.New().
		SetVersion(c.Version).
		SetCompression(c.Compression).
		SetDigest(c.Digest)
}

// parseVersion accepts a version number or its metadata encoding name.
func parseVersion(s string) (steg.Version, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "json":
		return steg.VersionJSON, nil
	case "2", "msgpack":
		return steg.VersionMsgpack, nil
	case "3", "cbor":
		return steg.VersionCBOR, nil
	}
	return 0, fmt.Errorf("invalid frame version %q", s)
}
