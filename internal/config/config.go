// Package config handles configuration loading for the ITK toolkit.
//
// Configuration is loaded from a YAML file with support for environment
// variable expansion (${VAR} or $VAR syntax). This allows sensitive values
// like database credentials and service passwords to be injected at
// runtime.
//
// # Configuration Sections
//
//   - sender: the sending organisation's ITK address and transport identity
//   - directory: the directory-of-services properties file
//   - audit: audit sink selection (log or mongodb)
//   - templates: payload transform template directory
//   - operations: per-operation routing and payload shape settings
//
// # Example Configuration
//
//	sender:
//	  address: urn:nhs-uk:addressing:ods:SENDER
//	  endpoint: https://sender.example.nhs.uk/itk
//	  username: ${SMSP_USERNAME}
//
//	directory:
//	  propertiesPath: /etc/itk/directory.properties
//
//	audit:
//	  sink: mongodb
//	  mongodb:
//	    uri: ${MONGODB_URI}
//	    database: itk
//
//	operations:
//	  getNHSNumber:
//	    remoteAddress: urn:nhs-uk:addressing:ods:SMSP
//	    serviceId: urn:nhs-itk:services:201005:getNHSNumber-v1-0
//	    profileId: urn:nhs-en:profile:getNHSNumberRequest-v1-0
//
// See [Load] for loading configuration from a file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure
type Config struct {
	Sender      SenderConfig               `yaml:"sender"`
	Directory   DirectoryConfig            `yaml:"directory"`
	Audit       AuditConfig                `yaml:"audit"`
	Transport   TransportConfig            `yaml:"transport"`
	Templates   TemplatesConfig            `yaml:"templates"`
	Operations  map[string]OperationConfig `yaml:"operations"`
	GenderCodes []string                   `yaml:"genderCodes"`
}

// SenderConfig identifies the sending organisation
type SenderConfig struct {
	// Address is the sender's logical ITK address
	Address string `yaml:"address"`
	// Endpoint is the sender's physical endpoint, carried in the
	// transport From header
	Endpoint string `yaml:"endpoint"`
	// Username identifies the sender to the remote service
	Username string `yaml:"username"`
}

// DirectoryConfig locates the directory-of-services property store
type DirectoryConfig struct {
	PropertiesPath string `yaml:"propertiesPath"`
}

// AuditConfig selects and configures the audit sink
type AuditConfig struct {
	// Sink is "log" or "mongodb"
	Sink    string        `yaml:"sink"`
	MongoDB MongoDBConfig `yaml:"mongodb"`
}

// MongoDBConfig holds MongoDB connection settings
type MongoDBConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// TransportConfig holds HTTP transport settings
type TransportConfig struct {
	IdleConnTimeout time.Duration `yaml:"idleConnTimeout"`
}

// TemplatesConfig locates the payload transform templates
type TemplatesConfig struct {
	// Dir contains the named transform templates. Empty selects the
	// passthrough transform.
	Dir string `yaml:"dir"`
}

// OperationConfig holds per-operation routing settings
type OperationConfig struct {
	RemoteAddress string `yaml:"remoteAddress"`
	ServiceID     string `yaml:"serviceId"`
	ProfileID     string `yaml:"profileId"`
	Template      string `yaml:"template"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults
	cfg.applyDefaults()

	// Validate
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Audit.Sink == "" {
		c.Audit.Sink = "log"
	}
	if c.Audit.MongoDB.Database == "" {
		c.Audit.MongoDB.Database = "itk"
	}
	if c.Audit.MongoDB.Collection == "" {
		c.Audit.MongoDB.Collection = "audit_records"
	}
	if c.Transport.IdleConnTimeout == 0 {
		c.Transport.IdleConnTimeout = 90 * time.Second
	}
	if len(c.GenderCodes) == 0 {
		c.GenderCodes = []string{"0", "1", "2", "9"}
	}
	for name, op := range c.Operations {
		if op.Template == "" {
			op.Template = "distribution-envelope"
			c.Operations[name] = op
		}
	}
}

func (c *Config) validate() error {
	if c.Sender.Address == "" {
		return fmt.Errorf("sender.address is required")
	}
	if c.Directory.PropertiesPath == "" {
		return fmt.Errorf("directory.propertiesPath is required")
	}

	switch c.Audit.Sink {
	case "log", "mongodb":
		// Valid sinks
	default:
		return fmt.Errorf("audit.sink must be 'log' or 'mongodb', got '%s'", c.Audit.Sink)
	}

	if c.Audit.Sink == "mongodb" && c.Audit.MongoDB.URI == "" {
		return fmt.Errorf("audit.mongodb.uri is required when sink is 'mongodb'")
	}

	for name, op := range c.Operations {
		if op.RemoteAddress == "" {
			return fmt.Errorf("operations.%s.remoteAddress is required", name)
		}
		if op.ServiceID == "" {
			return fmt.Errorf("operations.%s.serviceId is required", name)
		}
		if op.ProfileID == "" {
			return fmt.Errorf("operations.%s.profileId is required", name)
		}
	}

	return nil
}
