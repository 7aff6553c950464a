package util

import (
	"log"
	"os"

	"github.com/go-yaml/yaml"
)

// Config is the relay base configuration
type Config struct {
	Server Server `yaml:"server"`
	Relay  Relay  `yaml:"relay"`
	Kinds  Kinds  `yaml:"kinds"`
}

type Server struct {
	Dsn           string `yaml:"dsn"`
	RedisAddr     string `yaml:"redisAddr"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Relay struct {
	FQDN        string `yaml:"fqdn"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Pubkey      string `yaml:"publickey"`

	MaxMessageSize int64 `yaml:"maxMessageSize"`
	MaxFilters     int   `yaml:"maxFilters"`
	MaxSubsPerConn int   `yaml:"maxSubsPerConn"`
}

// Kinds is the event kind mapping of the credential subsystem. The numbers
// are deployment configuration; composite addresses are computed from them.
type Kinds struct {
	SchemaDefinition int `yaml:"schemaDefinition"`
	CredentialGrant  int `yaml:"credentialGrant"`
	Revocation       int `yaml:"revocation"`
	Renewal          int `yaml:"renewal"`
}

// Load loads relay config from given path
func (c *Config) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		log.Println("failed to open configuration file:", err)
		return err
	}
	defer f.Close()

	err = yaml.NewDecoder(f).Decode(&c)
	if err != nil {
		log.Println("failed to load configuration file:", err)
		return err
	}

	c.ApplyDefaults()

	return nil
}

// ApplyDefaults fills in the parts a minimal config file omits.
func (c *Config) ApplyDefaults() {
	if c.Kinds.SchemaDefinition == 0 {
		c.Kinds.SchemaDefinition = 30300
	}
	if c.Kinds.CredentialGrant == 0 {
		c.Kinds.CredentialGrant = 30301
	}
	if c.Kinds.Revocation == 0 {
		c.Kinds.Revocation = 30302
	}
	if c.Kinds.Renewal == 0 {
		c.Kinds.Renewal = 30303
	}
	if c.Relay.MaxMessageSize == 0 {
		c.Relay.MaxMessageSize = 512 * 1024
	}
	if c.Relay.MaxFilters == 0 {
		c.Relay.MaxFilters = 10
	}
	if c.Relay.MaxSubsPerConn == 0 {
		c.Relay.MaxSubsPerConn = 32
	}
}
