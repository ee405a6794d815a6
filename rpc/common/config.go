package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerTransportConfig holds the listen side of a transport.
type ServerTransportConfig struct {
	// Kind selects the transport: "http", "tcp" or "unix"
	Kind string
	// Endpoint is the listen address, or the socket path for unix
	Endpoint string
}

// StorageBackendConfig selects and configures the snapshot backend.
type StorageBackendConfig struct {
	// Backend selects the storage: "memory", "file" or "sqlite"
	Backend string
	// DataDir holds snapshots (file backend) and the database (sqlite)
	DataDir string
	// MaxValueBytes caps a single snapshot, 0 means unlimited
	MaxValueBytes int
}

// ServerConfig holds all configuration parameters for a library server.
type ServerConfig struct {
	Transport  ServerTransportConfig
	Storage    StorageBackendConfig
	Serializer string

	// Admin credential pair, empty disables the admin role
	AdminEmail    string
	AdminPassword string

	// SMTP relay for the password reset flow, empty falls back to the
	// preview mailer
	SMTPAddr     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	// Gemini settings, empty key disables the ai channel
	GeminiAPIKey string
	GeminiModel  string

	LogLevel string
}

// String returns a formatted string representation of the configuration.
// Secrets are redacted.
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("RPC Server")
	addField("Transport", c.Transport.Kind)
	addField("Endpoint", c.Transport.Endpoint)
	addField("Serializer", c.Serializer)

	addSection("Storage")
	addField("Backend", c.Storage.Backend)
	if c.Storage.DataDir != "" {
		addField("Data Directory", c.Storage.DataDir)
	}
	if c.Storage.MaxValueBytes > 0 {
		addField("Snapshot Quota", fmt.Sprintf("%d bytes", c.Storage.MaxValueBytes))
	} else {
		addField("Snapshot Quota", "unlimited")
	}

	addSection("Auth")
	if c.AdminEmail != "" {
		addField("Admin Email", c.AdminEmail)
	} else {
		addField("Admin Email", "(disabled)")
	}
	if c.SMTPAddr != "" {
		addField("SMTP Relay", c.SMTPAddr)
		addField("SMTP From", c.SMTPFrom)
	} else {
		addField("SMTP Relay", "(preview mailer)")
	}

	addSection("AI")
	if c.GeminiAPIKey != "" {
		addField("Gemini Model", c.GeminiModel)
		addField("Gemini API Key", "(set)")
	} else {
		addField("Gemini", "(disabled)")
	}

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds the connection parameters of a library client.
type ClientConfig struct {
	// Transport selects the client transport: "http", "tcp" or "unix"
	Transport              string
	Endpoints              []string
	Serializer             string
	TimeoutSecond          int
	RetryCount             int
	ConnectionsPerEndpoint int
}

// String returns a formatted string representation of the client
// configuration.
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Transport", c.Transport)
	addField("Serializer", c.Serializer)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(max(1, c.ConnectionsPerEndpoint)))

	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
