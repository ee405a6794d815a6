package serve

import (
	"fmt"
	"strings"

	cmdUtil "github.com/openshelf/shelfd/cmd/util"
	"github.com/openshelf/shelfd/rpc/common"
	"github.com/openshelf/shelfd/rpc/serializer"
	"github.com/openshelf/shelfd/rpc/server"
	"github.com/openshelf/shelfd/rpc/transport"
	"github.com/openshelf/shelfd/rpc/transport/http"
	"github.com/openshelf/shelfd/rpc/transport/tcp"
	"github.com/openshelf/shelfd/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the shelfd server",
		Long:    `Start the shelfd server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is SHELFD_<flag> (e.g. SHELFD_LOG_LEVEL=debug)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "storage"
	ServeCmd.PersistentFlags().String(key, "memory", cmdUtil.WrapString("Storage backend for the collection snapshots. One of: memory, file, sqlite"))

	key = "data-dir"
	ServeCmd.PersistentFlags().String(key, "data", cmdUtil.WrapString("Directory used for storing the snapshots (file and sqlite backends)"))

	key = "storage-quota"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Maximum size of a single collection snapshot in bytes, 0 means unlimited"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/shelfd.sock, ...)"))

	key = "admin-email"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Email of the built-in admin account. Leave empty to disable the admin role"))

	key = "admin-password"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Password of the built-in admin account"))

	key = "smtp-addr"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Address of the SMTP relay for password reset mails (host:port). Leave empty to log reset codes instead of sending them"))

	key = "smtp-from"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("From address for password reset mails"))

	key = "smtp-username"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Username for the SMTP relay, leave empty for unauthenticated relays"))

	key = "smtp-password"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Password for the SMTP relay"))

	key = "gemini-api-key"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("API key for the Gemini provider. Leave empty to disable the ai channel"))

	key = "gemini-model"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Model name for the Gemini provider, empty selects the default model"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// validate storage backend
	backend := viper.GetString("storage")
	switch backend {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("invalid storage backend: %s (expected one of: memory, file, sqlite)", backend)
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Transport = common.ServerTransportConfig{
		Kind:     viper.GetString("transport"),
		Endpoint: viper.GetString("endpoint"),
	}
	serveCmdConfig.Storage = common.StorageBackendConfig{
		Backend:       backend,
		DataDir:       viper.GetString("data-dir"),
		MaxValueBytes: viper.GetInt("storage-quota"),
	}
	serveCmdConfig.Serializer = viper.GetString("serializer")
	serveCmdConfig.AdminEmail = viper.GetString("admin-email")
	serveCmdConfig.AdminPassword = viper.GetString("admin-password")
	serveCmdConfig.SMTPAddr = viper.GetString("smtp-addr")
	serveCmdConfig.SMTPFrom = viper.GetString("smtp-from")
	serveCmdConfig.SMTPUsername = viper.GetString("smtp-username")
	serveCmdConfig.SMTPPassword = viper.GetString("smtp-password")
	serveCmdConfig.GeminiAPIKey = viper.GetString("gemini-api-key")
	serveCmdConfig.GeminiModel = viper.GetString("gemini-model")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	// an admin account without a password would let anyone log in as admin
	if serveCmdConfig.AdminEmail != "" && serveCmdConfig.AdminPassword == "" {
		return fmt.Errorf("admin-password is required when admin-email is set")
	}

	if serveCmdConfig.SMTPAddr != "" && serveCmdConfig.SMTPFrom == "" {
		return fmt.Errorf("smtp-from is required when smtp-addr is set")
	}

	return nil
}

// run starts the shelfd server
func run(_ *cobra.Command, _ []string) error {

	// parse the serializer
	var s serializer.IRPCSerializer
	switch viper.GetString("serializer") {
	case "json":
		s = serializer.NewJSONSerializer()
	case "gob":
		s = serializer.NewGOBSerializer()
	default:
		return fmt.Errorf("invalid serializer %s", viper.GetString("serializer"))
	}

	// Parse the transport
	var t transport.IRPCServerTransport
	switch viper.GetString("transport") {
	case "http":
		t = http.NewHTTPServerTransport()
	case "tcp":
		t = tcp.NewTCPServerTransport()
	case "unix":
		t = unix.NewUnixServerTransport()
	default:
		return fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		t,
		s,
	)

	return serv.Serve()
}

// initConfig reads in serveCmdConfig file and ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("shelfd")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
