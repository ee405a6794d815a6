package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/openshelf/shelfd/lib/ai"
	"github.com/openshelf/shelfd/lib/auth"
	"github.com/openshelf/shelfd/lib/bus"
	"github.com/openshelf/shelfd/lib/library"
	"github.com/openshelf/shelfd/lib/logging"
	"github.com/openshelf/shelfd/lib/storage"
	"github.com/openshelf/shelfd/rpc/common"
	"github.com/openshelf/shelfd/rpc/serializer"
	"github.com/openshelf/shelfd/rpc/transport"
)

var logger = logging.GetLogger("rpc.server")

// NewRPCServer creates a new RPC server.
// It takes a config, transport and serializer as parameters.
//
// Usage:
//
//	s := server.NewRPCServer(
//		config,
//		http.NewHTTPServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) rpcServer {
	logger.Infof("Created RPC Server")
	logger.Infof(config.String())

	return rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		channels:   xsync.NewMapOf[string, IRPCServerAdapter](),
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	channels   *xsync.MapOf[string, IRPCServerAdapter]

	library *library.Library
	gate    *auth.Gate
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(channel string, req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		adapter, ok := s.channels.Load(channel)

		if !ok {
			respMsg = *common.NewErrorResponse(fmt.Sprintf("unknown channel: %s", channel))
		} else if err := s.serializer.Deserialize(req, &msg); err != nil {
			respMsg = *common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
		} else if msg.Op.Channel() != channel {
			// a valid operation sent to the wrong channel never reaches an
			// adapter
			respMsg = *common.NewErrorResponse(fmt.Sprintf("operation %s does not belong to channel %s", msg.Op, channel))
		} else {
			respMsg = *adapter.Handle(&msg)
		}

		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			logger.Errorf("Failed to serialize response: %v", err)
			val, _ = s.serializer.Serialize(*common.NewErrorResponse("failed to serialize response"))
		}
		return val
	})
}

// init builds the object graph: storage backend, signal bus, library, auth
// gate and ai flows, then binds one adapter per channel.
func (s *rpcServer) init() error {
	if err := logging.SetLevel(s.config.LogLevel); err != nil {
		return err
	}

	// Storage backend
	store, err := newBackendStorage(s.config.Storage)
	if err != nil {
		return err
	}

	// Signal bus: with the file backend peer processes share the snapshot
	// directory, so changes are announced through the filesystem watcher
	var b bus.IBus
	if s.config.Storage.Backend == "file" {
		if b, err = bus.NewFSBus(s.config.Storage.DataDir); err != nil {
			return fmt.Errorf("failed to create signal bus: %w", err)
		}
	} else {
		b = bus.NewMemoryBus()
	}

	// Library
	s.library = library.New(store, b)
	if err := s.library.Load(); err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}

	// Auth gate
	var mailer auth.Mailer
	if s.config.SMTPAddr != "" {
		mailer = auth.NewSMTPMailer(auth.SMTPConfig{
			Addr:     s.config.SMTPAddr,
			From:     s.config.SMTPFrom,
			Username: s.config.SMTPUsername,
			Password: s.config.SMTPPassword,
		})
	}
	s.gate = auth.NewGate(s.library, store, b, auth.AdminCredentials{
		Email:    s.config.AdminEmail,
		Password: s.config.AdminPassword,
	}, mailer)
	if err := s.gate.Load(); err != nil {
		return fmt.Errorf("failed to load auth gate: %w", err)
	}

	// AI flows
	var flows *ai.Flows
	if s.config.GeminiAPIKey != "" {
		completer, err := ai.NewGeminiCompleter(context.Background(), s.config.GeminiAPIKey, s.config.GeminiModel)
		if err != nil {
			return fmt.Errorf("failed to create completer: %w", err)
		}
		flows = ai.NewFlows(completer)
	}

	// Bind one adapter per channel
	s.channels.Store(common.ChannelBooks, NewBooksAdapter(s.library, s.gate))
	s.channels.Store(common.ChannelUsers, NewUsersAdapter(s.library))
	s.channels.Store(common.ChannelAuth, NewAuthAdapter(s.gate))
	s.channels.Store(common.ChannelPapers, NewPapersAdapter(s.library))
	s.channels.Store(common.ChannelCatalog, NewCatalogAdapter(s.library))
	s.channels.Store(common.ChannelNotifications, NewNotificationsAdapter(s.library))
	s.channels.Store(common.ChannelAI, NewAIAdapter(flows, s.library))

	logger.Infof("Library setup completed successfully")

	s.registerTransportHandler()

	return nil
}

// Serve starts the RPC server.
// This function initializes the object graph and starts the transport layer.
func (s *rpcServer) Serve() error {
	if err := s.init(); err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}

// newBackendStorage creates the configured storage backend.
func newBackendStorage(cfg common.StorageBackendConfig) (storage.IStorage, error) {
	opts := storage.Options{MaxValueBytes: cfg.MaxValueBytes}

	switch cfg.Backend {
	case "memory", "":
		return storage.NewMemoryStorage(opts), nil
	case "file":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("file storage requires a data directory")
		}
		return storage.NewFileStorage(cfg.DataDir, opts)
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite storage requires a data directory")
		}
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return storage.NewSQLiteStorage(filepath.Join(cfg.DataDir, "shelfd.db"), opts)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (must be one of memory, file, sqlite)", cfg.Backend)
	}
}
