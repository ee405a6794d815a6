package server

import (
	"strings"
	"testing"

	"github.com/openshelf/shelfd/lib/auth"
	"github.com/openshelf/shelfd/lib/bus"
	"github.com/openshelf/shelfd/lib/library"
	"github.com/openshelf/shelfd/lib/storage"
	"github.com/openshelf/shelfd/rpc/common"
	"github.com/openshelf/shelfd/rpc/serializer"
	"github.com/openshelf/shelfd/rpc/transport"
)

func newTestBackend(t *testing.T) (*library.Library, *auth.Gate) {
	t.Helper()

	s := storage.NewMemoryStorage(storage.Options{})
	b := bus.NewMemoryBus()
	t.Cleanup(func() { _ = b.Close() })

	l := library.New(s, b)
	if err := l.Load(); err != nil {
		t.Fatalf("failed to load library: %v", err)
	}
	t.Cleanup(l.Close)

	g := auth.NewGate(l, s, b, auth.AdminCredentials{Email: "admin@shelfd.local", Password: "admin-pw"}, nil)
	if err := g.Load(); err != nil {
		t.Fatalf("failed to load gate: %v", err)
	}
	t.Cleanup(g.Close)

	return l, g
}

func mustEncode[T any](t *testing.T, v T) []byte {
	t.Helper()
	data, err := common.EncodeValue(v)
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	return data
}

func TestBooksAdapter(t *testing.T) {
	l, g := newTestBackend(t)
	adapter := NewBooksAdapter(l, g)

	t.Run("AddValidates", func(t *testing.T) {
		before := l.Books.Len()
		resp := adapter.Handle(common.NewValueRequest(common.OpBookAdd, mustEncode(t, library.Book{Author: "x"})))
		if resp.Ok || resp.Err == "" {
			t.Errorf("expected a validation error, got %+v", resp)
		}
		if l.Books.Len() != before {
			t.Error("expected invalid add to not touch the store")
		}
	})

	t.Run("AddAndGet", func(t *testing.T) {
		resp := adapter.Handle(common.NewValueRequest(common.OpBookAdd, mustEncode(t, library.Book{
			Title: "Operating Systems", Author: "Remzi Arpaci-Dusseau", Category: "Computer Science",
		})))
		if !resp.Ok {
			t.Fatalf("add failed: %s", resp.Err)
		}
		added, err := common.DecodeValue[library.Book](resp.Value)
		if err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if added.ID == "" {
			t.Error("expected a generated id")
		}

		got := adapter.Handle(common.NewIDRequest(common.OpBookGet, added.ID))
		if !got.Ok {
			t.Fatalf("get failed: %s", got.Err)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		resp := adapter.Handle(common.NewIDRequest(common.OpBookGet, "no-such-book"))
		if resp.Ok {
			t.Error("expected an error for a missing book")
		}
	})

	t.Run("Search", func(t *testing.T) {
		resp := adapter.Handle(common.NewValueRequest(common.OpBookSearch, mustEncode(t, common.BookSearch{Query: "networks"})))
		if !resp.Ok {
			t.Fatalf("search failed: %s", resp.Err)
		}
		books, err := common.DecodeValue[[]library.Book](resp.Value)
		if err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(books) != 1 || books[0].Title != "Computer Networks" {
			t.Errorf("expected the networks book, got %v", books)
		}
	})

	t.Run("RemarkNeedsSession", func(t *testing.T) {
		resp := adapter.Handle(common.NewRemarkRequest("seed-book-1", "nice"))
		if resp.Ok {
			t.Error("expected remarks to require a student session")
		}
	})

	t.Run("RemarkWithSession", func(t *testing.T) {
		if _, err := l.RegisterUser("Ada", "ada@example.com", "secret-pw", "Computer Science", 3); err != nil {
			t.Fatalf("failed to register: %v", err)
		}
		if _, err := g.Login("ada@example.com", "secret-pw"); err != nil {
			t.Fatalf("failed to login: %v", err)
		}

		resp := adapter.Handle(common.NewRemarkRequest("seed-book-1", "great chapter on routing"))
		if !resp.Ok {
			t.Fatalf("remark failed: %s", resp.Err)
		}
		book, err := common.DecodeValue[library.Book](resp.Value)
		if err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(book.Remarks) != 1 || book.Remarks[0].Author != "Ada" {
			t.Errorf("expected the remark with author snapshot, got %+v", book.Remarks)
		}
	})

	t.Run("React", func(t *testing.T) {
		resp := adapter.Handle(common.NewReactRequest("seed-book-1", true))
		if !resp.Ok {
			t.Fatalf("react failed: %s", resp.Err)
		}
	})

	t.Run("UnsupportedOperation", func(t *testing.T) {
		resp := adapter.Handle(common.NewRequest(common.OpPaperAdd))
		if resp.Err == "" {
			t.Error("expected an error for a foreign operation")
		}
	})
}

func TestUsersAdapter(t *testing.T) {
	l, _ := newTestBackend(t)
	adapter := NewUsersAdapter(l)

	register := &common.Message{
		Op:    common.OpUserRegister,
		Text:  "secret-pw",
		Value: mustEncode(t, library.User{Name: "Ada", Email: "ada@example.com", Branch: "Computer Science", Year: 3}),
	}

	resp := adapter.Handle(register)
	if !resp.Ok {
		t.Fatalf("register failed: %s", resp.Err)
	}
	user, err := common.DecodeValue[library.User](resp.Value)
	if err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if user.PasswordHash != "" {
		t.Error("expected the password hash to be scrubbed from responses")
	}

	t.Run("DuplicateEmail", func(t *testing.T) {
		if resp := adapter.Handle(register); resp.Ok {
			t.Error("expected duplicate registration to fail")
		}
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		resp := adapter.Handle(&common.Message{
			Op:    common.OpUserRegister,
			Text:  "pw",
			Value: mustEncode(t, library.User{Name: "Bob", Email: "not-an-email"}),
		})
		if resp.Ok || !strings.Contains(resp.Err, "email") {
			t.Errorf("expected an email validation error, got %+v", resp)
		}
	})

	t.Run("GetScrubs", func(t *testing.T) {
		resp := adapter.Handle(&common.Message{Op: common.OpUserGet, Query: "ada@example.com"})
		if !resp.Ok {
			t.Fatalf("get failed: %s", resp.Err)
		}
		got, err := common.DecodeValue[library.User](resp.Value)
		if err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if got.PasswordHash != "" {
			t.Error("expected the password hash to be scrubbed from responses")
		}
	})
}

func TestCatalogAdapter(t *testing.T) {
	l, _ := newTestBackend(t)
	adapter := NewCatalogAdapter(l)

	if resp := adapter.Handle(common.NewIDRequest(common.OpCategoryAdd, "Chemistry")); !resp.Ok {
		t.Fatalf("add failed: %s", resp.Err)
	}
	if resp := adapter.Handle(common.NewIDRequest(common.OpCategoryAdd, "chemistry")); resp.Ok {
		t.Error("expected case-insensitive duplicate to fail")
	}
	if resp := adapter.Handle(common.NewIDRequest(common.OpCategoryDelete, library.ReservedCatalogName)); resp.Ok {
		t.Error("expected the reserved sentinel to be protected")
	}

	resp := adapter.Handle(common.NewRequest(common.OpBranchList))
	if !resp.Ok {
		t.Fatalf("list failed: %s", resp.Err)
	}
	branches, err := common.DecodeValue[[]string](resp.Value)
	if err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(branches) == 0 || branches[0] != library.ReservedCatalogName {
		t.Errorf("expected the sentinel first, got %v", branches)
	}
}

func TestAuthAdapter(t *testing.T) {
	_, g := newTestBackend(t)
	adapter := NewAuthAdapter(g)

	t.Run("State", func(t *testing.T) {
		resp := adapter.Handle(common.NewRequest(common.OpAuthState))
		if !resp.Ok {
			t.Fatalf("state failed: %s", resp.Err)
		}
		session, err := common.DecodeValue[common.Session](resp.Value)
		if err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if session.State != string(auth.StateLoggedOut) {
			t.Errorf("expected logged out, got %s", session.State)
		}
	})

	t.Run("LoginAndLogout", func(t *testing.T) {
		resp := adapter.Handle(common.NewLoginRequest("admin@shelfd.local", "admin-pw"))
		if !resp.Ok {
			t.Fatalf("login failed: %s", resp.Err)
		}
		session, err := common.DecodeValue[common.Session](resp.Value)
		if err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if session.State != string(auth.StateAdmin) {
			t.Errorf("expected admin session, got %s", session.State)
		}

		if resp := adapter.Handle(common.NewRequest(common.OpAuthLogout)); !resp.Ok {
			t.Fatalf("logout failed: %s", resp.Err)
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		if resp := adapter.Handle(common.NewLoginRequest("admin@shelfd.local", "wrong")); resp.Ok {
			t.Error("expected login to fail")
		}
	})
}

func TestAIAdapterWithoutProvider(t *testing.T) {
	l, _ := newTestBackend(t)
	adapter := NewAIAdapter(nil, l)

	resp := adapter.Handle(common.NewIDRequest(common.OpAISummarize, "seed-book-1"))
	if resp.Err == "" {
		t.Error("expected an error without a configured provider")
	}
}

// fakeTransport captures the registered handler for direct dispatch tests.
type fakeTransport struct {
	handler transport.ServerHandleFunc
}

func (f *fakeTransport) RegisterHandler(h transport.ServerHandleFunc) { f.handler = h }
func (f *fakeTransport) Listen(common.ServerConfig) error            { return nil }

func TestServerDispatch(t *testing.T) {
	ft := &fakeTransport{}
	ser := serializer.NewJSONSerializer()

	srv := NewRPCServer(common.ServerConfig{
		Transport:  common.ServerTransportConfig{Kind: "http", Endpoint: ":0"},
		Storage:    common.StorageBackendConfig{Backend: "memory"},
		Serializer: "json",
		LogLevel:   "error",
	}, ft, ser)
	if err := srv.init(); err != nil {
		t.Fatalf("failed to init server: %v", err)
	}

	roundTrip := func(channel string, req *common.Message) *common.Message {
		t.Helper()
		reqBytes, err := ser.Serialize(*req)
		if err != nil {
			t.Fatalf("failed to serialize: %v", err)
		}
		respBytes := ft.handler(channel, reqBytes)
		var resp common.Message
		if err := ser.Deserialize(respBytes, &resp); err != nil {
			t.Fatalf("failed to deserialize: %v", err)
		}
		return &resp
	}

	t.Run("RoutedToAdapter", func(t *testing.T) {
		resp := roundTrip(common.ChannelBooks, common.NewRequest(common.OpBookList))
		if !resp.Ok {
			t.Fatalf("list failed: %s", resp.Err)
		}
	})

	t.Run("UnknownChannel", func(t *testing.T) {
		resp := roundTrip("not-a-channel", common.NewRequest(common.OpBookList))
		if resp.Err == "" {
			t.Error("expected an error for an unknown channel")
		}
	})

	t.Run("WrongChannel", func(t *testing.T) {
		resp := roundTrip(common.ChannelPapers, common.NewRequest(common.OpBookList))
		if resp.Err == "" {
			t.Error("expected an error for an operation on the wrong channel")
		}
	})

	t.Run("Garbage", func(t *testing.T) {
		respBytes := ft.handler(common.ChannelBooks, []byte("not a message"))
		var resp common.Message
		if err := ser.Deserialize(respBytes, &resp); err != nil {
			t.Fatalf("failed to deserialize: %v", err)
		}
		if resp.Err == "" {
			t.Error("expected an error for an undecodable request")
		}
	})
}
