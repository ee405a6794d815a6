package client

import (
	"github.com/openshelf/shelfd/lib/library"
	"github.com/openshelf/shelfd/rpc/common"
	"github.com/openshelf/shelfd/rpc/serializer"
	"github.com/openshelf/shelfd/rpc/transport"
)

// NewLibraryClient creates a client for the collection channels (books,
// users, papers, catalog, notifications).
// The function takes a config, a transport and a serializer as parameters.
func NewLibraryClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*LibraryClient, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &LibraryClient{
		rpcClientAdapter{
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

// LibraryClient is the typed client for the collection channels.
type LibraryClient struct {
	rpcClientAdapter
}

// Close closes the underlying transport.
func (c *LibraryClient) Close() error {
	return c.transport.Close()
}

// --------------------------------------------------------------------------
// Books
// --------------------------------------------------------------------------

func (c *LibraryClient) AddBook(book library.Book) (library.Book, error) {
	value, err := common.EncodeValue(book)
	if err != nil {
		return library.Book{}, err
	}
	return invokeDecoded[library.Book](&c.rpcClientAdapter, common.NewValueRequest(common.OpBookAdd, value))
}

func (c *LibraryClient) ListBooks() ([]library.Book, error) {
	return invokeDecoded[[]library.Book](&c.rpcClientAdapter, common.NewRequest(common.OpBookList))
}

func (c *LibraryClient) GetBook(id string) (library.Book, error) {
	return invokeDecoded[library.Book](&c.rpcClientAdapter, common.NewIDRequest(common.OpBookGet, id))
}

func (c *LibraryClient) SearchBooks(filter common.BookSearch) ([]library.Book, error) {
	value, err := common.EncodeValue(filter)
	if err != nil {
		return nil, err
	}
	return invokeDecoded[[]library.Book](&c.rpcClientAdapter, common.NewValueRequest(common.OpBookSearch, value))
}

func (c *LibraryClient) DeleteBook(id string) error {
	_, err := c.invoke(common.NewIDRequest(common.OpBookDelete, id))
	return err
}

func (c *LibraryClient) AddRemark(bookID, text string) (library.Book, error) {
	return invokeDecoded[library.Book](&c.rpcClientAdapter, common.NewRemarkRequest(bookID, text))
}

func (c *LibraryClient) ReactToBook(bookID string, like bool) (library.Book, error) {
	return invokeDecoded[library.Book](&c.rpcClientAdapter, common.NewReactRequest(bookID, like))
}

// --------------------------------------------------------------------------
// Users
// --------------------------------------------------------------------------

// RegisterUser creates an account. The password travels in the message text
// field and is hashed on the server.
func (c *LibraryClient) RegisterUser(user library.User, password string) (library.User, error) {
	value, err := common.EncodeValue(user)
	if err != nil {
		return library.User{}, err
	}
	req := common.NewValueRequest(common.OpUserRegister, value)
	req.Text = password
	return invokeDecoded[library.User](&c.rpcClientAdapter, req)
}

func (c *LibraryClient) GetUser(email string) (library.User, error) {
	req := common.NewRequest(common.OpUserGet)
	req.Query = email
	return invokeDecoded[library.User](&c.rpcClientAdapter, req)
}

// UpdateUser patches a user record. Zero fields of the patch are left
// unchanged on the server.
func (c *LibraryClient) UpdateUser(id string, patch library.User) (library.User, error) {
	value, err := common.EncodeValue(patch)
	if err != nil {
		return library.User{}, err
	}
	req := common.NewValueRequest(common.OpUserUpdate, value)
	req.ID = id
	return invokeDecoded[library.User](&c.rpcClientAdapter, req)
}

// --------------------------------------------------------------------------
// Papers
// --------------------------------------------------------------------------

func (c *LibraryClient) AddPaper(paper library.QuestionPaper) (library.QuestionPaper, error) {
	value, err := common.EncodeValue(paper)
	if err != nil {
		return library.QuestionPaper{}, err
	}
	return invokeDecoded[library.QuestionPaper](&c.rpcClientAdapter, common.NewValueRequest(common.OpPaperAdd, value))
}

func (c *LibraryClient) ListPapers(filter common.PaperFilter) ([]library.QuestionPaper, error) {
	value, err := common.EncodeValue(filter)
	if err != nil {
		return nil, err
	}
	return invokeDecoded[[]library.QuestionPaper](&c.rpcClientAdapter, common.NewValueRequest(common.OpPaperList, value))
}

func (c *LibraryClient) DeletePaper(id string) error {
	_, err := c.invoke(common.NewIDRequest(common.OpPaperDelete, id))
	return err
}

// --------------------------------------------------------------------------
// Catalog
// --------------------------------------------------------------------------

func (c *LibraryClient) AddCategory(name string) error {
	_, err := c.invoke(common.NewIDRequest(common.OpCategoryAdd, name))
	return err
}

func (c *LibraryClient) ListCategories() ([]string, error) {
	return invokeDecoded[[]string](&c.rpcClientAdapter, common.NewRequest(common.OpCategoryList))
}

func (c *LibraryClient) DeleteCategory(name string) error {
	_, err := c.invoke(common.NewIDRequest(common.OpCategoryDelete, name))
	return err
}

func (c *LibraryClient) AddBranch(name string) error {
	_, err := c.invoke(common.NewIDRequest(common.OpBranchAdd, name))
	return err
}

func (c *LibraryClient) ListBranches() ([]string, error) {
	return invokeDecoded[[]string](&c.rpcClientAdapter, common.NewRequest(common.OpBranchList))
}

func (c *LibraryClient) DeleteBranch(name string) error {
	_, err := c.invoke(common.NewIDRequest(common.OpBranchDelete, name))
	return err
}

// --------------------------------------------------------------------------
// Notifications
// --------------------------------------------------------------------------

func (c *LibraryClient) ListNotifications() ([]library.Notification, error) {
	return invokeDecoded[[]library.Notification](&c.rpcClientAdapter, common.NewRequest(common.OpNotificationList))
}

func (c *LibraryClient) MarkNotificationRead(id string) error {
	_, err := c.invoke(common.NewIDRequest(common.OpNotificationMarkRead, id))
	return err
}
