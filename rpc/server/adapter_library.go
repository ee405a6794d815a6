package server

import (
	"fmt"
	"strings"

	"github.com/openshelf/shelfd/lib/auth"
	"github.com/openshelf/shelfd/lib/library"
	"github.com/openshelf/shelfd/rpc/common"
)

// The adapters in this file serve the collection channels. Requests are
// validated here, at the boundary, so invalid writes never reach the stores.

// --------------------------------------------------------------------------
// Validation helpers
// --------------------------------------------------------------------------

func requireFields(fields map[string]string) error {
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}
	return nil
}

// respondList encodes a result slice into a value response.
func respondList[T any](op common.Operation, list []T) *common.Message {
	value, err := common.EncodeValue(list)
	return common.NewValueResponse(op, value, err)
}

// respondEntity encodes a single entity into a value response, passing
// through an operation error.
func respondEntity[T any](op common.Operation, entity T, err error) *common.Message {
	if err != nil {
		return common.NewValueResponse(op, nil, err)
	}
	value, encErr := common.EncodeValue(entity)
	return common.NewValueResponse(op, value, encErr)
}

// --------------------------------------------------------------------------
// Books channel
// --------------------------------------------------------------------------

// NewBooksAdapter creates the adapter for the books channel. The gate
// provides the remark author: remarks require a student session.
func NewBooksAdapter(l *library.Library, g *auth.Gate) IRPCServerAdapter {
	return &booksAdapterImpl{library: l, gate: g}
}

type booksAdapterImpl struct {
	library *library.Library
	gate    *auth.Gate
}

func (a *booksAdapterImpl) Handle(req *common.Message) *common.Message {
	switch req.Op {
	case common.OpBookAdd:
		book, err := common.DecodeValue[library.Book](req.Value)
		if err != nil {
			return common.NewValueResponse(req.Op, nil, err)
		}
		if err := requireFields(map[string]string{
			"title":    book.Title,
			"author":   book.Author,
			"category": book.Category,
		}); err != nil {
			return common.NewValueResponse(req.Op, nil, err)
		}
		added, err := a.library.AddBook(book)
		return respondEntity(req.Op, added, err)

	case common.OpBookList:
		return respondList(req.Op, a.library.Books.List())

	case common.OpBookGet:
		book, ok := a.library.FindBookByID(req.ID)
		if !ok {
			return common.NewValueResponse(req.Op, nil, library.ErrNotFound)
		}
		return respondEntity(req.Op, book, nil)

	case common.OpBookSearch:
		filter, err := common.DecodeValue[common.BookSearch](req.Value)
		if err != nil {
			return common.NewValueResponse(req.Op, nil, err)
		}
		return respondList(req.Op, a.library.SearchBooks(filter.Query, filter.Category, filter.StudyYear))

	case common.OpBookDelete:
		return common.NewOkResponse(req.Op, a.library.DeleteBook(req.ID))

	case common.OpBookRemark:
		if err := requireFields(map[string]string{"text": req.Text}); err != nil {
			return common.NewValueResponse(req.Op, nil, err)
		}
		author, ok := a.gate.CurrentUser()
		if !ok {
			return common.NewValueResponse(req.Op, nil, fmt.Errorf("remarks require a student session"))
		}
		book, err := a.library.AddRemark(req.ID, req.Text, author)
		return respondEntity(req.Op, book, err)

	case common.OpBookReact:
		book, err := a.library.ReactToBook(req.ID, req.Flag)
		return respondEntity(req.Op, book, err)

	default:
		return common.NewErrorResponse(fmt.Sprintf("books channel: unsupported operation: %s", req.Op))
	}
}

// --------------------------------------------------------------------------
// Users channel
// --------------------------------------------------------------------------

// NewUsersAdapter creates the adapter for the users channel. Password
// hashes never leave the server; every user response is scrubbed.
func NewUsersAdapter(l *library.Library) IRPCServerAdapter {
	return &usersAdapterImpl{library: l}
}

type usersAdapterImpl struct {
	library *library.Library
}

func scrubUser(u library.User) library.User {
	u.PasswordHash = ""
	return u
}

func (a *usersAdapterImpl) Handle(req *common.Message) *common.Message {
	switch req.Op {
	case common.OpUserRegister:
		user, err := common.DecodeValue[library.User](req.Value)
		if err != nil {
			return common.NewValueResponse(req.Op, nil, err)
		}
		if err := requireFields(map[string]string{
			"name":     user.Name,
			"email":    user.Email,
			"password": req.Text,
		}); err != nil {
			return common.NewValueResponse(req.Op, nil, err)
		}
		if !strings.Contains(user.Email, "@") {
			return common.NewValueResponse(req.Op, nil, fmt.Errorf("invalid email address: %s", user.Email))
		}
		added, err := a.library.RegisterUser(user.Name, user.Email, req.Text, user.Branch, user.Year)
		return respondEntity(req.Op, scrubUser(added), err)

	case common.OpUserGet:
		user, ok := a.library.FindUserByEmail(req.Query)
		if !ok {
			return common.NewValueResponse(req.Op, nil, fmt.Errorf("no user with email %s", req.Query))
		}
		return respondEntity(req.Op, scrubUser(user), nil)

	case common.OpUserUpdate:
		patch, err := common.DecodeValue[library.User](req.Value)
		if err != nil {
			return common.NewValueResponse(req.Op, nil, err)
		}
		updated, err := a.library.UpdateUser(req.ID, func(u *library.User) {
			if patch.Name != "" {
				u.Name = patch.Name
			}
			if patch.Branch != "" {
				u.Branch = patch.Branch
			}
			if patch.Year != 0 {
				u.Year = patch.Year
			}
			if patch.AvatarRef != "" {
				u.AvatarRef = patch.AvatarRef
			}
		})
		return respondEntity(req.Op, scrubUser(updated), err)

	default:
		return common.NewErrorResponse(fmt.Sprintf("users channel: unsupported operation: %s", req.Op))
	}
}

// --------------------------------------------------------------------------
// Papers channel
// --------------------------------------------------------------------------

// NewPapersAdapter creates the adapter for the papers channel.
func NewPapersAdapter(l *library.Library) IRPCServerAdapter {
	return &papersAdapterImpl{library: l}
}

type papersAdapterImpl struct {
	library *library.Library
}

func (a *papersAdapterImpl) Handle(req *common.Message) *common.Message {
	switch req.Op {
	case common.OpPaperAdd:
		paper, err := common.DecodeValue[library.QuestionPaper](req.Value)
		if err != nil {
			return common.NewValueResponse(req.Op, nil, err)
		}
		if err := requireFields(map[string]string{
			"subject": paper.Subject,
			"branch":  paper.Branch,
		}); err != nil {
			return common.NewValueResponse(req.Op, nil, err)
		}
		added, err := a.library.AddPaper(paper)
		return respondEntity(req.Op, added, err)

	case common.OpPaperList:
		var filter common.PaperFilter
		if len(req.Value) > 0 {
			var err error
			if filter, err = common.DecodeValue[common.PaperFilter](req.Value); err != nil {
				return common.NewValueResponse(req.Op, nil, err)
			}
		}
		return respondList(req.Op, a.library.FilterPapers(filter.Branch, filter.StudyYear, filter.Semester, filter.ExamType, filter.Year))

	case common.OpPaperDelete:
		return common.NewOkResponse(req.Op, a.library.DeletePaper(req.ID))

	default:
		return common.NewErrorResponse(fmt.Sprintf("papers channel: unsupported operation: %s", req.Op))
	}
}

// --------------------------------------------------------------------------
// Catalog channel
// --------------------------------------------------------------------------

// NewCatalogAdapter creates the adapter for the catalog channel, serving
// both categories and branches.
func NewCatalogAdapter(l *library.Library) IRPCServerAdapter {
	return &catalogAdapterImpl{library: l}
}

type catalogAdapterImpl struct {
	library *library.Library
}

func (a *catalogAdapterImpl) Handle(req *common.Message) *common.Message {
	switch req.Op {
	case common.OpCategoryAdd:
		return common.NewOkResponse(req.Op, a.library.AddCategory(req.ID))
	case common.OpCategoryList:
		return respondList(req.Op, a.library.ListCategories())
	case common.OpCategoryDelete:
		return common.NewOkResponse(req.Op, a.library.DeleteCategory(req.ID))
	case common.OpBranchAdd:
		return common.NewOkResponse(req.Op, a.library.AddBranch(req.ID))
	case common.OpBranchList:
		return respondList(req.Op, a.library.ListBranches())
	case common.OpBranchDelete:
		return common.NewOkResponse(req.Op, a.library.DeleteBranch(req.ID))
	default:
		return common.NewErrorResponse(fmt.Sprintf("catalog channel: unsupported operation: %s", req.Op))
	}
}

// --------------------------------------------------------------------------
// Notifications channel
// --------------------------------------------------------------------------

// NewNotificationsAdapter creates the adapter for the notifications channel.
func NewNotificationsAdapter(l *library.Library) IRPCServerAdapter {
	return &notificationsAdapterImpl{library: l}
}

type notificationsAdapterImpl struct {
	library *library.Library
}

func (a *notificationsAdapterImpl) Handle(req *common.Message) *common.Message {
	switch req.Op {
	case common.OpNotificationList:
		return respondList(req.Op, a.library.Notifications.List())
	case common.OpNotificationMarkRead:
		return common.NewOkResponse(req.Op, a.library.MarkRead(req.ID))
	default:
		return common.NewErrorResponse(fmt.Sprintf("notifications channel: unsupported operation: %s", req.Op))
	}
}
