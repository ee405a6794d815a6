package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Channels
// --------------------------------------------------------------------------

// Channel names, one per concern. A transport routes every message by its
// channel; the server registers one adapter per channel.
const (
	ChannelBooks         = "books"
	ChannelUsers         = "users"
	ChannelAuth          = "auth"
	ChannelPapers        = "papers"
	ChannelCatalog       = "catalog"
	ChannelNotifications = "notifications"
	ChannelAI            = "ai"
)

// Channels lists all channel names a server must serve.
func Channels() []string {
	return []string{
		ChannelBooks,
		ChannelUsers,
		ChannelAuth,
		ChannelPapers,
		ChannelCatalog,
		ChannelNotifications,
		ChannelAI,
	}
}

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the operation.
type Message struct {
	// Op selects the operation
	Op Operation `json:"op"`

	// General fields
	ID    string `json:"id,omitempty"`    // entity id or catalog name
	Query string `json:"query,omitempty"` // email, search query or question
	Text  string `json:"text,omitempty"`  // remark text, password, code
	Flag  bool   `json:"flag,omitempty"`  // like vs dislike
	Value []byte `json:"value,omitempty"` // encoded entity, filter or result

	// Response only fields
	Ok  bool   `json:"ok,omitempty"`
	Err string `json:"err,omitempty"` // empty if no error
}

// EncodeValue encodes an entity, filter or result for the Value field.
func EncodeValue[T any](v T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	return data, nil
}

// DecodeValue decodes a Value field.
func DecodeValue[T any](data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("failed to decode value: %w", err)
	}
	return v, nil
}

// --------------------------------------------------------------------------
// Wire-level filter types
// --------------------------------------------------------------------------

// BookSearch is the encoded payload of a book search request. Zero values
// mean "any".
type BookSearch struct {
	Query     string `json:"query,omitempty"`
	Category  string `json:"category,omitempty"`
	StudyYear int    `json:"studyYear,omitempty"`
}

// PaperFilter is the encoded payload of a paper list request. Zero values
// mean "any".
type PaperFilter struct {
	Branch    string `json:"branch,omitempty"`
	StudyYear string `json:"studyYear,omitempty"`
	Semester  string `json:"semester,omitempty"`
	ExamType  string `json:"examType,omitempty"`
	Year      int    `json:"year,omitempty"`
}

// Session is the encoded payload of auth state responses.
type Session struct {
	State string `json:"state"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewRequest creates a request carrying only the operation.
func NewRequest(op Operation) *Message {
	return &Message{Op: op}
}

// NewIDRequest creates a request addressing an entity by id or name.
func NewIDRequest(op Operation, id string) *Message {
	return &Message{Op: op, ID: id}
}

// NewValueRequest creates a request carrying an encoded entity or filter.
func NewValueRequest(op Operation, value []byte) *Message {
	return &Message{Op: op, Value: value}
}

// NewRemarkRequest creates a book remark request.
func NewRemarkRequest(bookID, text string) *Message {
	return &Message{Op: OpBookRemark, ID: bookID, Text: text}
}

// NewReactRequest creates a book reaction request.
func NewReactRequest(bookID string, like bool) *Message {
	return &Message{Op: OpBookReact, ID: bookID, Flag: like}
}

// NewLoginRequest creates a login request.
func NewLoginRequest(email, password string) *Message {
	return &Message{Op: OpAuthLogin, Query: email, Text: password}
}

// NewResetRequest creates a password reset step request. Code carries the
// verification code for OpAuthVerifyCode and the new password for
// OpAuthCompleteReset.
func NewResetRequest(op Operation, email, code string) *Message {
	return &Message{Op: op, Query: email, Text: code}
}

// NewAskRequest creates a question request about a book.
func NewAskRequest(bookID, question string) *Message {
	return &Message{Op: OpAIAsk, ID: bookID, Query: question}
}

// NewOkResponse creates a response reporting success without a payload.
func NewOkResponse(op Operation, err error) *Message {
	msg := &Message{Op: op, Ok: err == nil}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewValueResponse creates a response carrying an encoded result.
func NewValueResponse(op Operation, value []byte, err error) *Message {
	msg := &Message{Op: op, Ok: err == nil, Value: value}
	if err != nil {
		msg.Err = err.Error()
		msg.Value = nil
	}
	return msg
}

// NewTextResponse creates a response carrying a text result (summary,
// answer).
func NewTextResponse(op Operation, text string, err error) *Message {
	msg := &Message{Op: op, Ok: err == nil, Text: text}
	if err != nil {
		msg.Err = err.Error()
		msg.Text = ""
	}
	return msg
}

// NewErrorResponse creates a response for a request that never reached an
// operation (unknown channel, undecodable message).
func NewErrorResponse(err string) *Message {
	return &Message{Op: OpError, Err: err}
}

// --------------------------------------------------------------------------
// Operation Definition
// --------------------------------------------------------------------------

// Operation defines the operation a message requests or answers.
type Operation uint8

const (
	OpUnknown Operation = iota
	OpError

	// books channel

	OpBookAdd
	OpBookList
	OpBookGet
	OpBookSearch
	OpBookDelete
	OpBookRemark
	OpBookReact

	// users channel

	OpUserRegister
	OpUserGet
	OpUserUpdate

	// auth channel

	OpAuthLogin
	OpAuthLogout
	OpAuthState
	OpAuthRequestReset
	OpAuthVerifyCode
	OpAuthCompleteReset

	// papers channel

	OpPaperAdd
	OpPaperList
	OpPaperDelete

	// catalog channel

	OpCategoryAdd
	OpCategoryList
	OpCategoryDelete
	OpBranchAdd
	OpBranchList
	OpBranchDelete

	// notifications channel

	OpNotificationList
	OpNotificationMarkRead

	// ai channel

	OpAISummarize
	OpAIAsk
)

var opNames = map[Operation]string{
	OpError:                "error",
	OpBookAdd:              "book.add",
	OpBookList:             "book.list",
	OpBookGet:              "book.get",
	OpBookSearch:           "book.search",
	OpBookDelete:           "book.delete",
	OpBookRemark:           "book.remark",
	OpBookReact:            "book.react",
	OpUserRegister:         "user.register",
	OpUserGet:              "user.get",
	OpUserUpdate:           "user.update",
	OpAuthLogin:            "auth.login",
	OpAuthLogout:           "auth.logout",
	OpAuthState:            "auth.state",
	OpAuthRequestReset:     "auth.requestReset",
	OpAuthVerifyCode:       "auth.verifyCode",
	OpAuthCompleteReset:    "auth.completeReset",
	OpPaperAdd:             "paper.add",
	OpPaperList:            "paper.list",
	OpPaperDelete:          "paper.delete",
	OpCategoryAdd:          "category.add",
	OpCategoryList:         "category.list",
	OpCategoryDelete:       "category.delete",
	OpBranchAdd:            "branch.add",
	OpBranchList:           "branch.list",
	OpBranchDelete:         "branch.delete",
	OpNotificationList:     "notification.list",
	OpNotificationMarkRead: "notification.markRead",
	OpAISummarize:          "ai.summarize",
	OpAIAsk:                "ai.ask",
}

var opValues = func() map[string]Operation {
	m := make(map[string]Operation, len(opNames))
	for op, name := range opNames {
		m[name] = op
	}
	return m
}()

// opChannels routes every operation to its channel.
var opChannels = map[Operation]string{
	OpBookAdd:              ChannelBooks,
	OpBookList:             ChannelBooks,
	OpBookGet:              ChannelBooks,
	OpBookSearch:           ChannelBooks,
	OpBookDelete:           ChannelBooks,
	OpBookRemark:           ChannelBooks,
	OpBookReact:            ChannelBooks,
	OpUserRegister:         ChannelUsers,
	OpUserGet:              ChannelUsers,
	OpUserUpdate:           ChannelUsers,
	OpAuthLogin:            ChannelAuth,
	OpAuthLogout:           ChannelAuth,
	OpAuthState:            ChannelAuth,
	OpAuthRequestReset:     ChannelAuth,
	OpAuthVerifyCode:       ChannelAuth,
	OpAuthCompleteReset:    ChannelAuth,
	OpPaperAdd:             ChannelPapers,
	OpPaperList:            ChannelPapers,
	OpPaperDelete:          ChannelPapers,
	OpCategoryAdd:          ChannelCatalog,
	OpCategoryList:         ChannelCatalog,
	OpCategoryDelete:       ChannelCatalog,
	OpBranchAdd:            ChannelCatalog,
	OpBranchList:           ChannelCatalog,
	OpBranchDelete:         ChannelCatalog,
	OpNotificationList:     ChannelNotifications,
	OpNotificationMarkRead: ChannelNotifications,
	OpAISummarize:          ChannelAI,
	OpAIAsk:                ChannelAI,
}

// String returns the wire name of an operation.
func (op Operation) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "unknown"
}

// Channel returns the channel an operation belongs to, or "" for control
// operations.
func (op Operation) Channel() string {
	return opChannels[op]
}

// MarshalJSON serializes an Operation as its wire name.
func (op Operation) MarshalJSON() ([]byte, error) {
	return json.Marshal(op.String())
}

// UnmarshalJSON deserializes an Operation from its wire name.
func (op *Operation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := opValues[s]
	if !ok {
		return fmt.Errorf("unknown operation: %s", s)
	}
	*op = v
	return nil
}
