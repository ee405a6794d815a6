package library

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/openshelf/shelfd/lib/bus"
	"github.com/openshelf/shelfd/lib/storage"
	"github.com/openshelf/shelfd/lib/store"
)

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrDuplicate is returned when an entity with the same natural key
	// already exists (category/branch name, user email). The existence check
	// is advisory: it runs against the local collection and two concurrent
	// writers can both pass it. With a single authoritative writer per
	// deployment this is acceptable; a multi-writer setup needs a uniqueness
	// constraint in the backing storage instead.
	ErrDuplicate = errors.New("library: already exists")

	// ErrReserved is returned when a mutation targets the reserved "All"
	// catalog sentinel.
	ErrReserved = errors.New("library: reserved name")

	// ErrNotFound mirrors store.ErrNotFound for callers that only import this
	// package.
	ErrNotFound = store.ErrNotFound

	// ErrWrongCredentials is returned by CheckPassword for unknown emails and
	// wrong passwords alike, so callers cannot probe which of the two failed.
	ErrWrongCredentials = errors.New("library: wrong email or password")
)

// Storage slot names, one per collection.
const (
	slotBooks         = "books"
	slotUsers         = "users"
	slotCategories    = "categories"
	slotBranches      = "branches"
	slotPapers        = "papers"
	slotNotifications = "notifications"
)

func newID() string {
	return uuid.NewString()
}

// --------------------------------------------------------------------------
// Library
// --------------------------------------------------------------------------

// Library aggregates the six collection stores of the application over one
// storage and bus pair and implements the domain operations on top of them.
type Library struct {
	Books         *store.Store[Book]
	Users         *store.Store[User]
	Categories    *store.Store[Category]
	Branches      *store.Store[Branch]
	Papers        *store.Store[QuestionPaper]
	Notifications *store.Store[Notification]
}

// New wires the six stores. Load must be called before use.
func New(s storage.IStorage, b bus.IBus) *Library {
	return &Library{
		Books: store.New(store.Config[Book]{
			Name:   slotBooks,
			Seed:   seedBooks(),
			Order:  store.PrependNewest,
			IDOf:   func(v Book) string { return v.ID },
			WithID: func(v Book, id string) Book { v.ID = id; return v },
		}, s, b),
		Users: store.New(store.Config[User]{
			Name:   slotUsers,
			Order:  store.Append,
			IDOf:   func(v User) string { return v.ID },
			WithID: func(v User, id string) User { v.ID = id; return v },
		}, s, b),
		Categories: store.New(store.Config[Category]{
			Name:  slotCategories,
			Seed:  seedCategories(),
			Order: store.Append,
			IDOf:  func(v Category) string { return v.Name },
			// Reference entities are identified by their name; the generated
			// identifier is discarded.
			WithID: func(v Category, _ string) Category { return v },
		}, s, b),
		Branches: store.New(store.Config[Branch]{
			Name:   slotBranches,
			Seed:   seedBranches(),
			Order:  store.Append,
			IDOf:   func(v Branch) string { return v.Name },
			WithID: func(v Branch, _ string) Branch { return v },
		}, s, b),
		Papers: store.New(store.Config[QuestionPaper]{
			Name:   slotPapers,
			Seed:   seedPapers(),
			Order:  store.PrependNewest,
			IDOf:   func(v QuestionPaper) string { return v.ID },
			WithID: func(v QuestionPaper, id string) QuestionPaper { v.ID = id; return v },
		}, s, b),
		Notifications: store.New(store.Config[Notification]{
			Name:   slotNotifications,
			Seed:   seedNotifications(),
			Order:  store.PrependNewest,
			IDOf:   func(v Notification) string { return v.ID },
			WithID: func(v Notification, id string) Notification { v.ID = id; return v },
		}, s, b),
	}
}

// Load initializes all stores from their snapshots.
func (l *Library) Load() error {
	for _, load := range []func() error{
		l.Books.Load,
		l.Users.Load,
		l.Categories.Load,
		l.Branches.Load,
		l.Papers.Load,
		l.Notifications.Load,
	} {
		if err := load(); err != nil {
			return err
		}
	}
	return nil
}

// Close detaches all stores from the bus.
func (l *Library) Close() {
	l.Books.Close()
	l.Users.Close()
	l.Categories.Close()
	l.Branches.Close()
	l.Papers.Close()
	l.Notifications.Close()
}

// --------------------------------------------------------------------------
// Books
// --------------------------------------------------------------------------

// AddBook stores a new book. The identifier, zeroed reaction counters and the
// "new book" feed entry are assigned here; everything else comes from the
// caller. The new book appears first in the collection.
func (l *Library) AddBook(book Book) (Book, error) {
	book.ID = ""
	book.Likes = 0
	book.Dislikes = 0
	book.Remarks = nil

	added, err := l.Books.Add(book)
	if err != nil && !errors.Is(err, store.ErrNotPersisted) {
		return Book{}, err
	}

	l.Notify(NotificationNewBook, "New Book Added!", fmt.Sprintf("%q is now available.", added.Title))
	return added, err
}

// UpdateBook applies mutate to the stored book.
func (l *Library) UpdateBook(id string, mutate func(*Book)) (Book, error) {
	return l.Books.Update(id, mutate)
}

// DeleteBook removes a book.
func (l *Library) DeleteBook(id string) error {
	return l.Books.Delete(id)
}

// FindBookByID looks a book up in memory.
func (l *Library) FindBookByID(id string) (Book, bool) {
	return l.Books.Get(id)
}

// SearchBooks filters the in-memory collection. The query matches title and
// author case-insensitively; category narrows unless empty or the reserved
// "All"; studyYear narrows unless zero.
func (l *Library) SearchBooks(query, category string, studyYear int) []Book {
	query = strings.ToLower(strings.TrimSpace(query))
	return l.Books.Find(func(b Book) bool {
		if query != "" &&
			!strings.Contains(strings.ToLower(b.Title), query) &&
			!strings.Contains(strings.ToLower(b.Author), query) {
			return false
		}
		if category != "" && category != ReservedCatalogName && b.Category != category {
			return false
		}
		if studyYear != 0 && b.StudyYear != studyYear {
			return false
		}
		return true
	})
}

// AddRemark appends a remark to a book, snapshotting the author's display
// name and avatar at write time.
func (l *Library) AddRemark(bookID, text string, author User) (Book, error) {
	remark := Remark{
		ID:        newID(),
		Text:      text,
		Author:    author.Name,
		AvatarRef: author.AvatarRef,
		Timestamp: time.Now().UTC(),
	}
	return l.Books.Update(bookID, func(b *Book) {
		b.Remarks = append(b.Remarks, remark)
	})
}

// ReactToBook increments a book's like or dislike counter.
func (l *Library) ReactToBook(bookID string, like bool) (Book, error) {
	return l.Books.Update(bookID, func(b *Book) {
		if like {
			b.Likes++
		} else {
			b.Dislikes++
		}
	})
}

// SetSummary stores a generated summary on a book.
func (l *Library) SetSummary(bookID, summary string) (Book, error) {
	return l.Books.Update(bookID, func(b *Book) {
		b.Summary = summary
	})
}

// --------------------------------------------------------------------------
// Users
// --------------------------------------------------------------------------

// RegisterUser creates a user with a bcrypt-hashed password. The duplicate
// email check is case-insensitive and advisory (see ErrDuplicate).
func (l *Library) RegisterUser(name, email, password, branch string, year int) (User, error) {
	if _, ok := l.FindUserByEmail(email); ok {
		return User{}, fmt.Errorf("%w: user %s", ErrDuplicate, email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Branch:       branch,
		Year:         year,
		CreatedAt:    time.Now().UTC(),
	}
	added, err := l.Users.Add(user)
	if err != nil && !errors.Is(err, store.ErrNotPersisted) {
		return User{}, err
	}

	l.Notify(NotificationNewUser, "Account Created", fmt.Sprintf("Welcome to the library, %s!", added.Name))
	return added, err
}

// FindUserByEmail looks a user up by email, case-insensitively.
func (l *Library) FindUserByEmail(email string) (User, bool) {
	matches := l.Users.Find(func(u User) bool {
		return strings.EqualFold(u.Email, email)
	})
	if len(matches) == 0 {
		return User{}, false
	}
	return matches[0], true
}

// CheckPassword verifies a login attempt. Unknown email and wrong password
// both return ErrWrongCredentials.
func (l *Library) CheckPassword(email, password string) (User, error) {
	user, ok := l.FindUserByEmail(email)
	if !ok {
		return User{}, ErrWrongCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrWrongCredentials
	}
	return user, nil
}

// SetPassword re-hashes and stores a user's password, feeding the security
// notification.
func (l *Library) SetPassword(id, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if _, err := l.Users.Update(id, func(u *User) {
		u.PasswordHash = string(hash)
	}); err != nil {
		return err
	}
	l.Notify(NotificationPasswordChanged, "Security Alert", "Your password was changed successfully.")
	return nil
}

// UpdateUser applies mutate to the stored user.
func (l *Library) UpdateUser(id string, mutate func(*User)) (User, error) {
	return l.Users.Update(id, mutate)
}

// --------------------------------------------------------------------------
// Catalog (categories and branches)
// --------------------------------------------------------------------------

// AddCategory appends a category name. Names are compared case-insensitively;
// an existing name returns ErrDuplicate and leaves the list unchanged.
func (l *Library) AddCategory(name string) error {
	return l.addCatalogEntry(name, func(n string) error {
		_, err := l.Categories.Add(Category{Name: n})
		return err
	}, func(n string) bool {
		existing := l.Categories.Find(func(c Category) bool { return strings.EqualFold(c.Name, n) })
		return len(existing) > 0
	})
}

// DeleteCategory removes a category. The reserved "All" sentinel cannot be
// deleted.
func (l *Library) DeleteCategory(name string) error {
	if name == ReservedCatalogName {
		return fmt.Errorf("%w: %s", ErrReserved, name)
	}
	return l.Categories.Delete(name)
}

// ListCategories returns all category names in order.
func (l *Library) ListCategories() []string {
	categories := l.Categories.List()
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return names
}

// AddBranch appends a branch name with the same rules as AddCategory.
func (l *Library) AddBranch(name string) error {
	return l.addCatalogEntry(name, func(n string) error {
		_, err := l.Branches.Add(Branch{Name: n})
		return err
	}, func(n string) bool {
		existing := l.Branches.Find(func(b Branch) bool { return strings.EqualFold(b.Name, n) })
		return len(existing) > 0
	})
}

// DeleteBranch removes a branch, protecting the "All" sentinel.
func (l *Library) DeleteBranch(name string) error {
	if name == ReservedCatalogName {
		return fmt.Errorf("%w: %s", ErrReserved, name)
	}
	return l.Branches.Delete(name)
}

// ListBranches returns all branch names in order.
func (l *Library) ListBranches() []string {
	branches := l.Branches.List()
	names := make([]string, len(branches))
	for i, b := range branches {
		names[i] = b.Name
	}
	return names
}

func (l *Library) addCatalogEntry(name string, add func(string) error, exists func(string) bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("library: empty name")
	}
	if exists(name) {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	return add(name)
}

// --------------------------------------------------------------------------
// Question papers
// --------------------------------------------------------------------------

// AddPaper stores a new exam paper, newest first.
func (l *Library) AddPaper(paper QuestionPaper) (QuestionPaper, error) {
	paper.ID = ""
	return l.Papers.Add(paper)
}

// DeletePaper removes an exam paper.
func (l *Library) DeletePaper(id string) error {
	return l.Papers.Delete(id)
}

// FilterPapers narrows the paper collection. Empty strings and a zero year
// mean "any"; the reserved "All" branch matches everything.
func (l *Library) FilterPapers(branch, studyYear, semester, examType string, year int) []QuestionPaper {
	return l.Papers.Find(func(p QuestionPaper) bool {
		if branch != "" && branch != ReservedCatalogName && p.Branch != branch {
			return false
		}
		if studyYear != "" && p.StudyYear != studyYear {
			return false
		}
		if semester != "" && p.Semester != semester {
			return false
		}
		if examType != "" && p.ExamType != examType {
			return false
		}
		if year != 0 && p.Year != year {
			return false
		}
		return true
	})
}

// --------------------------------------------------------------------------
// Notifications
// --------------------------------------------------------------------------

// Notify appends an unread entry to the notification feed. Feed failures are
// swallowed: a full quota must never fail the operation that triggered the
// notification.
func (l *Library) Notify(t NotificationType, title, description string) {
	_, _ = l.Notifications.Add(Notification{
		Type:        t,
		Title:       title,
		Description: description,
		Timestamp:   time.Now().UTC(),
	})
}

// MarkRead flags a notification as read.
func (l *Library) MarkRead(id string) error {
	_, err := l.Notifications.Update(id, func(n *Notification) {
		n.Read = true
	})
	return err
}
