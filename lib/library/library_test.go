package library

import (
	"errors"
	"strings"
	"testing"

	"github.com/openshelf/shelfd/lib/bus"
	"github.com/openshelf/shelfd/lib/storage"
	"github.com/openshelf/shelfd/lib/store"
)

// newTestLibrary wires a library over in-memory ports and loads it.
func newTestLibrary(t *testing.T) *Library {
	t.Helper()

	b := bus.NewMemoryBus()
	t.Cleanup(func() { _ = b.Close() })

	l := New(storage.NewMemoryStorage(storage.Options{}), b)
	if err := l.Load(); err != nil {
		t.Fatalf("failed to load library: %v", err)
	}
	t.Cleanup(l.Close)
	return l
}

func TestAddBook(t *testing.T) {
	l := newTestLibrary(t)

	added, err := l.AddBook(Book{
		Title:    "Operating Systems",
		Author:   "Remzi Arpaci-Dusseau",
		Category: "Computer Science",
		// caller-supplied counters must be discarded
		Likes:    99,
		Dislikes: 99,
	})
	if err != nil {
		t.Fatalf("failed to add book: %v", err)
	}

	if added.ID == "" {
		t.Error("expected a generated id")
	}
	if added.Likes != 0 || added.Dislikes != 0 {
		t.Errorf("expected zeroed counters, got likes=%d dislikes=%d", added.Likes, added.Dislikes)
	}

	books := l.Books.List()
	if books[0].ID != added.ID {
		t.Errorf("expected new book first, got %q", books[0].Title)
	}

	feed := l.Notifications.List()
	if feed[0].Type != NotificationNewBook || !strings.Contains(feed[0].Description, "Operating Systems") {
		t.Errorf("expected new-book feed entry, got %+v", feed[0])
	}
}

func TestSearchBooks(t *testing.T) {
	l := newTestLibrary(t)

	t.Run("QueryMatchesTitleAndAuthor", func(t *testing.T) {
		if got := l.SearchBooks("networks", "", 0); len(got) != 1 || got[0].Title != "Computer Networks" {
			t.Errorf("expected the networks book, got %v", got)
		}
		if got := l.SearchBooks("RATTAN", "", 0); len(got) != 1 {
			t.Errorf("expected author match, got %v", got)
		}
	})

	t.Run("CategoryNarrows", func(t *testing.T) {
		if got := l.SearchBooks("", "Mechanical", 0); len(got) != 1 || got[0].Category != "Mechanical" {
			t.Errorf("expected only mechanical books, got %v", got)
		}
	})

	t.Run("AllIsNoFilter", func(t *testing.T) {
		if got := l.SearchBooks("", ReservedCatalogName, 0); len(got) != l.Books.Len() {
			t.Errorf("expected all books, got %d", len(got))
		}
	})

	t.Run("StudyYearNarrows", func(t *testing.T) {
		if got := l.SearchBooks("", "", 3); len(got) != 1 || got[0].StudyYear != 3 {
			t.Errorf("expected study year filter, got %v", got)
		}
	})

	t.Run("NoMatch", func(t *testing.T) {
		if got := l.SearchBooks("quantum basket weaving", "", 0); len(got) != 0 {
			t.Errorf("expected no matches, got %v", got)
		}
	})
}

func TestRemarksAndReactions(t *testing.T) {
	l := newTestLibrary(t)

	author := User{Name: "Ada", AvatarRef: "https://example.com/ada.png"}
	book, err := l.AddRemark("seed-book-1", "great chapter on routing", author)
	if err != nil {
		t.Fatalf("failed to add remark: %v", err)
	}

	if len(book.Remarks) != 1 {
		t.Fatalf("expected one remark, got %d", len(book.Remarks))
	}
	remark := book.Remarks[0]
	if remark.ID == "" || remark.Author != "Ada" || remark.AvatarRef != author.AvatarRef {
		t.Errorf("expected author snapshot on remark, got %+v", remark)
	}
	if remark.Timestamp.IsZero() {
		t.Error("expected a timestamp on the remark")
	}

	before, _ := l.FindBookByID("seed-book-1")
	liked, err := l.ReactToBook("seed-book-1", true)
	if err != nil {
		t.Fatalf("failed to like: %v", err)
	}
	if liked.Likes != before.Likes+1 {
		t.Errorf("expected likes %d, got %d", before.Likes+1, liked.Likes)
	}
	disliked, err := l.ReactToBook("seed-book-1", false)
	if err != nil {
		t.Fatalf("failed to dislike: %v", err)
	}
	if disliked.Dislikes != before.Dislikes+1 {
		t.Errorf("expected dislikes %d, got %d", before.Dislikes+1, disliked.Dislikes)
	}

	if _, err := l.AddRemark("no-such-book", "lost", author); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRegisterUser(t *testing.T) {
	l := newTestLibrary(t)

	user, err := l.RegisterUser("Ada Lovelace", "ada@example.com", "secret-pw", "Computer Science", 3)
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	if user.ID == "" {
		t.Error("expected a generated id")
	}
	if user.PasswordHash == "secret-pw" || user.PasswordHash == "" {
		t.Error("expected a password hash, not the plaintext")
	}

	t.Run("DuplicateEmail", func(t *testing.T) {
		if _, err := l.RegisterUser("Imposter", "ADA@example.com", "other", "Civil", 1); !errors.Is(err, ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
		if l.Users.Len() != 1 {
			t.Errorf("expected one user, got %d", l.Users.Len())
		}
	})

	t.Run("CheckPassword", func(t *testing.T) {
		got, err := l.CheckPassword("ada@example.com", "secret-pw")
		if err != nil {
			t.Fatalf("expected login to succeed: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("expected user %s, got %s", user.ID, got.ID)
		}

		if _, err := l.CheckPassword("ada@example.com", "wrong"); !errors.Is(err, ErrWrongCredentials) {
			t.Errorf("expected ErrWrongCredentials, got %v", err)
		}
		if _, err := l.CheckPassword("nobody@example.com", "secret-pw"); !errors.Is(err, ErrWrongCredentials) {
			t.Errorf("expected ErrWrongCredentials for unknown email, got %v", err)
		}
	})

	t.Run("SetPassword", func(t *testing.T) {
		if err := l.SetPassword(user.ID, "new-pw"); err != nil {
			t.Fatalf("failed to set password: %v", err)
		}
		if _, err := l.CheckPassword("ada@example.com", "secret-pw"); err == nil {
			t.Error("expected old password to be rejected")
		}
		if _, err := l.CheckPassword("ada@example.com", "new-pw"); err != nil {
			t.Errorf("expected new password to work: %v", err)
		}

		feed := l.Notifications.List()
		if feed[0].Type != NotificationPasswordChanged {
			t.Errorf("expected security alert first in feed, got %+v", feed[0])
		}
	})
}

func TestCatalog(t *testing.T) {
	l := newTestLibrary(t)

	t.Run("AddAndDelete", func(t *testing.T) {
		if err := l.AddCategory("Chemistry"); err != nil {
			t.Fatalf("failed to add category: %v", err)
		}
		names := l.ListCategories()
		if names[len(names)-1] != "Chemistry" {
			t.Errorf("expected new category appended, got %v", names)
		}
		if err := l.DeleteCategory("Chemistry"); err != nil {
			t.Fatalf("failed to delete category: %v", err)
		}
	})

	t.Run("DuplicateIsCaseInsensitive", func(t *testing.T) {
		before := l.ListCategories()
		if err := l.AddCategory("computer science"); !errors.Is(err, ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
		if got := l.ListCategories(); len(got) != len(before) {
			t.Errorf("expected catalog unchanged, got %v", got)
		}
	})

	t.Run("ReservedSentinel", func(t *testing.T) {
		if err := l.DeleteCategory(ReservedCatalogName); !errors.Is(err, ErrReserved) {
			t.Errorf("expected ErrReserved, got %v", err)
		}
		if err := l.DeleteBranch(ReservedCatalogName); !errors.Is(err, ErrReserved) {
			t.Errorf("expected ErrReserved, got %v", err)
		}
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		if err := l.DeleteCategory("No Such Category"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("EmptyName", func(t *testing.T) {
		if err := l.AddBranch("   "); err == nil {
			t.Error("expected empty name to be rejected")
		}
	})

	t.Run("Branches", func(t *testing.T) {
		if err := l.AddBranch("Chemical"); err != nil {
			t.Fatalf("failed to add branch: %v", err)
		}
		if err := l.AddBranch("chemical"); !errors.Is(err, ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
		if err := l.DeleteBranch("Chemical"); err != nil {
			t.Fatalf("failed to delete branch: %v", err)
		}
	})
}

func TestPapers(t *testing.T) {
	l := newTestLibrary(t)

	added, err := l.AddPaper(QuestionPaper{
		Subject:   "Thermodynamics",
		Year:      2024,
		Semester:  "4th Sem",
		ExamType:  "Sem",
		Branch:    "Mechanical",
		StudyYear: "2nd Year",
	})
	if err != nil {
		t.Fatalf("failed to add paper: %v", err)
	}
	if added.ID == "" {
		t.Error("expected a generated id")
	}
	if papers := l.Papers.List(); papers[0].ID != added.ID {
		t.Errorf("expected new paper first, got %+v", papers[0])
	}

	t.Run("Filter", func(t *testing.T) {
		if got := l.FilterPapers("Mechanical", "", "", "", 0); len(got) != 1 || got[0].Subject != "Thermodynamics" {
			t.Errorf("expected branch filter, got %v", got)
		}
		if got := l.FilterPapers(ReservedCatalogName, "", "", "Sem", 0); len(got) != 2 {
			t.Errorf("expected two sem papers, got %v", got)
		}
		if got := l.FilterPapers("", "", "", "", 2022); len(got) != 1 || got[0].Subject != "Structural Analysis" {
			t.Errorf("expected year filter, got %v", got)
		}
	})

	if err := l.DeletePaper(added.ID); err != nil {
		t.Fatalf("failed to delete paper: %v", err)
	}
	if err := l.DeletePaper(added.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestNotifications(t *testing.T) {
	l := newTestLibrary(t)

	l.Notify(NotificationNewBook, "New Book Added!", "test entry")
	feed := l.Notifications.List()
	if feed[0].Read {
		t.Error("expected new entries to be unread")
	}

	if err := l.MarkRead(feed[0].ID); err != nil {
		t.Fatalf("failed to mark read: %v", err)
	}
	if got, _ := l.Notifications.Get(feed[0].ID); !got.Read {
		t.Error("expected entry to be read")
	}

	if err := l.MarkRead("no-such-entry"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetSummary(t *testing.T) {
	l := newTestLibrary(t)

	book, err := l.SetSummary("seed-book-2", "A compact tour of machine kinematics.")
	if err != nil {
		t.Fatalf("failed to set summary: %v", err)
	}
	if book.Summary == "" {
		t.Error("expected summary to be stored")
	}
}
