package library

import "time"

// Remark is a comment left on a book. The author's display name and avatar
// are snapshotted at write time; remarks never join against the user
// collection.
type Remark struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	AvatarRef string    `json:"avatarRef,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Book is a library content entity. ImageRef and DocumentRef hold either a
// plain URL or an embedded base64 data URI; embedded documents are the usual
// cause of snapshot quota overflows.
type Book struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Year        int      `json:"year"`
	StudyYear   int      `json:"studyYear"`
	ImageRef    string   `json:"imageRef,omitempty"`
	DocumentRef string   `json:"documentRef,omitempty"`
	Likes       int      `json:"likes"`
	Dislikes    int      `json:"dislikes"`
	Rating      float64  `json:"rating"`
	Language    string   `json:"language,omitempty"`
	Pages       int      `json:"pages,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Remarks     []Remark `json:"remarks,omitempty"`
}

// User is a registered reader. Only the bcrypt hash of the password is ever
// stored.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Branch       string    `json:"branch"`
	Year         int       `json:"year"`
	AvatarRef    string    `json:"avatarRef,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// QuestionPaper is an uploaded exam paper.
type QuestionPaper struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	Year        int    `json:"year"`
	Semester    string `json:"semester"`
	ExamType    string `json:"examType"`
	Branch      string `json:"branch"`
	StudyYear   string `json:"studyYear"`
	DocumentRef string `json:"documentRef,omitempty"`
}

// NotificationType enumerates the events the notification feed reports.
type NotificationType string

const (
	NotificationNewBook         NotificationType = "new_book"
	NotificationNewUser         NotificationType = "new_user"
	NotificationPasswordChanged NotificationType = "password_changed"
)

// Notification is an append-only feed entry, newest first.
type Notification struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Timestamp   time.Time        `json:"timestamp"`
	Read        bool             `json:"read"`
}

// Category is a reference entity identified by its name. The name "All" is a
// reserved sentinel present in every catalog and can never be removed.
type Category struct {
	Name string `json:"name"`
}

// Branch is a reference entity identified by its name, with the same "All"
// sentinel rule as Category.
type Branch struct {
	Name string `json:"name"`
}

// ReservedCatalogName is the sentinel member of the category and branch lists.
const ReservedCatalogName = "All"
