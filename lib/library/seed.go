package library

import "time"

// Seed collections used when a snapshot slot is empty or malformed. Content
// mirrors the starter catalog of the original application, trimmed to a small
// representative set.

func seedCategories() []Category {
	return []Category{
		{Name: ReservedCatalogName},
		{Name: "Computer Science"},
		{Name: "Mechanical"},
		{Name: "Electronics"},
		{Name: "Civil"},
		{Name: "Mathematics"},
	}
}

func seedBranches() []Branch {
	return []Branch{
		{Name: ReservedCatalogName},
		{Name: "Computer Science"},
		{Name: "Mechanical"},
		{Name: "Electronics"},
		{Name: "Civil"},
	}
}

func seedBooks() []Book {
	return []Book{
		{
			ID:          "seed-book-1",
			Title:       "Computer Networks",
			Author:      "Andrew S. Tanenbaum",
			Description: "A systematic introduction to computer networking, from the physical layer up to the application layer.",
			Category:    "Computer Science",
			Year:        2010,
			StudyYear:   3,
			Likes:       125,
			Dislikes:    10,
			Rating:      4.5,
			Language:    "English",
			Pages:       450,
			Publisher:   "Academic Press",
		},
		{
			ID:          "seed-book-2",
			Title:       "Theory of Machines",
			Author:      "S. S. Rattan",
			Description: "Kinematics and dynamics of machinery with worked examples for undergraduate mechanical engineering.",
			Category:    "Mechanical",
			Year:        2014,
			StudyYear:   2,
			Likes:       48,
			Dislikes:    3,
			Rating:      4.1,
			Language:    "English",
			Pages:       380,
			Publisher:   "Academic Press",
		},
	}
}

func seedPapers() []QuestionPaper {
	return []QuestionPaper{
		{ID: "seed-paper-1", Subject: "Data Structures & Algorithms", Year: 2023, Semester: "3rd Sem", ExamType: "Mid-1", Branch: "Computer Science", StudyYear: "2nd Year"},
		{ID: "seed-paper-2", Subject: "Structural Analysis", Year: 2022, Semester: "8th Sem", ExamType: "Sem", Branch: "Civil", StudyYear: "4th Year"},
	}
}

func seedNotifications() []Notification {
	return []Notification{
		{
			ID:          "seed-notification-1",
			Type:        NotificationNewUser,
			Title:       "Account Created",
			Description: "Welcome to the library! Start exploring the collection.",
			Timestamp:   time.Date(2024, 7, 26, 10, 0, 0, 0, time.UTC),
			Read:        true,
		},
	}
}
