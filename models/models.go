package models

type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
}

// Note.Date is stored as mm-dd-yyyy.
type Note struct {
	ID     int64
	Title  string
	Text   string
	Date   string
	Color  string
	UserID int64
}

type Comment struct {
	ID         int64
	Text       string
	NoteID     int64
	UserID     int64
	AuthorName string // first name of the author, filled on reads
}

type Todo struct {
	ID     int64
	Title  string
	Date   string
	Done   bool
	UserID int64
}

// DateLayout is the mm-dd-yyyy format used for Note and Todo dates.
const DateLayout = "01-02-2006"
