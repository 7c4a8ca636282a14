package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"notekeeper/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createUser(t *testing.T, s *Store, email string) models.User {
	t.Helper()
	u := models.User{FirstName: "Test", LastName: "User", Email: email, PasswordHash: "hash"}
	if err := s.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", email, err)
	}
	return u
}

func TestOpenCreatesTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{"users", "notes", "comments", "todos"} {
		var count int
		if err := s.DB.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Errorf("Could not query %s table: %v", table, err)
		}
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open("oracle", "whatever"); err == nil {
		t.Error("Open with unsupported driver should have failed")
	}
}

func TestOpenInvalidMySQLDSN(t *testing.T) {
	if _, err := Open("mysql", "not a dsn"); err == nil {
		t.Error("Open with malformed mysql DSN should have failed")
	}
}

func TestSqliteDSN(t *testing.T) {
	cases := map[string]string{
		"./app.db":                  "./app.db?_foreign_keys=on",
		"./app.db?cache=shared":     "./app.db?cache=shared&_foreign_keys=on",
		"./app.db?_foreign_keys=on": "./app.db?_foreign_keys=on",
	}
	for in, want := range cases {
		if got := sqliteDSN(in); got != want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUsers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := createUser(t, s, "alice@example.com")
	if u.ID == 0 {
		t.Fatal("CreateUser did not set an ID")
	}

	dup := models.User{FirstName: "A", LastName: "B", Email: "alice@example.com", PasswordHash: "x"}
	if err := s.CreateUser(ctx, &dup); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("Expected ErrDuplicateEmail, got %v", err)
	}

	exists, err := s.EmailExists(ctx, "alice@example.com")
	if err != nil || !exists {
		t.Errorf("EmailExists = %v, %v; want true", exists, err)
	}
	exists, _ = s.EmailExists(ctx, "bob@example.com")
	if exists {
		t.Error("EmailExists reported an unknown email")
	}

	got, err := s.UserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("UserByEmail failed: %v", err)
	}
	if got.ID != u.ID || got.FirstName != "Test" {
		t.Errorf("UserByEmail returned %+v", got)
	}
	if _, err := s.UserByEmail(ctx, "bob@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestNotesOwnership(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice@example.com")
	bob := createUser(t, s, "bob@example.com")

	n := models.Note{Title: "Groceries", Text: "milk, eggs", Date: "10-19-2026", Color: "#fff", UserID: alice.ID}
	if err := s.CreateNote(ctx, &n); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	notes, err := s.NotesByOwner(ctx, alice.ID)
	if err != nil || len(notes) != 1 || notes[0].Title != "Groceries" {
		t.Fatalf("NotesByOwner(alice) = %+v, %v", notes, err)
	}
	notes, _ = s.NotesByOwner(ctx, bob.ID)
	if len(notes) != 0 {
		t.Errorf("Bob sees %d of Alice's notes", len(notes))
	}

	if _, err := s.NoteByID(ctx, n.ID, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("NoteByID for non-owner: expected ErrNotFound, got %v", err)
	}
	if _, err := s.NoteByID(ctx, n.ID, AnyOwner); err != nil {
		t.Errorf("NoteByID with AnyOwner failed: %v", err)
	}

	n.Title, n.Text, n.Color = "Errands", "post office", "#000"
	if err := s.UpdateNote(ctx, n, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateNote scoped to bob: expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateNote(ctx, n, AnyOwner); err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}
	got, _ := s.NoteByID(ctx, n.ID, alice.ID)
	if got.Title != "Errands" || got.Text != "post office" || got.Color != "#000" || got.Date != "10-19-2026" {
		t.Errorf("UpdateNote result = %+v", got)
	}

	if err := s.DeleteNote(ctx, n.ID, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteNote scoped to bob: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteNote(ctx, n.ID, AnyOwner); err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if err := s.DeleteNote(ctx, n.ID, AnyOwner); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteNote: expected ErrNotFound, got %v", err)
	}
}

func TestUpdateNoteScopedToOwner(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice@example.com")
	bob := createUser(t, s, "bob@example.com")

	n := models.Note{Title: "Draft", Text: "first", Date: "10-19-2026", Color: "#fff", UserID: alice.ID}
	if err := s.CreateNote(ctx, &n); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	n.Title = "Final"
	if err := s.UpdateNote(ctx, n, alice.ID); err != nil {
		t.Fatalf("UpdateNote by owner failed: %v", err)
	}
	// Writing identical values still matches the row.
	if err := s.UpdateNote(ctx, n, alice.ID); err != nil {
		t.Errorf("UpdateNote with unchanged values failed: %v", err)
	}

	n.Title = "Hijacked"
	if err := s.UpdateNote(ctx, n, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateNote scoped to bob: expected ErrNotFound, got %v", err)
	}
	got, _ := s.NoteByID(ctx, n.ID, alice.ID)
	if got.Title != "Final" {
		t.Errorf("Title = %q, want Final", got.Title)
	}

	n.ID = 9999
	if err := s.UpdateNote(ctx, n, AnyOwner); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateNote of missing note: expected ErrNotFound, got %v", err)
	}
}

func TestQueryOneMultipleRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice@example.com")
	for i := 0; i < 2; i++ {
		n := models.Note{Title: "dup", Date: "01-01-2026", UserID: alice.ID}
		if err := s.CreateNote(ctx, &n); err != nil {
			t.Fatal(err)
		}
	}

	_, err := queryOne(ctx, s.DB, scanNote,
		"SELECT id, title, text, date, color, user_id FROM notes WHERE title = ?", "dup")
	if !errors.Is(err, ErrMultipleRows) {
		t.Errorf("Expected ErrMultipleRows, got %v", err)
	}
}

func TestComments(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice@example.com")
	n := models.Note{Title: "t", Date: "01-01-2026", UserID: alice.ID}
	s.CreateNote(ctx, &n)

	c := models.Comment{Text: "nice!", NoteID: n.ID, UserID: alice.ID}
	if err := s.CreateComment(ctx, &c); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	comments, err := s.CommentsByNote(ctx, n.ID)
	if err != nil || len(comments) != 1 {
		t.Fatalf("CommentsByNote = %+v, %v", comments, err)
	}
	if comments[0].AuthorName != "Test" || comments[0].Text != "nice!" {
		t.Errorf("Unexpected comment %+v", comments[0])
	}

	if err := s.DeleteComment(ctx, c.ID, AnyOwner); err != nil {
		t.Fatalf("DeleteComment failed: %v", err)
	}
	comments, _ = s.CommentsByNote(ctx, n.ID)
	if len(comments) != 0 {
		t.Errorf("Expected no comments after delete, got %d", len(comments))
	}
}

func TestDeleteNoteCascadesComments(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice@example.com")
	n := models.Note{Title: "t", Date: "01-01-2026", UserID: alice.ID}
	s.CreateNote(ctx, &n)
	s.CreateComment(ctx, &models.Comment{Text: "c", NoteID: n.ID, UserID: alice.ID})

	if err := s.DeleteNote(ctx, n.ID, alice.ID); err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	var count int
	s.DB.QueryRow("SELECT COUNT(*) FROM comments").Scan(&count)
	if count != 0 {
		t.Errorf("Expected comments to be removed with their note, found %d", count)
	}
}

func TestTodos(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice@example.com")
	bob := createUser(t, s, "bob@example.com")

	td := models.Todo{Title: "laundry", Date: "10-19-2026", UserID: alice.ID}
	if err := s.CreateTodo(ctx, &td); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}
	todos, err := s.TodosByOwner(ctx, alice.ID)
	if err != nil || len(todos) != 1 || todos[0].Done {
		t.Fatalf("TodosByOwner = %+v, %v", todos, err)
	}
	if todos, _ := s.TodosByOwner(ctx, bob.ID); len(todos) != 0 {
		t.Errorf("Bob sees %d of Alice's todos", len(todos))
	}

	if err := s.DeleteTodo(ctx, td.ID, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTodo scoped to bob: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteTodo(ctx, td.ID, AnyOwner); err != nil {
		t.Fatalf("DeleteTodo failed: %v", err)
	}
	if todos, _ := s.TodosByOwner(ctx, alice.ID); len(todos) != 0 {
		t.Errorf("Todo still listed after done: %+v", todos)
	}
}
