package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"notekeeper/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrMultipleRows   = errors.New("multiple records found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// AnyOwner disables the owner filter on lookups, updates and deletes.
const AnyOwner int64 = 0

type scanner interface {
	Scan(dest ...any) error
}

// queryOne runs query and requires exactly one row: none yields
// ErrNotFound, more than one ErrMultipleRows.
func queryOne[T any](ctx context.Context, conn *sql.DB, scan func(scanner) (T, error), query string, args ...any) (T, error) {
	var zero T
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return zero, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, err
		}
		return zero, ErrNotFound
	}
	v, err := scan(rows)
	if err != nil {
		return zero, err
	}
	if rows.Next() {
		return zero, ErrMultipleRows
	}
	return v, rows.Err()
}

func queryAll[T any](ctx context.Context, conn *sql.DB, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ownerClause appends "AND user_id = ?" unless owner is AnyOwner.
func ownerClause(query string, args []any, owner int64) (string, []any) {
	if owner == AnyOwner {
		return query, args
	}
	return query + " AND user_id = ?", append(args, owner)
}

func execOne(ctx context.Context, conn *sql.DB, query string, args ...any) error {
	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash)
	return u, err
}

func scanNote(row scanner) (models.Note, error) {
	var n models.Note
	err := row.Scan(&n.ID, &n.Title, &n.Text, &n.Date, &n.Color, &n.UserID)
	return n, err
}

func scanComment(row scanner) (models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.Text, &c.NoteID, &c.UserID, &c.AuthorName)
	return c, err
}

func scanTodo(row scanner) (models.Todo, error) {
	var t models.Todo
	err := row.Scan(&t.ID, &t.Title, &t.Date, &t.Done, &t.UserID)
	return t, err
}

// CreateUser inserts u and sets its ID. A taken email yields ErrDuplicateEmail.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	res, err := s.DB.ExecContext(ctx, "INSERT INTO users (first_name, last_name, email, password_hash) VALUES (?, ?, ?, ?)",
		u.FirstName, u.LastName, u.Email, u.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	return err
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&count)
	return count > 0, err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	return queryOne(ctx, s.DB, scanUser,
		"SELECT id, first_name, last_name, email, password_hash FROM users WHERE email = ?", email)
}

func (s *Store) CreateNote(ctx context.Context, n *models.Note) error {
	res, err := s.DB.ExecContext(ctx, "INSERT INTO notes (title, text, date, color, user_id) VALUES (?, ?, ?, ?, ?)",
		n.Title, n.Text, n.Date, n.Color, n.UserID)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	n.ID, err = res.LastInsertId()
	return err
}

func (s *Store) NotesByOwner(ctx context.Context, userID int64) ([]models.Note, error) {
	return queryAll(ctx, s.DB, scanNote,
		"SELECT id, title, text, date, color, user_id FROM notes WHERE user_id = ? ORDER BY id", userID)
}

// NoteByID returns the single note with id, restricted to owner unless owner
// is AnyOwner.
func (s *Store) NoteByID(ctx context.Context, id, owner int64) (models.Note, error) {
	q, args := ownerClause("SELECT id, title, text, date, color, user_id FROM notes WHERE id = ?", []any{id}, owner)
	return queryOne(ctx, s.DB, scanNote, q, args...)
}

// UpdateNote rewrites title, text and color of the note n.ID.
func (s *Store) UpdateNote(ctx context.Context, n models.Note, owner int64) error {
	if _, err := s.NoteByID(ctx, n.ID, owner); err != nil {
		return err
	}
	q, args := ownerClause("UPDATE notes SET title = ?, text = ?, color = ? WHERE id = ?",
		[]any{n.Title, n.Text, n.Color, n.ID}, owner)
	return execOne(ctx, s.DB, q, args...)
}

func (s *Store) DeleteNote(ctx context.Context, id, owner int64) error {
	q, args := ownerClause("DELETE FROM notes WHERE id = ?", []any{id}, owner)
	return execOne(ctx, s.DB, q, args...)
}

func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	res, err := s.DB.ExecContext(ctx, "INSERT INTO comments (text, note_id, user_id) VALUES (?, ?, ?)",
		c.Text, c.NoteID, c.UserID)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (s *Store) CommentsByNote(ctx context.Context, noteID int64) ([]models.Comment, error) {
	return queryAll(ctx, s.DB, scanComment,
		`SELECT c.id, c.text, c.note_id, c.user_id, u.first_name
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.note_id = ? ORDER BY c.id`, noteID)
}

// DeleteComment removes comment id; with an owner only that user's comment.
func (s *Store) DeleteComment(ctx context.Context, id, owner int64) error {
	q, args := ownerClause("DELETE FROM comments WHERE id = ?", []any{id}, owner)
	return execOne(ctx, s.DB, q, args...)
}

func (s *Store) CreateTodo(ctx context.Context, t *models.Todo) error {
	res, err := s.DB.ExecContext(ctx, "INSERT INTO todos (title, date, done, user_id) VALUES (?, ?, ?, ?)",
		t.Title, t.Date, t.Done, t.UserID)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	t.ID, err = res.LastInsertId()
	return err
}

func (s *Store) TodosByOwner(ctx context.Context, userID int64) ([]models.Todo, error) {
	return queryAll(ctx, s.DB, scanTodo,
		"SELECT id, title, date, done, user_id FROM todos WHERE user_id = ? ORDER BY id", userID)
}

// DeleteTodo removes the todo; marking a todo done is deleting it.
func (s *Store) DeleteTodo(ctx context.Context, id, owner int64) error {
	q, args := ownerClause("DELETE FROM todos WHERE id = ?", []any{id}, owner)
	return execOne(ctx, s.DB, q, args...)
}
