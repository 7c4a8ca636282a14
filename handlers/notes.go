package handlers

import (
	"fmt"
	"net/http"

	"notekeeper/auth"
	"notekeeper/forms"
	"notekeeper/models"
)

func (s *Server) NotesHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	notes, err := s.Store.NotesByOwner(r.Context(), user.UserID)
	if err != nil {
		serverError(w, r, err)
		return
	}
	s.Views.Render(w, r, http.StatusOK, "notes", map[string]any{"User": user.Name, "Notes": notes})
}

// renderNote shows one of the user's notes with its comments and the comment
// form. Any lookup failure is a server error.
func (s *Server) renderNote(w http.ResponseWriter, r *http.Request, user auth.Identity, noteID int64, form forms.CommentForm, errs forms.Errors) {
	note, err := s.Store.NoteByID(r.Context(), noteID, user.UserID)
	if err != nil {
		serverError(w, r, err)
		return
	}
	comments, err := s.Store.CommentsByNote(r.Context(), note.ID)
	if err != nil {
		serverError(w, r, err)
		return
	}
	s.Views.Render(w, r, http.StatusOK, "note", map[string]any{
		"User":     user.Name,
		"Note":     note,
		"Comments": comments,
		"Form":     form,
		"Errors":   errs,
	})
}

func (s *Server) NoteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		serverError(w, r, err)
		return
	}
	s.renderNote(w, r, currentUser(r), id, forms.CommentForm{}, forms.Errors{})
}

func (s *Server) NewNoteHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if r.Method != http.MethodPost {
		s.Views.Render(w, r, http.StatusOK, "new", map[string]any{"User": user.Name})
		return
	}

	form := forms.ParseNote(r)
	note := models.Note{
		Title:  form.Title,
		Text:   form.Text,
		Date:   s.today(),
		Color:  form.Color,
		UserID: user.UserID,
	}
	if err := s.Store.CreateNote(r.Context(), &note); err != nil {
		serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

func (s *Server) EditNoteHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id, err := pathID(r, "id")
	if err != nil {
		serverError(w, r, err)
		return
	}

	if r.Method != http.MethodPost {
		note, err := s.Store.NoteByID(r.Context(), id, s.owner(user))
		if err != nil {
			serverError(w, r, err)
			return
		}
		s.Views.Render(w, r, http.StatusOK, "new", map[string]any{"User": user.Name, "Note": note})
		return
	}

	form := forms.ParseNote(r)
	note := models.Note{ID: id, Title: form.Title, Text: form.Text, Color: form.Color}
	if err := s.Store.UpdateNote(r.Context(), note, s.owner(user)); err != nil {
		serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

func (s *Server) DeleteNoteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		serverError(w, r, err)
		return
	}
	if err := s.Store.DeleteNote(r.Context(), id, s.owner(currentUser(r))); err != nil {
		serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

func (s *Server) NewCommentHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	noteID, err := pathID(r, "id")
	if err != nil {
		serverError(w, r, err)
		return
	}

	form := forms.ParseComment(r)
	errs, err := form.Validate(r.Context(), s.validator())
	if err != nil {
		serverError(w, r, err)
		return
	}
	if !errs.Valid() {
		s.renderNote(w, r, user, noteID, form, errs)
		return
	}

	comment := models.Comment{Text: form.Text, NoteID: noteID, UserID: user.UserID}
	if err := s.Store.CreateComment(r.Context(), &comment); err != nil {
		serverError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/notes/%d", noteID), http.StatusSeeOther)
}

func (s *Server) DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	noteID, err := pathID(r, "id")
	if err != nil {
		serverError(w, r, err)
		return
	}
	commentID, err := pathID(r, "cid")
	if err != nil {
		serverError(w, r, err)
		return
	}
	if err := s.Store.DeleteComment(r.Context(), commentID, s.owner(currentUser(r))); err != nil {
		serverError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/notes/%d", noteID), http.StatusSeeOther)
}
