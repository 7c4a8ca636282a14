package handlers

import (
	"net/http"

	"notekeeper/forms"
	"notekeeper/models"
)

func (s *Server) TodoHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	todos, err := s.Store.TodosByOwner(r.Context(), user.UserID)
	if err != nil {
		serverError(w, r, err)
		return
	}
	s.Views.Render(w, r, http.StatusOK, "todo", map[string]any{"User": user.Name, "Todos": todos})
}

// NewTodoHandler adds a todo on POST; the form itself lives on /todo.
func (s *Server) NewTodoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/todo", http.StatusSeeOther)
		return
	}

	form := forms.ParseTodo(r)
	todo := models.Todo{Title: form.Title, Date: s.today(), Done: false, UserID: currentUser(r).UserID}
	if err := s.Store.CreateTodo(r.Context(), &todo); err != nil {
		serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/todo", http.StatusSeeOther)
}

// TodoDoneHandler deletes the todo: a finished todo is not kept.
func (s *Server) TodoDoneHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		serverError(w, r, err)
		return
	}
	if err := s.Store.DeleteTodo(r.Context(), id, s.owner(currentUser(r))); err != nil {
		serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/todo", http.StatusSeeOther)
}
