package handlers

import (
	"crypto/sha256"
	"log"
	"net/http"
	"strconv"
	"time"

	"notekeeper/auth"
	"notekeeper/config"
	"notekeeper/db"
	"notekeeper/forms"
	"notekeeper/models"
	"notekeeper/views"

	"github.com/dchest/captcha"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
)

// Server wires the store, sessions and views to the HTTP routes.
type Server struct {
	Store    *db.Store
	Sessions *auth.Manager
	Views    *views.Renderer
	Config   config.Config
	Now      func() time.Time

	loginLimiter *rateLimiter
}

func New(store *db.Store, sessions *auth.Manager, renderer *views.Renderer, cfg config.Config) *Server {
	return &Server{
		Store:        store,
		Sessions:     sessions,
		Views:        renderer,
		Config:       cfg,
		Now:          time.Now,
		loginLimiter: newRateLimiter(),
	}
}

// Routes returns the router without CSRF protection.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(SecurityHeadersMiddleware)
	r.Use(s.Sessions.Middleware)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	if s.Config.Captcha {
		r.Handle("/captcha/*", http.StripPrefix("/captcha/", captcha.Server(captcha.StdWidth, captcha.StdHeight)))
	}

	r.Get("/", s.IndexHandler)
	r.Get("/index", s.IndexHandler)
	r.Get("/register", s.RegisterHandler)
	r.Post("/register", s.RegisterHandler)
	r.Get("/login", s.LoginHandler)
	r.Post("/login", s.LoginHandler)
	r.Get("/logout", s.LogoutHandler)

	r.Group(func(r chi.Router) {
		r.Use(requireLogin)

		r.Get("/notes", s.NotesHandler)
		r.Get("/notes/new", s.NewNoteHandler)
		r.Post("/notes/new", s.NewNoteHandler)
		r.Get("/notes/{id}", s.NoteHandler)
		r.Get("/notes/edit/{id}", s.EditNoteHandler)
		r.Post("/notes/edit/{id}", s.EditNoteHandler)
		r.Post("/notes/delete/{id}", s.DeleteNoteHandler)
		r.Post("/notes/{id}/comment", s.NewCommentHandler)
		r.Post("/notes/{id}/comment/delete/{cid}", s.DeleteCommentHandler)

		r.Get("/todo", s.TodoHandler)
		r.Get("/todo/new", s.NewTodoHandler)
		r.Post("/todo/new", s.NewTodoHandler)
		r.Post("/todo/done/{id}", s.TodoDoneHandler)
	})
	return r
}

// Handler is Routes behind CSRF protection, as served by main.
func (s *Server) Handler() http.Handler {
	key := sha256.Sum256([]byte(s.Config.SessionKey + "csrf"))
	protect := csrf.Protect(
		key[:],
		csrf.Secure(s.Config.SecureCookies),
		csrf.Path("/"),
	)
	h := protect(s.Routes())
	if !s.Config.SecureCookies {
		h = PlaintextHTTPMiddleware(h)
	}
	return h
}

// requireLogin sends anonymous clients to the login page.
func requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// currentUser is only called behind requireLogin.
func currentUser(r *http.Request) auth.Identity {
	id, _ := auth.CurrentUser(r.Context())
	return id
}

// owner scopes unguarded writes to the session user when the
// enforce_ownership option is on.
func (s *Server) owner(user auth.Identity) int64 {
	if s.Config.EnforceOwnership {
		return user.UserID
	}
	return db.AnyOwner
}

func (s *Server) today() string {
	return s.Now().Format(models.DateLayout)
}

func (s *Server) validator() forms.Validator {
	return forms.Validator{
		Emails:            s.Store,
		PasswordMinLength: s.Config.PasswordMinLength,
		RequireCaptcha:    s.Config.Captcha,
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func serverError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) IndexHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if user, ok := auth.CurrentUser(r.Context()); ok {
		data["User"] = user.Name
	}
	s.Views.Render(w, r, http.StatusOK, "index", data)
}
