package handlers

import (
	"errors"
	"net/http"

	"notekeeper/auth"
	"notekeeper/crypto"
	"notekeeper/db"
	"notekeeper/forms"
	"notekeeper/models"

	"github.com/dchest/captcha"
)

func (s *Server) renderRegister(w http.ResponseWriter, r *http.Request, form forms.RegisterForm, errs forms.Errors) {
	data := map[string]any{"Form": form, "Errors": errs}
	if s.Config.Captcha {
		data["CaptchaID"] = captcha.New()
	}
	s.Views.Render(w, r, http.StatusOK, "register", data)
}

func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.renderRegister(w, r, forms.RegisterForm{}, forms.Errors{})
		return
	}

	form := forms.ParseRegister(r)
	errs, err := form.Validate(r.Context(), s.validator())
	if err != nil {
		serverError(w, r, err)
		return
	}
	if !errs.Valid() {
		s.renderRegister(w, r, form, errs)
		return
	}

	hash, err := crypto.HashPassword(form.Password)
	if err != nil {
		serverError(w, r, err)
		return
	}
	user := models.User{FirstName: form.FirstName, LastName: form.LastName, Email: form.Email, PasswordHash: hash}
	if err := s.Store.CreateUser(r.Context(), &user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, db.ErrDuplicateEmail) {
			errs.Add("email", forms.MsgEmailTaken)
			s.renderRegister(w, r, form, errs)
			return
		}
		serverError(w, r, err)
		return
	}

	if err := auth.FromContext(r.Context()).Set(auth.Identity{UserID: user.ID, Name: user.FirstName}); err != nil {
		serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, form forms.LoginForm, errs forms.Errors) {
	form.Password = ""
	s.Views.Render(w, r, status, "login", map[string]any{"Form": form, "Errors": errs})
}

func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.renderLogin(w, r, http.StatusOK, forms.LoginForm{}, forms.Errors{})
		return
	}

	form := forms.ParseLogin(r)
	ip := getClientIP(r)
	if !s.loginLimiter.Allow(ip) {
		errs := forms.Errors{}
		errs.Add("password", forms.MsgTooManyAttempts)
		s.renderLogin(w, r, http.StatusTooManyRequests, form, errs)
		return
	}

	errs, err := form.Validate(r.Context(), s.validator())
	if err != nil {
		serverError(w, r, err)
		return
	}
	if !errs.Valid() {
		if errs.Has("password") && errs["password"][0] == forms.MsgIncorrectCredentials {
			// Unknown email: spend the same time as a wrong password would.
			crypto.CheckPasswordHash(form.Password, string(crypto.DummyHash()))
			s.loginLimiter.RecordFailure(ip)
		}
		s.renderLogin(w, r, http.StatusOK, form, errs)
		return
	}

	user, err := s.Store.UserByEmail(r.Context(), form.Email)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if !crypto.CheckPasswordHash(form.Password, user.PasswordHash) {
		s.loginLimiter.RecordFailure(ip)
		errs.Add("password", forms.MsgIncorrectCredentials)
		s.renderLogin(w, r, http.StatusOK, form, errs)
		return
	}

	s.loginLimiter.Reset(ip)
	if err := auth.FromContext(r.Context()).Set(auth.Identity{UserID: user.ID, Name: user.FirstName}); err != nil {
		serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/notes", http.StatusSeeOther)
}

func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	sess := auth.FromContext(r.Context())
	if _, ok := sess.Get(); ok {
		if err := sess.Clear(); err != nil {
			serverError(w, r, err)
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
