// Package forms parses submitted HTML forms into typed structs and validates
// them. Error values are i18n message keys.
package forms

import (
	"context"
	"net/http"
	"net/mail"
	"regexp"
	"strings"

	"github.com/dchest/captcha"
)

const (
	MsgRequired             = "FieldRequired"
	MsgInvalidEmail         = "InvalidEmail"
	MsgEmailTaken           = "EmailTaken"
	MsgPasswordTooShort     = "PasswordTooShort"
	MsgPasswordsMustMatch   = "PasswordsMustMatch"
	MsgIncorrectCredentials = "IncorrectCredentials"
	MsgInvalidCaptcha       = "InvalidCaptcha"
	MsgTooManyAttempts      = "TooManyAttempts"
)

// Errors maps a form field name to its messages.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e Errors) Valid() bool {
	return len(e) == 0
}

// EmailChecker is the slice of the store the validator consults.
type EmailChecker interface {
	EmailExists(ctx context.Context, email string) (bool, error)
}

// Validator carries what field rules need beyond the submitted values.
type Validator struct {
	Emails            EmailChecker
	PasswordMinLength int
	RequireCaptcha    bool
}

// Form is implemented by every validated form kind.
type Form interface {
	Validate(ctx context.Context, v Validator) (Errors, error)
}

type RegisterForm struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	CaptchaID       string
	CaptchaSolution string
}

type LoginForm struct {
	Email    string
	Password string
}

type CommentForm struct {
	Text string
}

// DefaultColor replaces note colours that are not #rgb or #rrggbb hex.
const DefaultColor = "#ffffff"

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// NoteForm and TodoForm carry no rules; any submitted values are stored.
type NoteForm struct {
	Title string
	Text  string
	Color string
}

type TodoForm struct {
	Title string
}

func field(r *http.Request, name string) string {
	return strings.TrimSpace(r.PostFormValue(name))
}

func ParseRegister(r *http.Request) RegisterForm {
	return RegisterForm{
		FirstName:       field(r, "firstname"),
		LastName:        field(r, "lastname"),
		Email:           field(r, "email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
		CaptchaID:       r.PostFormValue("captcha_id"),
		CaptchaSolution: field(r, "captcha_solution"),
	}
}

func ParseLogin(r *http.Request) LoginForm {
	return LoginForm{Email: field(r, "email"), Password: r.PostFormValue("password")}
}

func ParseComment(r *http.Request) CommentForm {
	return CommentForm{Text: field(r, "comment")}
}

func ParseNote(r *http.Request) NoteForm {
	color := field(r, "color")
	if !hexColor.MatchString(color) {
		color = DefaultColor
	}
	return NoteForm{Title: r.PostFormValue("title"), Text: r.PostFormValue("noteText"), Color: color}
}

func ParseTodo(r *http.Request) TodoForm {
	return TodoForm{Title: r.PostFormValue("title")}
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func (f RegisterForm) Validate(ctx context.Context, v Validator) (Errors, error) {
	errs := Errors{}
	if f.FirstName == "" {
		errs.Add("firstname", MsgRequired)
	}
	if f.LastName == "" {
		errs.Add("lastname", MsgRequired)
	}

	switch {
	case f.Email == "":
		errs.Add("email", MsgRequired)
	case !validEmail(f.Email):
		errs.Add("email", MsgInvalidEmail)
	default:
		taken, err := v.Emails.EmailExists(ctx, f.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("email", MsgEmailTaken)
		}
	}

	switch {
	case f.Password == "":
		errs.Add("password", MsgRequired)
	case len(f.Password) < v.PasswordMinLength:
		errs.Add("password", MsgPasswordTooShort)
	}
	if f.ConfirmPassword != f.Password {
		errs.Add("confirm_password", MsgPasswordsMustMatch)
	}

	if v.RequireCaptcha && !captcha.VerifyString(f.CaptchaID, f.CaptchaSolution) {
		errs.Add("captcha_solution", MsgInvalidCaptcha)
	}
	return errs, nil
}

// Validate also rejects emails with no account so the login handler can rely
// on exactly one user matching.
func (f LoginForm) Validate(ctx context.Context, v Validator) (Errors, error) {
	errs := Errors{}
	if f.Email == "" {
		errs.Add("email", MsgRequired)
	}
	if f.Password == "" {
		errs.Add("password", MsgRequired)
	}
	if !errs.Valid() {
		return errs, nil
	}

	exists, err := v.Emails.EmailExists(ctx, f.Email)
	if err != nil {
		return nil, err
	}
	if !exists {
		errs.Add("password", MsgIncorrectCredentials)
	}
	return errs, nil
}

func (f CommentForm) Validate(ctx context.Context, v Validator) (Errors, error) {
	errs := Errors{}
	if f.Text == "" {
		errs.Add("comment", MsgRequired)
	}
	return errs, nil
}
