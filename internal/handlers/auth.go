package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"

	"techblog/internal/apperr"
	"techblog/internal/identity"
	"techblog/internal/middleware"
	"techblog/internal/render"
	"techblog/internal/session"
)

// Authenticator signs users in and up. *identity.Provider satisfies it.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*identity.User, error)
	SignUp(ctx context.Context, in identity.SignUpInput) (*identity.User, error)
}

// Sessions starts and ends browser sessions. *session.Store satisfies it.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Auth groups the sign-in, sign-up and sign-out handlers.
type Auth struct {
	renderer *render.Renderer
	sessions Sessions
	users    Authenticator
}

// NewAuth creates the Auth handler group.
func NewAuth(renderer *render.Renderer, sessions Sessions, users Authenticator) *Auth {
	return &Auth{renderer: renderer, sessions: sessions, users: users}
}

// authForm is what the auth page echoes back after a failed attempt.
type authForm struct {
	Mode     string // "signin" or "signup"
	Email    string
	Username string
	FullName string
}

// Page renders the sign-in / sign-up page. Signed-in users go home.
func (a *Auth) Page(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	mode := "signin"
	if r.URL.Query().Get("mode") == "signup" {
		mode = "signup"
	}
	a.renderer.Page(w, r, "auth", &render.PageData{Title: "Sign in", Data: authForm{Mode: mode}})
}

// SignIn checks the credentials and starts a session.
func (a *Auth) SignIn(w http.ResponseWriter, r *http.Request) {
	email, password := r.FormValue("email"), r.FormValue("password")

	u, err := a.users.SignIn(r.Context(), email, password)
	if err != nil {
		a.rejected(w, r, err, authForm{Mode: "signin", Email: email})
		return
	}
	if err := a.start(w, r, u); err != nil {
		fail(w, r, err, "/auth")
		return
	}
	done(w, r, "/", "Welcome back!", u)
}

// SignUp creates the account and its profile, then signs the user in.
func (a *Auth) SignUp(w http.ResponseWriter, r *http.Request) {
	in := identity.SignUpInput{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Username: r.FormValue("username"),
		FullName: r.FormValue("full_name"),
	}

	u, err := a.users.SignUp(r.Context(), in)
	if err != nil {
		a.rejected(w, r, err, authForm{Mode: "signup", Email: in.Email, Username: in.Username, FullName: in.FullName})
		return
	}
	if err := a.start(w, r, u); err != nil {
		fail(w, r, err, "/auth")
		return
	}
	done(w, r, "/", "Account created successfully!", u)
}

// SignOut ends the session.
func (a *Auth) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		fail(w, r, apperr.Remote("Sign out failed", err), "/")
		return
	}
	done(w, r, "/", "", map[string]bool{"signed_out": true})
}

func (a *Auth) start(w http.ResponseWriter, r *http.Request, u *identity.User) error {
	_, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
	})
	if err != nil {
		return apperr.Remote("Could not start your session", err)
	}
	slog.Info("signed in", "user_id", u.ID)
	return nil
}

// rejected re-renders the auth page with the form values kept, so the
// visitor does not retype everything after a typo.
func (a *Auth) rejected(w http.ResponseWriter, r *http.Request, err error, form authForm) {
	if middleware.WantsJSON(r) || apperr.Status(err) >= http.StatusInternalServerError {
		fail(w, r, err, "/auth")
		return
	}
	a.renderer.PageStatus(w, r, apperr.Status(err), "auth", &render.PageData{
		Title:   "Sign in",
		Flashes: []render.Flash{{Type: render.FlashError, Message: apperr.Message(err)}},
		Data:    form,
	})
}

// credentials is the token endpoint's request body.
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// readCredentials accepts a JSON body or form fields.
func readCredentials(w http.ResponseWriter, r *http.Request) (credentials, error) {
	var c credentials
	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct == "application/json" {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&c); err != nil {
			return c, badRequest("Request body must be JSON with email and password")
		}
		return c, nil
	}
	c.Email, c.Password = r.FormValue("email"), r.FormValue("password")
	return c, nil
}
