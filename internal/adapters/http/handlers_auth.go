package web

import (
	"errors"
	"net/http"

	"church/internal/adapters/http/middleware"
	"church/internal/application/orchestrators"
	"church/internal/platform/i18n"
)

type loginPage struct {
	Email string
	Error string
}

// handleLoginPage handles GET /login
func handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s, ok := middleware.GetSessionFromContext(r.Context()); ok && s.IsAdmin {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, http.StatusOK, "login.html", requestLang(w, r), loginPage{})
}

// handleLogin handles POST /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	lang := requestLang(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.LoginInput{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		AccountStore: deps.Accounts,
		Now:          timeNow,
	})
	if errors.Is(err, orchestrators.ErrInvalidCredentials) || errors.Is(err, orchestrators.ErrAccountLocked) {
		renderTemplate(w, r, http.StatusUnauthorized, "login.html", lang, loginPage{Email: input.Email, Error: i18n.Error(lang, err)})
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	// A new sign-in replaces the previous session of this browser.
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessions.Delete(cookie.Value)
	}
	token, err := sessions.Create(result.AccountID, result.Email, result.IsAdmin)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token, sessions.TTL())
	if !result.IsAdmin {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// handleLogout handles POST /logout. Ending the session also closes its console.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
