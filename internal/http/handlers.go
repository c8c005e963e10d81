package http

import (
	"errors"
	"net/http"
	"time"

	"retailtracker/internal/auth"
	"retailtracker/internal/core"
	applog "retailtracker/internal/log"
	"retailtracker/internal/transactions"
)

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      core.User `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	f := failure{invalid: "Invalid login data", notFound: "User not found", failed: "Failed to log in"}
	var req loginRequest
	if err := DecodeJSON(r, &req); err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	user, err := auth.DemoLogin(r.Context(), s.store, req.Email, req.Password)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	token, exp, err := s.sessions.Issue(user)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}

	applog.FromContext(r.Context()).WithComponent(applog.ComponentAuth).InfoContext(r.Context(), "User logged in",
		applog.FieldUserID, user.ID,
		applog.FieldOperation, applog.OpLogin)

	NewJSONResponse().
		Cookie(&http.Cookie{
			Name:     auth.CookieName,
			Value:    token,
			Path:     "/",
			Expires:  exp,
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		}).
		Body(loginResponse{Token: token, ExpiresAt: exp, User: user}).
		Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().
		Cookie(&http.Cookie{
			Name:     auth.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}).
		Message("Logged out").
		Write(w)
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(r.Context(), userID(r))
	if errors.Is(err, core.ErrNotFound) {
		// The session outlived its user, e.g. a restarted memory backend.
		UnauthorizedError().Write(w)
		return
	}
	if err != nil {
		ErrorFor(r, err, failure{failed: "Failed to fetch user"}).Write(w)
		return
	}
	NewJSONResponse().Body(user).Write(w)
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Stats(r.Context(), userID(r), s.now())
	if err != nil {
		ErrorFor(r, err, failure{failed: "Failed to fetch dashboard stats"}).Write(w)
		return
	}
	NewJSONResponse().Body(stats).Write(w)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	f := failure{invalid: "Invalid transaction filter", failed: "Failed to fetch transactions"}
	q := r.URL.Query()
	filter, err := transactions.ParseFilter(q.Get("startDate"), q.Get("endDate"), q.Get("type"))
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	list, err := s.txns.List(r.Context(), userID(r), filter)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	NewJSONResponse().Body(list).Write(w)
}

func (s *Server) logEntry(r *http.Request, op string, kind core.EntryKind, id int64, amount, category, date string) {
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogEntryChanged(r.Context(), op, userID(r), string(kind), id, amount, category, date)
}
