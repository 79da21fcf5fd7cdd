package http

import (
	"context"
	"net/http"

	"anggaran/internal/auth"
	applog "anggaran/internal/log"
)

type sessionKey struct{}

// sessionFrom returns the session stored by requireSession.
func sessionFrom(ctx context.Context) (auth.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(auth.Session)
	return sess, ok
}

// requireSession rejects requests without a live bearer token.
func (s *Server) requireSession(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			UnauthorizedError("missing bearer token").Write(w)
			return
		}
		sess, err := s.deps.Auth.Session(r.Context(), token)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		logger := applog.FromContext(ctx).With(applog.FieldUserID, sess.UserID)
		next.ServeHTTP(w, r.WithContext(applog.NewContext(ctx, logger)))
	})
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type signUpResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.deps.Auth.SignUp(r.Context(), sanitizeInput(req.Email), req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(signUpResponse{ID: u.ID, Email: u.Email}).Write(w)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := s.deps.Auth.SignIn(r.Context(), sanitizeInput(req.Email), req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(sess).Trigger(EventSession, map[string]string{"type": string(auth.SignedIn)}).Write(w)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		if err := s.deps.Auth.SignOut(r.Context(), token); err != nil {
			writeError(w, r, err)
			return
		}
	}
	NewResponse().Status(http.StatusNoContent).Trigger(EventSession, map[string]string{"type": string(auth.SignedOut)}).Write(w)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		UnauthorizedError("missing bearer token").Write(w)
		return
	}
	sess, err := s.deps.Auth.Session(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(sess).Write(w)
}
