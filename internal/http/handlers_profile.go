package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"anggaran/internal/auth"
	"anggaran/internal/objectstore"
	"anggaran/internal/services"
)

type profileRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,max=100"`
	Role        *string `json:"role" validate:"omitempty,max=50"`
	BudgetLimit *Amount `json:"budget_limit"`
}

func (p profileRequest) update() services.ProfileUpdate {
	var u services.ProfileUpdate
	if p.FullName != nil {
		name := sanitizeInput(*p.FullName)
		u.FullName = &name
	}
	if p.Role != nil {
		role := sanitizeInput(*p.Role)
		u.Role = &role
	}
	if p.BudgetLimit != nil {
		limit := p.BudgetLimit.Int64()
		u.BudgetLimit = &limit
	}
	return u
}

func (s *Server) session(r *http.Request) (auth.Session, error) {
	sess, ok := sessionFrom(r.Context())
	if !ok {
		return auth.Session{}, auth.ErrSessionExpired
	}
	return sess, nil
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.deps.Profiles.ListProfiles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(profiles).Write(w)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.deps.Profiles.Me(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(p).Write(w)
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.updateProfile(w, r, sess.UserID, sess.UserID)
}

// handleUpdateProfile edits another profile by id; only the owner succeeds.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.updateProfile(w, r, sess.UserID, r.PathValue("id"))
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request, actorID, id string) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.deps.Profiles.UpdateProfile(r.Context(), actorID, id, req.update())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(p).Trigger(EventProfile, nil).Write(w)
}

// handleUploadAvatar takes a multipart "avatar" file with optional x, y,
// width and height crop fields.
func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, objectstore.MaxAvatarBytes+1<<20)
	if err := r.ParseMultipartForm(objectstore.MaxAvatarBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, fmt.Errorf("%w: avatar too large", objectstore.ErrInvalidImage))
			return
		}
		writeError(w, r, fmt.Errorf("%w: parse multipart: %v", errBadRequest, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: avatar file is required", errBadRequest))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: read avatar: %v", errBadRequest, err))
		return
	}

	crop, err := parseCrop(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := s.deps.Profiles.UploadAvatar(r.Context(), sess.UserID, data, crop)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(p).Trigger(EventProfile, nil).Write(w)
}

// parseCrop returns nil unless width and height are both given.
func parseCrop(r *http.Request) (*objectstore.Crop, error) {
	fields := []string{"x", "y", "width", "height"}
	values := make([]int, len(fields))
	for i, name := range fields {
		v := strings.TrimSpace(r.FormValue(name))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q", errBadRequest, name, v)
		}
		values[i] = n
	}
	if values[2] <= 0 || values[3] <= 0 {
		return nil, nil
	}
	return &objectstore.Crop{X: values[0], Y: values[1], Width: values[2], Height: values[3]}, nil
}
