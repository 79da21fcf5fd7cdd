package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"anggaran/internal/core"
	"anggaran/internal/objectstore"
	"anggaran/internal/store"
)

// DefaultRole is given to profiles created on first access.
const DefaultRole = "Member"

type ProfileService struct {
	profiles store.ProfileStore
	objects  objectstore.Store
	now      func() time.Time
}

func NewProfileService(profiles store.ProfileStore, objects objectstore.Store) *ProfileService {
	return &ProfileService{profiles: profiles, objects: objects, now: time.Now}
}

// ListProfiles returns every household member ordered by role.
func (s *ProfileService) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// Me returns the caller's profile, creating the default one on first access.
func (s *ProfileService) Me(ctx context.Context, userID string) (core.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	p, err = s.profiles.UpsertProfile(ctx, core.Profile{
		ID:       userID,
		FullName: core.DefaultProfileName,
		Role:     DefaultRole,
	})
	if err != nil {
		return core.Profile{}, fmt.Errorf("create default profile: %w", err)
	}
	slog.InfoContext(ctx, "Default profile created", "user_id", userID)
	return p, nil
}

// ProfileUpdate carries the editable fields; nil leaves a field unchanged.
type ProfileUpdate struct {
	FullName    *string
	Role        *string
	BudgetLimit *int64
}

// UpdateProfile edits profile id on behalf of actorID. Only the owner may
// edit a profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, actorID, id string, u ProfileUpdate) (core.Profile, error) {
	if actorID != id {
		return core.Profile{}, fmt.Errorf("update profile %s: %w", id, core.ErrForbidden)
	}
	p, err := s.Me(ctx, id)
	if err != nil {
		return core.Profile{}, err
	}
	if u.FullName != nil {
		p.FullName = strings.TrimSpace(*u.FullName)
	}
	if u.Role != nil {
		p.Role = strings.TrimSpace(*u.Role)
	}
	if u.BudgetLimit != nil {
		p.BudgetLimit = *u.BudgetLimit
	}

	updated, err := s.profiles.UpsertProfile(ctx, p)
	if err != nil {
		return core.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	slog.InfoContext(ctx, "Profile updated", "user_id", id)
	return updated, nil
}

// UploadAvatar crops and stores a new avatar and points the profile at it.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, data []byte, crop *objectstore.Crop) (core.Profile, error) {
	if s.objects == nil {
		return core.Profile{}, errors.New("object store not configured")
	}
	jpeg, err := objectstore.ProcessAvatar(data, crop)
	if err != nil {
		return core.Profile{}, err
	}

	name := objectstore.AvatarName(userID, s.now())
	url, err := s.objects.Upload(ctx, objectstore.AvatarBucket, name, jpeg, "image/jpeg")
	if err != nil {
		return core.Profile{}, fmt.Errorf("upload avatar: %w", err)
	}

	p, err := s.Me(ctx, userID)
	if err != nil {
		return core.Profile{}, err
	}
	p.AvatarURL = url
	updated, err := s.profiles.UpsertProfile(ctx, p)
	if err != nil {
		return core.Profile{}, fmt.Errorf("save avatar url: %w", err)
	}
	slog.InfoContext(ctx, "Avatar uploaded", "user_id", userID, "object", name, "size", len(jpeg))
	return updated, nil
}
