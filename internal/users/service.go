package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromAuth records the signed-in identity, creating the user on first sign-in.
func (s *Service) UpsertFromAuth(ctx context.Context, identity Identity) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return User{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	user := User{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(identity.Name),
		Email: email,
	}
	if avatar := strings.TrimSpace(identity.AvatarURL); avatar != "" {
		user.AvatarURL = &avatar
	}
	return s.Repo.UpsertByEmail(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID)
}

// Profiles resolves author profiles for a set of user IDs. Unknown IDs are omitted.
func (s *Service) Profiles(ctx context.Context, userIDs []string) (map[string]Profile, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("users service not configured")
	}
	unique := make([]string, 0, len(userIDs))
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	found, err := s.Repo.GetManyByID(ctx, unique)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Profile, len(found))
	for id, user := range found {
		out[id] = user.Profile()
	}
	return out, nil
}

// List returns the first DefaultListLimit users, oldest first.
func (s *Service) List(ctx context.Context) ([]User, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("users service not configured")
	}
	return s.Repo.List(ctx, DefaultListLimit)
}
