package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"

	"challengeTrackerAPI/internal/store"
	"challengeTrackerAPI/internal/types/user"
)

var avatarColors = []string{
	"#3b82f6", // blue
	"#22c55e", // green
	"#ec4899", // pink
	"#8b5cf6", // purple
	"#f97316", // orange
	"#06b6d4", // cyan
	"#eab308", // yellow
	"#ef4444", // red
}

type UserService struct {
	store store.Store

	createMu sync.Mutex
}

func NewUserService(s store.Store) *UserService {
	return &UserService{store: s}
}

func (s *UserService) List(ctx context.Context, limit int) ([]*user.User, error) {
	return s.store.ListUsers(ctx, limit)
}

func (s *UserService) Get(ctx context.Context, id int64) (*user.User, error) {
	return s.store.GetUser(ctx, id)
}

// Create registers a user with a unique username. An empty avatar color is replaced
// by one from the palette.
func (s *UserService) Create(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validateRequest(req, "Invalid user data"); err != nil {
		return nil, err
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	_, err := s.store.GetUserByUsername(ctx, req.Username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	color := req.AvatarColor
	if color == "" {
		color = avatarColors[rand.IntN(len(avatarColors))]
	}

	u, err := s.store.CreateUser(ctx, req.Username, req.Password, color)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("UserService: created user %d %q", u.ID, u.Username)
	return u, nil
}
