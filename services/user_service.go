package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fitgenAPI/internal/friendcode"
	"fitgenAPI/internal/store"
	"fitgenAPI/internal/types/user"
	"fitgenAPI/internal/username"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUsernameTaken     = errors.New("username is already taken")
	ErrAlreadyRegistered = errors.New("user is already registered")
)

type UserService struct {
	users store.UserStore
}

func NewUserService(users store.UserStore) *UserService {
	return &UserService{users: users}
}

// CompleteRegistration creates the user record at the end of onboarding:
// normalizes and validates the username, checks availability, assigns a
// unique friend code and writes the document.
func (s *UserService) CompleteRegistration(ctx context.Context, userID, email string, req *user.CompleteRegistrationRequest) (*user.User, error) {
	name := username.Format(req.Username)
	if err := username.Validate(name); err != nil {
		return nil, err
	}

	available, err := s.IsUsernameAvailable(ctx, name)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrUsernameTaken
	}

	code, err := friendcode.Assign(ctx, s.users)
	if err != nil {
		log.Printf("CompleteRegistration: failed to assign friend code for %s: %v", userID, err)
		return nil, fmt.Errorf("failed to assign friend code: %w", err)
	}

	now := time.Now()
	u := &user.User{
		ID:                 userID,
		Email:              email,
		Username:           name,
		FriendCode:         code,
		Age:                req.Age,
		Height:             req.Height,
		Weight:             req.Weight,
		Goal:               req.Goal,
		ActivityLevel:      req.ActivityLevel,
		Gender:             req.Gender,
		WorkoutDaysPerWeek: req.WorkoutDaysPerWeek,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*user.User, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *UserService) GetUserByFriendCode(ctx context.Context, code string) (*user.User, error) {
	u, err := s.users.FindUserByFriendCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up friend code: %w", err)
	}
	return u, nil
}

// IsUsernameAvailable fails open: an infrastructure error reports the name as
// available rather than blocking registration, since the eventual write still
// enforces real uniqueness.
func (s *UserService) IsUsernameAvailable(ctx context.Context, raw string) (bool, error) {
	name := username.Format(raw)
	if name == "" {
		return false, nil
	}

	_, err := s.users.FindUserByUsername(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return true, nil
		}
		log.Printf("IsUsernameAvailable: check failed for %q, treating as available: %v", name, err)
		return true, nil
	}
	return false, nil
}

// UpdateProfile applies the non-zero fields of the request, the rest keep
// their stored values.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *user.UpdateProfileRequest) (*user.User, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Age != 0 {
		u.Age = req.Age
	}
	if req.Height != 0 {
		u.Height = req.Height
	}
	if req.Weight != 0 {
		u.Weight = req.Weight
	}
	if req.Goal != "" {
		u.Goal = req.Goal
	}
	if req.ActivityLevel != "" {
		u.ActivityLevel = req.ActivityLevel
	}
	if req.WorkoutDaysPerWeek != 0 {
		u.WorkoutDaysPerWeek = req.WorkoutDaysPerWeek
	}
	u.UpdatedAt = time.Now()

	if err := s.users.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}
