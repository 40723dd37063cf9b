// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Surface (HTTP handler or CLI) → parses input, renders output
//	Service (Business layer)      → enforces rules, orchestrates
//	Repository (Data layer)       → loads and saves blobs
//
// Two stores live here, each owning one slice of client state:
//
//   - IdentityStore: the current user and the user directory
//   - SwapLedger:    every swap request and its lifecycle
//
// Neither depends on the other. Reputation composes them when a rating
// has to flow from the ledger into a user's profile.
//
// READ-MODIFY-WRITE:
// Every mutation loads the whole collection, changes it in memory and saves
// it back. A mutex serializes those cycles inside one process. Two processes
// sharing a store can still overwrite each other's last write.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/skillswap/internal/apperror"
	"github.com/sakif/skillswap/internal/model"
	"github.com/sakif/skillswap/internal/repository"
)

// UnknownUserName is shown for ids that no directory entry resolves.
const UnknownUserName = "Unknown User"

// IdentityStore owns the current user and the user directory.
type IdentityStore struct {
	store      repository.Store
	logger     *slog.Logger
	adminEmail string
	now        func() time.Time

	mu sync.Mutex
}

// NewIdentityStore creates an IdentityStore.
//
// adminEmail, if non-empty, is the address whose fresh profiles get the
// admin role in NewProfile.
func NewIdentityStore(store repository.Store, adminEmail string, logger *slog.Logger) *IdentityStore {
	return &IdentityStore{
		store:      store,
		logger:     logger,
		adminEmail: strings.ToLower(strings.TrimSpace(adminEmail)),
		now:        time.Now,
	}
}

// NewProfile builds a fresh public profile with a generated id.
// It does not persist anything; pass the result to Login.
func (s *IdentityStore) NewProfile(name, email, location string) model.User {
	role := model.RoleUser
	if s.adminEmail != "" && strings.EqualFold(strings.TrimSpace(email), s.adminEmail) {
		role = model.RoleAdmin
	}
	return model.User{
		ID:            xid.New().String(),
		Name:          strings.TrimSpace(name),
		Email:         strings.TrimSpace(email),
		Location:      strings.TrimSpace(location),
		SkillsOffered: []model.Skill{},
		SkillsWanted:  []model.Skill{},
		Availability:  []string{},
		IsPublic:      true,
		Role:          role,
		JoinedDate:    s.now().UTC(),
	}
}

// Login makes user the current user and adds it to the directory if no
// entry with the same id exists yet.
//
// A returning user's directory entry is NOT refreshed here: first write
// wins for directory membership. Use UpdateUser to change a profile.
func (s *IdentityStore) Login(ctx context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Directory first: a current user must always be listed in it.
	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	if indexOfUser(users, user.ID) < 0 {
		users = append(users, user)
		if err := s.saveUsers(ctx, users); err != nil {
			return err
		}
		s.logger.Info("user joined directory", slog.String("userID", user.ID))
	}

	if err := repository.SaveJSON(ctx, s.store, repository.KeyCurrentUser, user); err != nil {
		return fmt.Errorf("service/identity: saving current user: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return nil
}

// Logout clears the current user. The directory keeps the profile.
func (s *IdentityStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := repository.RemoveKey(ctx, s.store, repository.KeyCurrentUser); err != nil {
		return fmt.Errorf("service/identity: clearing current user: %w", err)
	}
	s.logger.Info("user logged out")
	return nil
}

// UpdateUser replaces the current user and upserts the directory entry
// with the same id (last writer wins, no field merge).
func (s *IdentityStore) UpdateUser(ctx context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, user)
}

func (s *IdentityStore) updateLocked(ctx context.Context, user model.User) error {
	if err := s.upsert(ctx, user); err != nil {
		return err
	}
	if err := repository.SaveJSON(ctx, s.store, repository.KeyCurrentUser, user); err != nil {
		return fmt.Errorf("service/identity: saving current user: %w", err)
	}

	s.logger.Info("profile updated", slog.String("userID", user.ID))
	return nil
}

// PutUser upserts a directory entry without touching the current user.
func (s *IdentityStore) PutUser(ctx context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.upsert(ctx, user); err != nil {
		return err
	}

	// Keep the session copy in step when it is the same person.
	var current model.User
	ok, err := repository.LoadJSON(ctx, s.store, repository.KeyCurrentUser, &current)
	if err != nil {
		return fmt.Errorf("service/identity: loading current user: %w", err)
	}
	if ok && current.ID == user.ID {
		if err := repository.SaveJSON(ctx, s.store, repository.KeyCurrentUser, user); err != nil {
			return fmt.Errorf("service/identity: saving current user: %w", err)
		}
	}
	return nil
}

// CurrentUser returns the logged-in user, or (nil, nil) when nobody is.
func (s *IdentityStore) CurrentUser(ctx context.Context) (*model.User, error) {
	var user model.User
	ok, err := repository.LoadJSON(ctx, s.store, repository.KeyCurrentUser, &user)
	if err != nil {
		return nil, fmt.Errorf("service/identity: loading current user: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// Users returns the directory in insertion order.
func (s *IdentityStore) Users(ctx context.Context) ([]model.User, error) {
	return s.loadUsers(ctx)
}

// GetUser returns the directory entry for id.
// Returns apperror.ErrNotFound if no entry exists.
func (s *IdentityStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOfUser(users, id)
	if i < 0 {
		return nil, apperror.NotFound("user", id)
	}
	return &users[i], nil
}

// ResolveUser looks id up in the directory. Unknown ids resolve to a
// placeholder profile and found=false, so callers never invent their own
// fallback values.
func (s *IdentityStore) ResolveUser(ctx context.Context, id string) (user model.User, found bool, err error) {
	u, err := s.GetUser(ctx, id)
	if err == nil {
		return *u, true, nil
	}
	if !isNotFound(err) {
		return model.User{}, false, err
	}
	return model.User{ID: id, Name: UnknownUserName, Location: "Unknown"}, false, nil
}

// AddSkill appends a skill to one of the current user's lists.
// The skill gets a fresh id unless the caller supplied one not already in use.
func (s *IdentityStore) AddSkill(ctx context.Context, kind model.SkillKind, skill model.Skill) (*model.User, error) {
	if !kind.Valid() {
		return nil, apperror.ValidationFailed("kind", "skill kind must be offered or wanted")
	}
	skill.Name = strings.TrimSpace(skill.Name)
	if skill.Name == "" {
		return nil, apperror.ValidationFailed("name", "skill name is required")
	}
	skill.Description = strings.TrimSpace(skill.Description)
	skill.Category = strings.TrimSpace(skill.Category)

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.requireCurrent(ctx)
	if err != nil {
		return nil, err
	}

	skills := user.Skills(kind)
	if skill.ID == "" {
		skill.ID = xid.New().String()
	}
	for _, existing := range skills {
		if existing.ID == skill.ID {
			return nil, apperror.Conflict("skill", skill.ID)
		}
	}
	user.SetSkills(kind, append(append([]model.Skill{}, skills...), skill))

	if err := s.updateLocked(ctx, *user); err != nil {
		return nil, err
	}
	return user, nil
}

// RemoveSkill drops a skill from one of the current user's lists.
// Returns apperror.ErrNotFound if the list has no skill with that id.
func (s *IdentityStore) RemoveSkill(ctx context.Context, kind model.SkillKind, skillID string) (*model.User, error) {
	if !kind.Valid() {
		return nil, apperror.ValidationFailed("kind", "skill kind must be offered or wanted")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.requireCurrent(ctx)
	if err != nil {
		return nil, err
	}

	skills := user.Skills(kind)
	kept := make([]model.Skill, 0, len(skills))
	for _, sk := range skills {
		if sk.ID != skillID {
			kept = append(kept, sk)
		}
	}
	if len(kept) == len(skills) {
		return nil, apperror.NotFound("skill", skillID)
	}
	user.SetSkills(kind, kept)

	if err := s.updateLocked(ctx, *user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *IdentityStore) requireCurrent(ctx context.Context) (*model.User, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Forbidden("no user is logged in")
	}
	return user, nil
}

// upsert replaces the entry with user.ID or appends it. Caller holds mu.
func (s *IdentityStore) upsert(ctx context.Context, user model.User) error {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	if i := indexOfUser(users, user.ID); i >= 0 {
		users[i] = user
	} else {
		users = append(users, user)
	}
	return s.saveUsers(ctx, users)
}

func (s *IdentityStore) loadUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if _, err := repository.LoadJSON(ctx, s.store, repository.KeyUsers, &users); err != nil {
		return nil, fmt.Errorf("service/identity: loading directory: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (s *IdentityStore) saveUsers(ctx context.Context, users []model.User) error {
	if err := repository.SaveJSON(ctx, s.store, repository.KeyUsers, users); err != nil {
		s.logger.Error("failed to save directory", slog.String("error", err.Error()))
		return fmt.Errorf("service/identity: saving directory: %w", err)
	}
	return nil
}

func indexOfUser(users []model.User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
