package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"simkas/internal/model"
	"simkas/internal/pkg"
	"simkas/internal/repository/database"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SessionStore caches the one live access token per user.
type SessionStore interface {
	Save(ctx context.Context, userID uint64, token string) error
	Get(ctx context.Context, userID uint64) (string, error)
	Extend(ctx context.Context, userID uint64) error
	Delete(ctx context.Context, userID uint64) error
}

type UserService struct {
	users    *database.UserRepository
	master   *database.MasterRepository
	tokens   *pkg.TokenManager
	sessions SessionStore // nil disables single-login
	log      *log.Logger
}

func NewUserService(users *database.UserRepository, master *database.MasterRepository, tokens *pkg.TokenManager, sessions SessionStore, logger *log.Logger) *UserService {
	if logger == nil {
		logger = log.Default()
	}
	return &UserService{users: users, master: master, tokens: tokens, sessions: sessions, log: logger}
}

type RegisterInput struct {
	NIM      string
	Name     string
	Email    string
	Phone    string
	Password string
	ClassID  *uint64
	CohortID *uint64
}

// Register always creates a plain member; elevated roles come from the admin CLI.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	return s.CreateUser(ctx, in, model.RoleMember)
}

func (s *UserService) CreateUser(ctx context.Context, in RegisterInput, role model.Role) (*model.User, error) {
	in.NIM = strings.TrimSpace(in.NIM)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if in.NIM == "" || in.Email == "" || in.Name == "" || len(in.Password) < 6 || !role.Valid() {
		return nil, ErrInvalidParams
	}
	exists, err := s.users.ExistsByNIMOrEmail(ctx, in.NIM, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}
	if err := s.checkAffiliation(ctx, in.ClassID, in.CohortID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		NIM:      in.NIM,
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Password: string(hash),
		Role:     role,
		ClassID:  in.ClassID,
		CohortID: in.CohortID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// checkAffiliation verifies referenced class/cohort rows exist and agree with each other.
func (s *UserService) checkAffiliation(ctx context.Context, classID, cohortID *uint64) error {
	if classID != nil {
		class, err := s.master.FindClass(ctx, *classID)
		if err != nil {
			return notFound("find class", err)
		}
		if cohortID != nil && class.CohortID != *cohortID {
			return fmt.Errorf("class %d is not in cohort %d: %w", class.ID, *cohortID, ErrInvalidParams)
		}
	}
	if cohortID != nil {
		if _, err := s.master.FindCohort(ctx, *cohortID); err != nil {
			return notFound("find cohort", err)
		}
	}
	return nil
}

type LoginResult struct {
	User  *model.User `json:"user"`
	Token *pkg.Pair   `json:"token"`
}

func (s *UserService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	user, err := s.users.FindByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: pair}, nil
}

func (s *UserService) issue(ctx context.Context, user *model.User) (*pkg.Pair, error) {
	pair, err := s.tokens.GeneratePair(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if s.sessions != nil {
		if err := s.sessions.Save(ctx, user.ID, pair.AccessToken); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	return pair, nil
}

// Refresh issues a new pair for a valid refresh token and replaces the cached session.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}
	return s.issue(ctx, user)
}

func (s *UserService) Logout(ctx context.Context, actor model.Actor) error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Delete(ctx, actor.ID)
}

// Actor loads the caller fresh from the user table.
func (s *UserService) Actor(ctx context.Context, userID uint64) (model.Actor, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.Actor{}, notFound("load actor", err)
	}
	return user.Actor(), nil
}

func (s *UserService) Profile(ctx context.Context, actor model.Actor) (*model.User, error) {
	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, notFound("find user", err)
	}
	return user, nil
}

type ProfileInput struct {
	Name     string
	Email    string
	Phone    string
	ClassID  *uint64
	CohortID *uint64
}

// UpdateProfile replaces the mutable profile fields. Role stays as assigned.
func (s *UserService) UpdateProfile(ctx context.Context, actor model.Actor, in ProfileInput) (*model.User, error) {
	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, notFound("find user", err)
	}
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" {
		return nil, ErrInvalidParams
	}
	if email != user.Email {
		taken, err := s.users.EmailTaken(ctx, email, user.ID)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return nil, ErrUserExists
		}
	}
	if err := s.checkAffiliation(ctx, in.ClassID, in.CohortID); err != nil {
		return nil, err
	}

	user.Name, user.Email, user.Phone = name, email, in.Phone
	user.ClassID, user.CohortID = in.ClassID, in.CohortID
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// ChangePassword also ends the current session.
func (s *UserService) ChangePassword(ctx context.Context, actor model.Actor, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return ErrInvalidParams
	}
	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return notFound("find user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if s.sessions != nil {
		if err := s.sessions.Delete(ctx, user.ID); err != nil {
			s.log.Printf("drop session for user %d: %v", user.ID, err)
		}
	}
	return nil
}
