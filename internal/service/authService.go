package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	repository "github.com/ds124wfegd/learnlink/internal/database/postgres"
	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type authService struct {
	userRepo        repository.UserRepository
	tokens          TokenIssuer
	defaultCurrency string
	hashCost        int
}

func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, defaultCurrency string) AuthService {
	return &authService{
		userRepo:        userRepo,
		tokens:          tokens,
		defaultCurrency: defaultCurrency,
		hashCost:        bcrypt.DefaultCost,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, entity.Invalidf("invalid email %q", req.Email)
	}
	if len(req.Password) < minPasswordLength {
		return nil, entity.Invalidf("password must be at least %d characters", minPasswordLength)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, entity.Invalidf("name is required")
	}
	if !req.Role.Valid() {
		return nil, entity.Invalidf("role must be STUDENT or PROFESSOR")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         req.Role,
		Currency:     s.defaultCurrency,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered")

	return user, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, entity.ErrUserNotFound) {
		return nil, entity.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, entity.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *authService) Me(ctx context.Context, p entity.Principal) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, p.ID)
}

func (s *authService) UpdateProfile(ctx context.Context, p entity.Principal, req *UpdateProfileRequest) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, entity.Invalidf("name cannot be empty")
		}
		user.Name = name
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.HourlyRate != nil || req.Subjects != nil {
		if err := RequireRole(p, entity.RoleProfessor); err != nil {
			return nil, err
		}
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			return nil, entity.Invalidf("hourly rate cannot be negative")
		}
		user.HourlyRate = *req.HourlyRate
	}
	if req.Currency != nil {
		user.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	if req.Subjects != nil {
		user.Subjects = req.Subjects
	}
	if req.TelegramChatID != nil {
		user.TelegramChatID = req.TelegramChatID
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) GetProfessor(ctx context.Context, id int64) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, entity.ErrUserNotFound) {
		return nil, entity.ErrProfessorNotFound
	}
	if err != nil {
		return nil, err
	}
	if !user.IsProfessor() {
		return nil, entity.ErrProfessorNotFound
	}
	return user, nil
}

func (s *authService) ListProfessors(ctx context.Context, subject string) ([]*entity.User, error) {
	return s.userRepo.ListProfessors(ctx, strings.TrimSpace(subject))
}
