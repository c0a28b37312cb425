package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kazwonder/tourbooking/config"
	"github.com/kazwonder/tourbooking/internal/domain"
	"github.com/kazwonder/tourbooking/internal/email"
	"github.com/kazwonder/tourbooking/internal/kafka"
	"github.com/kazwonder/tourbooking/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmailTaken — на эту почту уже зарегистрирован активный аккаунт.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials — пара email/пароль не подошла.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountInactive — аккаунт существует, но почта не подтверждена.
	ErrAccountInactive = errors.New("account is not activated")
	// ErrInvalidToken — токен подтверждения не найден, использован или истёк.
	ErrInvalidToken = errors.New("verification token is invalid or expired")
	// ErrUserNotFound — пользователь не существует.
	ErrUserNotFound = errors.New("user not found")
)

type AuthUseCase interface {
	Register(ctx context.Context, input RegisterInput) error
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, emailAddr, password string) (string, *domain.User, error)
	ParseToken(token string) (int64, error)
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*domain.User, error)
}

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

const publishRetries = 3

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type UpdateProfileInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	AvatarURL *string `json:"avatarUrl"`
}

type AuthService struct {
	users              repository.UserRepository
	producer           Producer
	notificationsTopic string
	jwtCfg             config.JWTConfig
	frontendURL        string
	verifyTokenTTL     time.Duration
	now                func() time.Time
}

func NewAuthService(users repository.UserRepository, producer Producer, notificationsTopic string, jwtCfg config.JWTConfig, appCfg config.AppConfig) *AuthService {
	return &AuthService{
		users:              users,
		producer:           producer,
		notificationsTopic: notificationsTopic,
		jwtCfg:             jwtCfg,
		frontendURL:        appCfg.FrontendURL,
		verifyTokenTTL:     time.Duration(appCfg.VerifyTokenTTL) * time.Hour,
		now:                time.Now,
	}
}

// Register создаёт неактивный аккаунт и шлёт письмо с токеном
// подтверждения. Неактивированная почта перезаписывается.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	existing, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	var user *domain.User
	switch {
	case existing == nil:
		user = &domain.User{
			Email:          input.Email,
			HashedPassword: string(hash),
			FirstName:      input.FirstName,
			LastName:       input.LastName,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
	case existing.IsActive:
		return ErrEmailTaken
	default:
		existing.HashedPassword = string(hash)
		existing.FirstName = input.FirstName
		existing.LastName = input.LastName
		if err := s.users.Update(ctx, existing); err != nil {
			return err
		}
		user = existing
	}

	token := &domain.EmailToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.verifyTokenTTL),
	}
	if err := s.users.CreateEmailToken(ctx, token); err != nil {
		return err
	}

	return s.sendVerification(ctx, user, token.Token)
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	stored, err := s.users.GetEmailToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if stored.Used || s.now().After(stored.ExpiresAt) {
		return ErrInvalidToken
	}
	return s.users.Activate(ctx, stored.UserID, stored.ID)
}

func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrAccountInactive
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) issueToken(userID int64) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.AddDate(0, 0, s.jwtCfg.AccessExpireDays)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.Secret))
}

// ParseToken проверяет подпись и срок действия и возвращает id пользователя.
func (s *AuthService) ParseToken(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	var userID int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &userID); err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) sendVerification(ctx context.Context, user *domain.User, token string) error {
	if s.producer == nil || s.notificationsTopic == "" {
		return nil
	}

	verifyURL := fmt.Sprintf("%s/login?verify_token=%s", s.frontendURL, token)
	html, err := email.BuildVerification(user.FirstName, verifyURL)
	if err != nil {
		return err
	}

	event := kafka.NotificationEvent{
		Type:    kafka.EventEmailVerification,
		To:      user.Email,
		Subject: "Подтверждение регистрации KazWonder",
		HTML:    html,
		SentAt:  s.now(),
	}
	if err := s.producer.PublishWithRetry(ctx, s.notificationsTopic, uuid.NewString(), event, publishRetries); err != nil {
		log.Printf("WARNING: failed to publish verification email for %s: %v", user.Email, err)
	}
	return nil
}

var _ AuthUseCase = (*AuthService)(nil)
