package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gridsight/gridsight-backend/internal/data/repos/auth"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
	"github.com/gridsight/gridsight-backend/internal/requestdata"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string, role types.UserRole) (*types.User, error)
	Login(ctx context.Context, email, password string) (string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, userID uuid.UUID) error

	// ContextFromToken validates the access token and returns a context
	// carrying the caller's request data.
	ContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      auth.UserRepo
	userTokenRepo auth.UserTokenRepo
	jwtSecret     []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo auth.UserRepo,
	userTokenRepo auth.UserTokenRepo,
	jwtSecret string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           baseLog.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecret:     []byte(jwtSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *authService) Register(ctx context.Context, name, email, password string, role types.UserRole) (*types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("valid email is required")
	}
	if len(password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}
	if existing, err := s.userRepo.GetByEmail(ctx, nil, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.Validation("email %s already registered", email)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if role == "" {
		role = types.RoleInspector
	}
	return s.userRepo.Create(ctx, nil, &types.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	})
}

func (s *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return "", "", err
	}
	if user == nil {
		return "", "", fmt.Errorf("unknown email: %w", apperr.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", fmt.Errorf("bad credentials: %w", apperr.ErrUnauthorized)
	}
	return s.issueTokens(ctx, user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	row, err := s.userTokenRepo.GetByRefreshToken(ctx, nil, refreshToken)
	if err != nil {
		return "", "", err
	}
	if row == nil || time.Now().After(row.ExpiresAt) {
		return "", "", fmt.Errorf("refresh token invalid or expired: %w", apperr.ErrUnauthorized)
	}
	user, err := s.userRepo.GetByID(ctx, nil, row.UserID)
	if err != nil {
		return "", "", err
	}
	if user == nil {
		return "", "", fmt.Errorf("user gone: %w", apperr.ErrUnauthorized)
	}

	var access, refresh string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userTokenRepo.DeleteByUser(ctx, tx, user.ID); err != nil {
			return err
		}
		access, refresh, err = s.issueTokensTx(ctx, tx, user)
		return err
	})
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.userTokenRepo.DeleteByUser(ctx, nil, userID)
}

func (s *authService) ContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("token parse: %w", apperr.ErrUnauthorized)
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("token subject: %w", apperr.ErrUnauthorized)
	}
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user gone: %w", apperr.ErrUnauthorized)
	}

	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      user.ID,
		UserEmail:   user.Email,
		UserName:    user.Name,
		Role:        user.Role,
	}), nil
}

func (s *authService) issueTokens(ctx context.Context, user *types.User) (string, string, error) {
	return s.issueTokensTx(ctx, nil, user)
}

func (s *authService) issueTokensTx(ctx context.Context, tx *gorm.DB, user *types.User) (string, string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(s.accessTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}
	refresh := uuid.NewString() + uuid.NewString()

	_, err = s.userTokenRepo.Create(ctx, tx, &types.UserToken{
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(s.refreshTTL),
	})
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
