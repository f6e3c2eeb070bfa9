package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ginkit/internal/auth"
	apperrors "ginkit/internal/errors"
	"ginkit/internal/logger"
	"ginkit/internal/models"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// CreateUser registers a new user
func (s *userService) CreateUser(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:     email,
		Password:  string(hashedPassword),
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
		Roles:     models.RoleUser,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// GetUserByEmail retrieves an active user by email
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// AttemptLogin verifies credentials and stamps last_login_at. Unknown users
// and wrong passwords both return ErrInvalidCredentials.
func (s *userService) AttemptLogin(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.VerifyPassword(user, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(user).UpdateColumn("last_login_at", now).Error; err != nil {
		logger.Get().Warnw("failed to record last login", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now
	return user, nil
}

// NewIdentityResolver adapts users to the token endpoint. Bad credentials
// resolve to a nil identity.
func NewIdentityResolver(users UserServicer) auth.IdentityResolver {
	return func(ctx context.Context, _, username, password string, _ url.Values) (*auth.Identity, error) {
		user, err := users.AttemptLogin(ctx, username, password)
		if err != nil {
			if errors.Is(err, apperrors.ErrInvalidCredentials) {
				return nil, nil
			}
			return nil, err
		}
		return &auth.Identity{
			Subject: user.ID,
			Name:    user.Email,
			Roles:   user.RoleList(),
		}, nil
	}
}

// NewClaimsAugmenter adds profile fields of the resolved user to the token.
func NewClaimsAugmenter(users UserServicer) auth.ClaimsAugmenter {
	return func(ctx context.Context, identity *auth.Identity, claims *auth.Claims) error {
		user, err := users.GetUserByID(ctx, identity.Subject)
		if err != nil {
			return err
		}
		if claims.Extra == nil {
			claims.Extra = make(map[string]string, 2)
		}
		claims.Extra["email"] = user.Email
		if name := strings.TrimSpace(user.FirstName + " " + user.LastName); name != "" {
			claims.Extra["full_name"] = name
		}
		return nil
	}
}
