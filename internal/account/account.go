// Package account manages user identities: creation, password hashing and credential checks.
package account

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CrownKira/recipe-app-api/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailRequired      = errors.New("users must have an email address")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")
)

// NormalizeEmail trims surrounding space and lowercases the domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// HashPassword returns the bcrypt hash stored in User.Password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// SetPassword hashes password onto user without saving it.
func SetPassword(user *model.User, password string) error {
	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}
	user.Password = hashed
	return nil
}

// CheckPassword reports whether password matches the user's stored hash.
func CheckPassword(user *model.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}

// EmailExists reports whether an account already uses the normalized email.
func EmailExists(db *gorm.DB, email string) (bool, error) {
	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", NormalizeEmail(email)).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateUser stores a new active user with a hashed password.
func CreateUser(db *gorm.DB, email, password, name string) (*model.User, error) {
	return create(db, email, password, name, false)
}

// CreateSuperuser stores a new user with staff and superuser flags set.
func CreateSuperuser(db *gorm.DB, email, password, name string) (*model.User, error) {
	return create(db, email, password, name, true)
}

func create(db *gorm.DB, email, password, name string, super bool) (*model.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	exists, err := EmailExists(db, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	user := &model.User{
		Email:       email,
		Name:        name,
		IsActive:    true,
		IsStaff:     super,
		IsSuperuser: super,
	}
	if err := SetPassword(user, password); err != nil {
		return nil, err
	}

	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate returns the active user matching email and password.
func Authenticate(db *gorm.DB, email, password string) (*model.User, error) {
	var user model.User
	err := db.Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !user.IsActive || !CheckPassword(&user, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// TouchLastLogin records a successful login.
func TouchLastLogin(db *gorm.DB, user *model.User) error {
	now := time.Now()
	user.LastLogin = &now
	return db.Model(user).Update("last_login", now).Error
}
