// Package accounts authenticates operators against Postgres through gorm.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cx-tal-miterani/travel-desk/internal/gateway"
	"github.com/cx-tal-miterani/travel-desk/internal/models"
)

// UserRecord is the gorm model for operators
type UserRecord struct {
	ID           string `gorm:"primaryKey;type:uuid"`
	Email        string `gorm:"column:email;uniqueIndex;not null"`
	Name         string `gorm:"column:name"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the default table name
func (UserRecord) TableName() string {
	return "operators"
}

// SessionRecord is the gorm model for issued sessions. Tokens are stored hashed.
type SessionRecord struct {
	TokenHash string    `gorm:"primaryKey;column:token_hash"`
	UserID    string    `gorm:"column:user_id;type:uuid;index;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time
}

// TableName overrides the default table name
func (SessionRecord) TableName() string {
	return "operator_sessions"
}

func (u *UserRecord) toModel() *models.User {
	return &models.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// Provider implements gateway.Authenticator with gorm
type Provider struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewProvider creates a provider issuing sessions valid for ttl
func NewProvider(db *gorm.DB, ttl time.Duration) *Provider {
	return &Provider{db: db, ttl: ttl, now: time.Now}
}

// Migrate creates or updates the operator tables
func (p *Provider) Migrate(ctx context.Context) error {
	if err := p.db.WithContext(ctx).AutoMigrate(&UserRecord{}, &SessionRecord{}); err != nil {
		return fmt.Errorf("failed to migrate accounts: %w", err)
	}
	return nil
}

// SignIn checks credentials and issues a session
func (p *Provider) SignIn(ctx context.Context, email, password string) (*models.AuthSession, *models.User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, nil, err
	}

	var user UserRecord
	if err := p.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, gateway.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to load operator: %w", err)
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, err
	}

	session, err := p.issue(ctx, p.db.WithContext(ctx), user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user.toModel(), nil
}

// SignUp registers an operator and signs them in
func (p *Provider) SignUp(ctx context.Context, email, password, name string) (*models.AuthSession, *models.User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := UserRecord{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
	}

	var session *models.AuthSession
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&UserRecord{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if count > 0 {
			return gateway.ErrEmailTaken
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return gateway.ErrEmailTaken
			}
			return fmt.Errorf("failed to create operator: %w", err)
		}
		var err error
		session, err = p.issue(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return session, user.toModel(), nil
}

// SignOut revokes token. Unknown tokens are ignored.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	err := p.db.WithContext(ctx).Where("token_hash = ?", HashToken(token)).Delete(&SessionRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// CurrentUser resolves token to its operator
func (p *Provider) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	var session SessionRecord
	if err := p.db.WithContext(ctx).Where("token_hash = ?", HashToken(token)).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gateway.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !p.now().Before(session.ExpiresAt) {
		return nil, gateway.ErrSessionExpired
	}

	var user UserRecord
	if err := p.db.WithContext(ctx).Where("id = ?", session.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gateway.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load operator: %w", err)
	}
	return user.toModel(), nil
}

func (p *Provider) issue(ctx context.Context, db *gorm.DB, userID string) (*models.AuthSession, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}
	record := SessionRecord{
		TokenHash: HashToken(token),
		UserID:    userID,
		ExpiresAt: p.now().Add(p.ttl).UTC(),
	}
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &models.AuthSession{Token: token, UserID: userID, ExpiresAt: record.ExpiresAt}, nil
}
