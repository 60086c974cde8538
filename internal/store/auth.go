package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/google/uuid"

	"github.com/cx-tal-miterani/travel-desk/internal/accounts"
	"github.com/cx-tal-miterani/travel-desk/internal/gateway"
	"github.com/cx-tal-miterani/travel-desk/internal/models"
)

// userRecord is a stored operator
type userRecord struct {
	models.User
	PasswordHash string `json:"passwordHash"`
}

// sessionRecord is stored under the hash of its token
type sessionRecord struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SignUp registers an operator and signs them in
func (s *Store) SignUp(ctx context.Context, email, password, name string) (*models.AuthSession, *models.User, error) {
	email, err := accounts.NormalizeEmail(email)
	if err != nil {
		return nil, nil, err
	}
	hash, err := accounts.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}
	token, err := accounts.NewToken()
	if err != nil {
		return nil, nil, err
	}

	user := userRecord{
		User: models.User{
			ID:        uuid.New().String(),
			Email:     email,
			Name:      strings.TrimSpace(name),
			CreatedAt: s.now().UTC(),
		},
		PasswordHash: hash,
	}
	var session *models.AuthSession

	err = s.update(ctx, func(tx *bolt.Tx) error {
		emails := tx.Bucket(emailsBucket)
		if emails.Get([]byte(email)) != nil {
			return gateway.ErrEmailTaken
		}
		if err := emails.Put([]byte(email), []byte(user.ID)); err != nil {
			return err
		}
		if err := put(tx.Bucket(usersBucket), user.ID, user); err != nil {
			return err
		}
		session, err = s.issue(tx, token, user.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return session, &user.User, nil
}

// SignIn checks credentials and issues a session
func (s *Store) SignIn(ctx context.Context, email, password string) (*models.AuthSession, *models.User, error) {
	email, err := accounts.NormalizeEmail(email)
	if err != nil {
		return nil, nil, err
	}
	token, err := accounts.NewToken()
	if err != nil {
		return nil, nil, err
	}

	var user userRecord
	var session *models.AuthSession
	err = s.update(ctx, func(tx *bolt.Tx) error {
		id := tx.Bucket(emailsBucket).Get([]byte(email))
		if id == nil {
			return gateway.ErrInvalidCredentials
		}
		if err := getUser(tx, string(id), &user); err != nil {
			return err
		}
		if err := accounts.ComparePassword(user.PasswordHash, password); err != nil {
			return err
		}
		session, err = s.issue(tx, token, user.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return session, &user.User, nil
}

// SignOut revokes token. Unknown tokens are ignored.
func (s *Store) SignOut(ctx context.Context, token string) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete([]byte(accounts.HashToken(token)))
	})
}

// CurrentUser resolves token to its operator
func (s *Store) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	var user userRecord
	err := s.view(ctx, func(tx *bolt.Tx) error {
		v := tx.Bucket(sessionsBucket).Get([]byte(accounts.HashToken(token)))
		if v == nil {
			return gateway.ErrInvalidCredentials
		}
		var session sessionRecord
		if err := json.Unmarshal(v, &session); err != nil {
			return err
		}
		if !s.now().Before(session.ExpiresAt) {
			return gateway.ErrSessionExpired
		}
		return getUser(tx, session.UserID, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user.User, nil
}

func getUser(tx *bolt.Tx, id string, user *userRecord) error {
	v := tx.Bucket(usersBucket).Get([]byte(id))
	if v == nil {
		return gateway.ErrInvalidCredentials
	}
	if err := json.Unmarshal(v, user); err != nil {
		return fmt.Errorf("failed to decode operator: %w", err)
	}
	return nil
}

func (s *Store) issue(tx *bolt.Tx, token, userID string) (*models.AuthSession, error) {
	record := sessionRecord{UserID: userID, ExpiresAt: s.now().Add(s.ttl).UTC()}
	if err := put(tx.Bucket(sessionsBucket), accounts.HashToken(token), record); err != nil {
		return nil, err
	}
	return &models.AuthSession{Token: token, UserID: userID, ExpiresAt: record.ExpiresAt}, nil
}
