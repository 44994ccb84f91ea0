package httpx

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/oauth"
	"golang.org/x/crypto/bcrypt"

	"github.com/mbolis/expert-mapper/config"
)

// RoleAdmin is the only role an issued token can carry.
const RoleAdmin = "admin"

const refreshTTL = 30 * 24 * time.Hour

var (
	ErrRefreshRejected = errors.New("could not refresh")
	ErrClientGrant     = errors.New("client credentials not supported")
)

// adminVerifier checks admin logins against the user table and keeps
// track of refresh tokens in the token table.
type adminVerifier struct {
	db *sql.DB
}

func NewBearerServer(db *sql.DB, cfg config.Config) *oauth.BearerServer {
	return oauth.NewBearerServer(cfg.TokenSecret, cfg.TokenTTL, &adminVerifier{db}, nil)
}

func (v *adminVerifier) ValidateUser(username, password, scope string, r *http.Request) error {
	var hash []byte
	err := v.db.
		QueryRowContext(r.Context(), "SELECT password_hash FROM user WHERE username = ?", username).
		Scan(&hash)
	if err != nil {
		return err
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password))
}

func (v *adminVerifier) StoreTokenID(tokenType oauth.TokenType, credential, tokenID, refreshTokenID string) error {
	_, err := v.db.Exec(`
		INSERT INTO token (username, token_id, refresh_token_id, expiration)
		VALUES (?, ?, ?, ?)`,
		credential,
		tokenID,
		refreshTokenID,
		time.Now().Add(refreshTTL),
	)
	return err
}

// ValidateTokenID consumes a refresh token: it can be used only once.
func (v *adminVerifier) ValidateTokenID(tokenType oauth.TokenType, credential, tokenID, refreshTokenID string) error {
	var expiration time.Time
	err := v.db.
		QueryRow(`
			DELETE FROM token
			WHERE username = ?
				AND token_id = ?
				AND refresh_token_id = ?
			RETURNING expiration`,
			credential,
			tokenID,
			refreshTokenID,
		).
		Scan(&expiration)
	if err != nil {
		return ErrRefreshRejected
	}
	if expiration.Before(time.Now()) {
		return ErrRefreshRejected
	}
	return nil
}

func (*adminVerifier) AddClaims(tokenType oauth.TokenType, credential, tokenID, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{"roles": RoleAdmin}, nil
}

func (*adminVerifier) AddProperties(tokenType oauth.TokenType, credential, tokenID, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{}, nil
}

func (*adminVerifier) ValidateClient(clientID, clientSecret, scope string, r *http.Request) error {
	return ErrClientGrant
}
