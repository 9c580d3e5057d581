// Package services contains server-side business logic. This file implements
// AuthService, which registers credentials, logs users in by issuing signed
// session tokens, and resolves tokens back to subjects.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/revocations"
	"github.com/google/uuid"
)

// DefaultSessionTTL keeps sessions short-lived.
const DefaultSessionTTL = 10 * time.Minute

// Messages safe to show to clients.
const (
	MsgInvalidCredentials = "invalid credentials"
	MsgNotAuthenticated   = "not authenticated"
)

// decoyPassword is hashed once so that logins for unknown identifiers
// perform the same verification work as real ones.
const decoyPassword = "decoy password for unknown identifiers"

// Session is the result of a successful login.
type Session struct {
	Token     string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TTL returns the validity window of the session token.
func (s *Session) TTL() time.Duration { return s.ExpiresAt.Sub(s.IssuedAt) }

type rehasher interface {
	NeedsRehash(encodedHash string) bool
}

// AuthService provides authentication operations:
//   - Register: hash a new password and hand the credential to the store
//   - Login: verify a password and mint a session token
//   - ResolveSession: validate a token and return its subject
//   - Logout: revoke a subject's sessions when a revocation store is set
type AuthService struct {
	credentials credentials.Repository
	revocations revocations.Repository
	hasher      cryptox.Hasher
	salts       cryptox.SaltGenerator
	codec       *auth.Codec
	pool        *cryptox.Pool
	logger      logging.Logger
	sessionTTL  time.Duration
	now         func() time.Time

	decoyHash string
}

type Option func(*AuthService)

// WithSessionTTL sets the token validity window; non-positive values keep
// the default.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *AuthService) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithClock replaces time.Now for issuing tokens and checking revocations.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// WithRevocations enables logout by consulting r when resolving sessions.
func WithRevocations(r revocations.Repository) Option {
	return func(s *AuthService) { s.revocations = r }
}

// NewAuthService wires the service to its collaborators.
func NewAuthService(
	store credentials.Repository,
	hasher cryptox.Hasher,
	salts cryptox.SaltGenerator,
	codec *auth.Codec,
	pool *cryptox.Pool,
	logger logging.Logger,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		credentials: store,
		hasher:      hasher,
		salts:       salts,
		codec:       codec,
		pool:        pool,
		logger:      logger.With("module", "auth_service"),
		sessionTTL:  DefaultSessionTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.decoyHash = s.newDecoyHash()
	return s
}

// SessionTTL returns the configured token validity window.
func (s *AuthService) SessionTTL() time.Duration { return s.sessionTTL }

// Register hashes password with a fresh salt and stores the credential.
// Uniqueness is left to the store, whose clash is reported as
// common.ErrDuplicateRegistration.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.Credential, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", common.ErrValidation)
	}
	// usernames and emails share one login namespace, kept apart by '@'
	if strings.Contains(username, "@") {
		return nil, fmt.Errorf("%w: username must not contain '@'", common.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email must contain '@'", common.ErrValidation)
	}
	if err := cryptox.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidPassword, err)
	}

	hash, salt, err := s.hashPassword(ctx, password)
	if err != nil {
		return nil, err
	}

	c := &models.Credential{
		SubjectID:    uuid.NewString(),
		UserName:     username,
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: string(salt),
	}

	created, err := s.credentials.Insert(ctx, c)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateRegistration) {
			return nil, common.ErrDuplicateRegistration
		}
		return nil, fmt.Errorf("error creating credential: %w", err)
	}

	s.logger.Info(ctx, "Registered", "subject", created.SubjectID, "scheme", s.hasher.Scheme())
	return created, nil
}

// Login verifies password for the credential found by identifier (email or
// username) and issues a session. Unknown identifiers and wrong passwords
// both return common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*Session, error) {
	identifier = strings.TrimSpace(identifier)

	cred, err := s.credentials.FetchByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.verifyDecoy(ctx, password)
			s.logger.Info(ctx, "Login rejected", "reason", "unknown identifier")
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "credential lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := cryptox.Run(ctx, s.pool, func() (bool, error) {
		return s.hasher.Verify(password, cred.PasswordHash)
	})
	if err != nil {
		if isContextError(err) {
			return nil, err
		}
		if errors.Is(err, cryptox.ErrMalformedHash) {
			s.logger.Error(ctx, "stored password hash is malformed", "subject", cred.SubjectID, "error", err)
			return nil, common.ErrMalformedStoredHash
		}
		s.logger.Error(ctx, "password verification failed", "subject", cred.SubjectID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		s.logger.Info(ctx, "Login rejected", "reason", "password mismatch", "subject", cred.SubjectID)
		return nil, common.ErrInvalidCredentials
	}

	s.upgradeHash(ctx, cred, password)

	return s.issue(ctx, cred.SubjectID)
}

// ResolveSession validates token and returns the subject it was issued to.
// Callers that need the account to still exist must look it up themselves.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (string, error) {
	claims, err := s.decode(token)
	if err != nil {
		return "", err
	}

	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.Subject, claims.ID, claims.IssuedAt, s.now())
		if err != nil {
			s.logger.Error(ctx, "revocation lookup failed", "subject", claims.Subject, "error", err)
			return "", common.ErrorInternal
		}
		if revoked {
			return "", common.ErrTokenRevoked
		}
	}

	return claims.Subject, nil
}

// Logout revokes the session carried by token together with every session
// of the same subject issued in an earlier second. Sessions from the same
// second as token, and any issued later, stay valid. Without a revocation store it only validates
// the token; the client drops it and it expires on its own.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.decode(token)
	if err != nil {
		return err
	}
	if s.revocations == nil {
		return nil
	}

	keepUntil := claims.ExpiresAt
	if alt := claims.IssuedAt.Add(s.sessionTTL); alt.After(keepUntil) {
		keepUntil = alt
	}
	mark := models.Revocation{
		SubjectID:     claims.Subject,
		TokenID:       claims.ID,
		RevokedBefore: claims.IssuedAt,
		ExpiresAt:     keepUntil,
	}
	if err := s.revocations.Revoke(ctx, mark); err != nil {
		s.logger.Error(ctx, "revocation failed", "subject", claims.Subject, "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "Logged out", "subject", claims.Subject)
	return nil
}

// PublicError returns the message that may be shown to a client for err.
// Login failures collapse to MsgInvalidCredentials and session failures to
// MsgNotAuthenticated.
func PublicError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, common.ErrInvalidCredentials), errors.Is(err, common.ErrMalformedStoredHash):
		return MsgInvalidCredentials
	case common.IsSessionError(err):
		return MsgNotAuthenticated
	case errors.Is(err, common.ErrDuplicateRegistration),
		errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrInvalidPassword):
		return err.Error()
	default:
		return common.ErrorInternal.Error()
	}
}

// --- helpers below ---

func (s *AuthService) issue(ctx context.Context, subject string) (*Session, error) {
	claims := auth.NewSessionClaims(subject, s.now(), s.sessionTTL)
	token, err := s.codec.Encode(claims)
	if err != nil {
		s.logger.Error(ctx, "token encoding failed", "error", err)
		return nil, common.ErrorInternal
	}
	s.logger.Info(ctx, "Logged in", "subject", subject, "expires_at", claims.ExpiresAt)
	return &Session{Token: token, Subject: subject, IssuedAt: claims.IssuedAt, ExpiresAt: claims.ExpiresAt}, nil
}

func (s *AuthService) decode(token string) (auth.SessionClaims, error) {
	if token == "" {
		return auth.SessionClaims{}, common.ErrUnauthenticated
	}
	claims, err := s.codec.Decode(token)
	if err != nil {
		return auth.SessionClaims{}, mapTokenError(err)
	}
	return claims, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpired):
		return common.ErrTokenExpired
	case errors.Is(err, auth.ErrBadSignature):
		return common.ErrTokenInvalidSignature
	case errors.Is(err, auth.ErrAlgorithmMismatch):
		return common.ErrAlgorithmMismatch
	default:
		return common.ErrTokenMalformed
	}
}

func (s *AuthService) hashPassword(ctx context.Context, password string) (string, cryptox.Salt, error) {
	salt := s.salts.Generate()
	hash, err := cryptox.Run(ctx, s.pool, func() (string, error) {
		return s.hasher.Hash(password, salt)
	})
	if err != nil {
		if isContextError(err) {
			return "", "", err
		}
		if errors.Is(err, cryptox.ErrEmptyPassword) || errors.Is(err, cryptox.ErrPasswordTooLong) {
			return "", "", fmt.Errorf("%w: %v", common.ErrInvalidPassword, err)
		}
		return "", "", fmt.Errorf("error hashing password: %w", err)
	}
	return hash, salt, nil
}

// newDecoyHash runs once at construction on the hashing pool.
func (s *AuthService) newDecoyHash() string {
	ctx := context.Background()
	hash, err := cryptox.Run(ctx, s.pool, func() (string, error) {
		return s.hasher.Hash(decoyPassword, s.salts.Generate())
	})
	if err != nil {
		s.logger.Warn(ctx, "decoy hash unavailable", "error", err)
		return ""
	}
	return hash
}

// verifyDecoy spends one verification on a throwaway hash.
func (s *AuthService) verifyDecoy(ctx context.Context, password string) {
	if s.decoyHash == "" {
		return
	}
	_, _ = cryptox.Run(ctx, s.pool, func() (bool, error) {
		return s.hasher.Verify(password, s.decoyHash)
	})
}

// upgradeHash re-hashes a verified password when it was stored with a
// scheme other than the primary one. Failures only get logged.
func (s *AuthService) upgradeHash(ctx context.Context, cred *models.Credential, password string) {
	r, ok := s.hasher.(rehasher)
	if !ok || !r.NeedsRehash(cred.PasswordHash) {
		return
	}
	hash, salt, err := s.hashPassword(ctx, password)
	if err != nil {
		s.logger.Warn(ctx, "password rehash failed", "subject", cred.SubjectID, "error", err)
		return
	}
	if err := s.credentials.UpdatePasswordHash(ctx, cred.SubjectID, hash, string(salt)); err != nil {
		s.logger.Warn(ctx, "password rehash not stored", "subject", cred.SubjectID, "error", err)
		return
	}
	s.logger.Info(ctx, "Password hash upgraded", "subject", cred.SubjectID, "scheme", s.hasher.Scheme())
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
