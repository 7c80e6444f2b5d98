// Package session keeps the signed-in token pair of a profile and hands out
// valid access tokens, refreshing them before they expire.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/whirlwatch/internal/config"
	"github.com/amaumene/whirlwatch/internal/models"
	"github.com/amaumene/whirlwatch/internal/services/whirlwatch"
)

// refreshMargin is how long before expiry an access token is replaced
const refreshMargin = 5 * time.Minute

// Authenticator issues and refreshes tokens
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*whirlwatch.Credentials, error)
	RefreshSession(ctx context.Context, refreshToken string) (string, error)
}

// Provider implements whirlwatch.SessionProvider on top of the session store
type Provider struct {
	db      *models.Database
	auth    Authenticator
	profile string
	logger  *logrus.Logger
	tokens  *cache.Cache
	now     func() time.Time

	mu sync.Mutex
	// set when the backend refused the cached token
	stale bool
}

// NewProvider creates a session provider for the configured profile
func NewProvider(db *models.Database, auth Authenticator, cfg *config.Config, logger *logrus.Logger) *Provider {
	return &Provider{
		db:      db,
		auth:    auth,
		profile: cfg.Profile,
		logger:  logger,
		tokens:  cache.New(cache.NoExpiration, 10*time.Minute),
		now:     time.Now,
	}
}

// SignIn exchanges credentials for a token pair and stores it
func (p *Provider) SignIn(ctx context.Context, username, password string) (*models.User, error) {
	creds, err := p.auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.db.SaveSession(&models.Session{
		Profile:      p.profile,
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		UserID:       creds.User.ID,
		Username:     creds.User.Username,
	}); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	p.stale = false
	p.remember(creds.AccessToken)

	p.logger.WithFields(logrus.Fields{
		"profile":  p.profile,
		"username": creds.User.Username,
	}).Info("Signed in")
	return &creds.User, nil
}

// SignOut forgets the stored session
func (p *Provider) SignOut() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tokens.Delete(p.profile)
	if err := p.db.DeleteSession(p.profile); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CurrentUser returns the user of the stored session
func (p *Provider) CurrentUser() (*models.User, error) {
	sess, err := p.db.GetSession(p.profile)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			return nil, p.notSignedIn()
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return &models.User{ID: sess.UserID, Username: sess.Username}, nil
}

// AccessToken returns a token valid for at least the refresh margin
func (p *Provider) AccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.stale {
		if token, ok := p.tokens.Get(p.profile); ok {
			return token.(string), nil
		}
	}

	sess, err := p.db.GetSession(p.profile)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			return "", p.notSignedIn()
		}
		return "", fmt.Errorf("failed to read session: %w", err)
	}

	token := sess.AccessToken
	if p.stale || !p.fresh(token) {
		token, err = p.refresh(ctx, sess)
		if err != nil {
			return "", err
		}
	}

	p.stale = false
	p.remember(token)
	return token, nil
}

// Invalidate drops the cached token; the next call refreshes it
func (p *Provider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tokens.Delete(p.profile)
	p.stale = true
}

func (p *Provider) refresh(ctx context.Context, sess *models.Session) (string, error) {
	p.logger.WithField("profile", p.profile).Debug("Refreshing access token")

	token, err := p.auth.RefreshSession(ctx, sess.RefreshToken)
	if err != nil {
		if errors.Is(err, whirlwatch.ErrUnauthorized) {
			// refresh token expired or revoked, a new sign-in is required
			if delErr := p.db.DeleteSession(p.profile); delErr != nil {
				p.logger.WithError(delErr).Warn("Failed to delete expired session")
			}
		}
		return "", err
	}

	if err := p.db.UpdateAccessToken(p.profile, token); err != nil {
		return "", fmt.Errorf("failed to store refreshed token: %w", err)
	}
	return token, nil
}

// fresh reports whether token is usable beyond the refresh margin
func (p *Provider) fresh(token string) bool {
	exp, err := expiry(token)
	if err != nil {
		return false
	}
	return exp.IsZero() || p.now().Add(refreshMargin).Before(exp)
}

// remember caches token until the refresh margin before its expiry
func (p *Provider) remember(token string) {
	exp, err := expiry(token)
	if err != nil {
		return
	}
	if exp.IsZero() {
		p.tokens.Set(p.profile, token, cache.NoExpiration)
		return
	}
	if ttl := exp.Sub(p.now()) - refreshMargin; ttl > 0 {
		p.tokens.Set(p.profile, token, ttl)
	}
}

func (p *Provider) notSignedIn() error {
	return fmt.Errorf("%w: no session for profile %q, run login first", whirlwatch.ErrUnauthorized, p.profile)
}

// expiry reads the exp claim without verifying the signature; the backend
// remains the authority on validity. A zero time means no exp claim.
func expiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse access token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}
