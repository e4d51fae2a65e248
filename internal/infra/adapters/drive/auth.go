package drive

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"

	"drive-search-bot/internal/config"
	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/ports/adapter"
	"drive-search-bot/internal/domain/ports/repository"
	"drive-search-bot/internal/infra/metrics"
)

// Installed-app flow: Google shows the code to the admin, who pastes it back.
const oobRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

var _ adapter.DriveAuth = (*Authenticator)(nil)

// TokenCipher optionally seals the persisted token.
type TokenCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Authenticator owns the OAuth token. The token is persisted in the
// settings table and discarded once Google rejects it.
type Authenticator struct {
	oauth    *oauth2.Config
	settings repository.SettingRepository
	cipher   TokenCipher
	log      *zerolog.Logger

	mu    sync.Mutex
	token *oauth2.Token
	gen   uint64
}

// LoadCredentials returns the OAuth client JSON from config, or nil when none is set.
func LoadCredentials(cfg config.DriveConfig) ([]byte, error) {
	if cfg.CredentialsJSON != "" {
		return []byte(cfg.CredentialsJSON), nil
	}
	if cfg.CredentialsFile == "" {
		return nil, nil
	}
	b, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read drive credentials: %w", err)
	}
	return b, nil
}

// NewAuthenticator accepts empty credentials; AuthURL then reports domain.ErrNoCredentials.
func NewAuthenticator(credentials []byte, settings repository.SettingRepository, cipher TokenCipher, logger *zerolog.Logger) (*Authenticator, error) {
	l := logger.With().Str("component", "drive_auth").Logger()
	a := &Authenticator{settings: settings, cipher: cipher, log: &l}
	if len(credentials) == 0 {
		return a, nil
	}
	cfg, err := google.ConfigFromJSON(credentials, gdrive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parse drive credentials: %w", err)
	}
	cfg.RedirectURL = oobRedirectURL
	a.oauth = cfg
	return a, nil
}

func (a *Authenticator) HasCredentials() bool { return a.oauth != nil }

func (a *Authenticator) AuthURL() (string, error) {
	if a.oauth == nil {
		return "", domain.ErrNoCredentials
	}
	return a.oauth.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Exchange trades the pasted authorization code for a token and persists it.
func (a *Authenticator) Exchange(ctx context.Context, code string) error {
	if a.oauth == nil {
		return domain.ErrNoCredentials
	}
	tok, err := a.oauth.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("%w: exchange code: %v", domain.ErrUnauthenticated, err)
	}
	if err := a.save(ctx, tok); err != nil {
		return err
	}
	a.log.Info().Msg("drive authorized")
	return nil
}

// Bootstrap stores an exported base64 token unless one is already persisted.
func (a *Authenticator) Bootstrap(ctx context.Context, tokenBase64 string) error {
	if tokenBase64 == "" {
		return nil
	}
	if _, err := a.current(ctx); err == nil {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(tokenBase64))
	if err != nil {
		return fmt.Errorf("decode bootstrap token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return fmt.Errorf("parse bootstrap token: %w", err)
	}
	return a.save(ctx, &tok)
}

// IsAuthenticated reports whether a usable token is held. It does not call Google.
func (a *Authenticator) IsAuthenticated(ctx context.Context) bool {
	_, err := a.current(ctx)
	return err == nil
}

// Generation changes whenever the token is replaced or discarded.
func (a *Authenticator) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen
}

// TokenSource refreshes the token as needed, persisting refreshed tokens.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if a.oauth == nil {
		return nil, domain.ErrNoCredentials
	}
	tok, err := a.current(ctx)
	if err != nil {
		return nil, err
	}
	// Refreshes outlive the request that triggered them.
	base := a.oauth.TokenSource(context.Background(), tok)
	return &persistingSource{auth: a, base: base, last: tok.AccessToken}, nil
}

// Export returns the persisted token as base64 JSON, for GDRIVE_TOKEN_BASE64.
func (a *Authenticator) Export(ctx context.Context) (string, error) {
	tok, err := a.current(ctx)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(tok)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Invalidate drops the in-memory and persisted token.
func (a *Authenticator) Invalidate(ctx context.Context, reason string) {
	a.mu.Lock()
	a.token = nil
	a.gen++
	a.mu.Unlock()

	if err := a.settings.ClearSetting(ctx, repository.SettingDriveToken); err != nil {
		a.log.Error().Err(err).Msg("clear persisted token")
	}
	metrics.IncDriveAuthInvalidated()
	a.log.Warn().Str("reason", reason).Msg("drive token discarded")
}

func (a *Authenticator) current(ctx context.Context) (*oauth2.Token, error) {
	a.mu.Lock()
	tok := a.token
	a.mu.Unlock()
	if tok != nil {
		return tok, nil
	}

	stored, err := a.settings.GetSetting(ctx, repository.SettingDriveToken, "")
	if err != nil {
		return nil, err
	}
	if stored == "" {
		return nil, domain.ErrUnauthenticated
	}
	tok, err = a.decode(stored)
	if err != nil {
		a.log.Warn().Err(err).Msg("stored token unreadable")
		return nil, domain.ErrUnauthenticated
	}
	if !tok.Valid() && tok.RefreshToken == "" {
		return nil, domain.ErrUnauthenticated
	}

	a.mu.Lock()
	if a.token == nil {
		a.token = tok
	}
	tok = a.token
	a.mu.Unlock()
	return tok, nil
}

func (a *Authenticator) save(ctx context.Context, tok *oauth2.Token) error {
	encoded, err := a.encode(tok)
	if err != nil {
		return err
	}
	if err := a.settings.SetSetting(ctx, repository.SettingDriveToken, encoded); err != nil {
		return err
	}
	a.mu.Lock()
	a.token = tok
	a.gen++
	a.mu.Unlock()
	return nil
}

func (a *Authenticator) encode(tok *oauth2.Token) (string, error) {
	raw, err := json.Marshal(tok)
	if err != nil {
		return "", fmt.Errorf("marshal token: %w", err)
	}
	out := base64.StdEncoding.EncodeToString(raw)
	if a.cipher != nil {
		return a.cipher.Encrypt(out)
	}
	return out, nil
}

func (a *Authenticator) decode(stored string) (*oauth2.Token, error) {
	b64 := stored
	if a.cipher != nil {
		if pt, err := a.cipher.Decrypt(stored); err == nil {
			b64 = pt
		}
		// plain tokens written before a key was configured are still accepted
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return &tok, nil
}

type persistingSource struct {
	auth *Authenticator
	base oauth2.TokenSource

	mu   sync.Mutex
	last string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			p.auth.Invalidate(context.Background(), "refresh rejected")
			return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
		}
		return nil, fmt.Errorf("%w: refresh: %v", domain.ErrTransient, err)
	}

	p.mu.Lock()
	changed := tok.AccessToken != p.last
	p.last = tok.AccessToken
	p.mu.Unlock()
	if changed {
		if err := p.auth.saveRefreshed(tok); err != nil {
			p.auth.log.Error().Err(err).Msg("persist refreshed token")
		}
	}
	return tok, nil
}

// saveRefreshed persists without bumping the generation; the cached
// service stays valid.
func (a *Authenticator) saveRefreshed(tok *oauth2.Token) error {
	encoded, err := a.encode(tok)
	if err != nil {
		return err
	}
	if err := a.settings.SetSetting(context.Background(), repository.SettingDriveToken, encoded); err != nil {
		return err
	}
	a.mu.Lock()
	a.token = tok
	a.mu.Unlock()
	return nil
}
