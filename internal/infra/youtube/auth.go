package youtube

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// ErrNotAuthorized is returned when no saved token exists yet.
var ErrNotAuthorized = errors.New("youtube: no saved token, run the authorization flow first")

// AuthConfig locates the OAuth client secret and the saved user token.
type AuthConfig struct {
	ClientSecretFile string
	TokenFile        string
}

var scopes = []string{youtube.YoutubeUploadScope, youtube.YoutubeScope}

func (c AuthConfig) oauthConfig() (*oauth2.Config, error) {
	secret, err := os.ReadFile(c.ClientSecretFile)
	if err != nil {
		return nil, fmt.Errorf("read client secret: %w", err)
	}
	conf, err := google.ConfigFromJSON(secret, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse client secret: %w", err)
	}
	return conf, nil
}

// NewService returns a YouTube service authenticated with the saved token.
// Refreshed tokens are written back to TokenFile.
func NewService(ctx context.Context, cfg AuthConfig) (*youtube.Service, error) {
	conf, err := cfg.oauthConfig()
	if err != nil {
		return nil, err
	}
	tok, err := loadToken(cfg.TokenFile)
	if err != nil {
		return nil, err
	}

	src := &savingTokenSource{
		base: conf.TokenSource(ctx, tok),
		path: cfg.TokenFile,
		last: tok.AccessToken,
	}
	client := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src))

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return svc, nil
}

// Authorize runs the installed-app flow: it prints the consent URL to out,
// reads the authorization code from in and saves the token to TokenFile.
func Authorize(ctx context.Context, cfg AuthConfig, in io.Reader, out io.Writer) error {
	conf, err := cfg.oauthConfig()
	if err != nil {
		return err
	}
	if conf.RedirectURL == "" {
		conf.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	}

	url := conf.AuthCodeURL("newscast", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if _, err := fmt.Fprintf(out, "Open this URL in your browser and paste the authorization code:\n%s\n> ", url); err != nil {
		return err
	}

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New("youtube: empty authorization code")
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	return saveToken(cfg.TokenFile, tok)
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotAuthorized
		}
		return nil, fmt.Errorf("read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return &tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token folder: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// savingTokenSource persists every newly issued access token.
type savingTokenSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := saveToken(s.path, tok); err != nil {
			return nil, err
		}
	}
	return tok, nil
}
