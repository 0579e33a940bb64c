package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/d60-Lab/ibp/config"
	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/internal/repository"
)

const (
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
	stateTTL           = 10 * time.Minute
	// DefaultLanding is where a login without a usable destination ends up.
	DefaultLanding = "/inmates"
)

var (
	ErrInvalidState = errors.New("invalid oauth state")
	ErrNoEmail      = errors.New("identity provider returned no email")
)

// stateClaims signed into the oauth state parameter.
type stateClaims struct {
	Next  string `json:"next,omitempty"`
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// AuthService Google 登录与授权
type AuthService interface {
	// AuthCodeURL returns the provider consent URL carrying next and the
	// browser session's nonce in a signed state.
	AuthCodeURL(next, nonce string) (string, error)
	// Login checks the state against nonce, exchanges the code, stores the
	// user and returns it with a safe destination.
	Login(ctx context.Context, code, state, nonce string) (*model.User, string, error)
	// User loads a stored user by email.
	User(ctx context.Context, email string) (*model.User, error)
}

type authService struct {
	oauth       *oauth2.Config
	userInfoURL string
	secret      []byte
	users       repository.UserRepository
	admins      map[string]bool
	domains     map[string]bool
	now         func() time.Time
}

func NewAuthService(cfg *config.Config, users repository.UserRepository) AuthService {
	s := &authService{
		oauth: &oauth2.Config{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			RedirectURL:  cfg.OAuth.RedirectURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: cfg.OAuth.UserInfoURL,
		secret:      []byte(cfg.Server.SecretKey),
		users:       users,
		admins:      lowerSet(cfg.Auth.Admins),
		domains:     lowerSet(cfg.Auth.AllowedDomains),
		now:         time.Now,
	}
	if s.userInfoURL == "" {
		s.userInfoURL = defaultUserInfoURL
	}
	if cfg.OAuth.AuthURL != "" {
		s.oauth.Endpoint.AuthURL = cfg.OAuth.AuthURL
	}
	if cfg.OAuth.TokenURL != "" {
		s.oauth.Endpoint.TokenURL = cfg.OAuth.TokenURL
	}
	return s
}

func (s *authService) AuthCodeURL(next, nonce string) (string, error) {
	if nonce == "" {
		return "", fmt.Errorf("%w: empty nonce", ErrInvalidState)
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, stateClaims{
		Next:  SafeNext(next),
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		},
	})
	state, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign state: %w", err)
	}
	return s.oauth.AuthCodeURL(state), nil
}

func (s *authService) parseState(state, nonce string) (string, error) {
	var claims stateClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if nonce == "" || subtle.ConstantTimeCompare([]byte(claims.Nonce), []byte(nonce)) != 1 {
		return "", fmt.Errorf("%w: not issued to this session", ErrInvalidState)
	}
	return SafeNext(claims.Next), nil
}

func (s *authService) Login(ctx context.Context, code, state, nonce string) (*model.User, string, error) {
	next, err := s.parseState(state, nonce)
	if err != nil {
		return nil, "", err
	}
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("exchange code: %w", err)
	}
	info, err := s.userInfo(ctx, tok)
	if err != nil {
		return nil, "", err
	}

	email := strings.ToLower(info.Email)
	authorized := s.allowed(email)
	if existing, err := s.users.Get(ctx, email); err == nil {
		authorized = authorized || existing.Authorized
	} else if notFound(err) != ErrNotFound {
		return nil, "", err
	}

	u := &model.User{Email: email, Name: info.Name, Authorized: authorized}
	if err := s.users.Upsert(ctx, u); err != nil {
		return nil, "", fmt.Errorf("store user: %w", err)
	}
	return u, next, nil
}

func (s *authService) User(ctx context.Context, email string) (*model.User, error) {
	u, err := s.users.Get(ctx, email)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

type userInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *authService) userInfo(ctx context.Context, tok *oauth2.Token) (*userInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: unexpected status %d", resp.StatusCode)
	}
	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, ErrNoEmail
	}
	return &info, nil
}

func (s *authService) allowed(email string) bool {
	if s.admins[email] {
		return true
	}
	at := strings.LastIndex(email, "@")
	return at >= 0 && s.domains[email[at+1:]]
}

// SafeNext keeps only same-site relative paths; anything else becomes DefaultLanding.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return DefaultLanding
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return DefaultLanding
	}
	return next
}

func lowerSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[strings.ToLower(strings.TrimSpace(it))] = true
	}
	return m
}
