package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	authEndpoint  = "https://accounts.google.com/o/oauth2/v2/auth"
	tokenEndpoint = "https://oauth2.googleapis.com/token"

	driveScope = "https://www.googleapis.com/auth/drive"

	stateTTL = 10 * time.Minute
)

var ErrNoToken = errors.New("no access token in request")

// OAuth drives the Google authorization-code flow for the service. The
// signed state parameter ties a callback to a login started here.
type OAuth struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	StateSecret  string
	TokenFile    string

	// TokenURL overrides the Google token endpoint in tests.
	TokenURL string

	HTTPClient *http.Client
}

// Token is the relevant subset of Google's token response.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// TokenFromRequest extracts the caller's Google access token, checking
// the X-Google-Access-Token header first and falling back to a bearer
// Authorization header.
func TokenFromRequest(r *http.Request) (string, error) {
	if tok := r.Header.Get("X-Google-Access-Token"); tok != "" {
		return tok, nil
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		if tok := strings.TrimPrefix(auth, "Bearer "); tok != "" {
			return tok, nil
		}
	}
	return "", ErrNoToken
}

// LoginURL builds the Google consent URL with a freshly signed state.
func (o *OAuth) LoginURL() (string, error) {
	state, err := o.signState()
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("client_id", o.ClientID)
	q.Set("redirect_uri", o.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", driveScope)
	q.Set("access_type", "offline")
	q.Set("prompt", "consent")
	q.Set("state", state)
	return authEndpoint + "?" + q.Encode(), nil
}

func (o *OAuth) signState() (string, error) {
	claims := jwt.MapClaims{
		"purpose": "oauth_state",
		"exp":     time.Now().Add(stateTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(o.StateSecret))
}

// VerifyState checks that state was signed by LoginURL and has not
// expired.
func (o *OAuth) VerifyState(state string) error {
	token, err := jwt.Parse(state, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(o.StateSecret), nil
	})
	if err != nil || !token.Valid {
		return errors.New("invalid or expired state")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != "oauth_state" {
		return errors.New("invalid state claims")
	}
	return nil
}

// Exchange swaps an authorization code for an access token.
func (o *OAuth) Exchange(ctx context.Context, code string) (*Token, error) {
	endpoint := o.TokenURL
	if endpoint == "" {
		endpoint = tokenEndpoint
	}
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", o.ClientID)
	form.Set("client_secret", o.ClientSecret)
	form.Set("redirect_uri", o.RedirectURI)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := o.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token exchange failed with status %d", resp.StatusCode)
	}
	var tok Token
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, errors.New("token response missing access_token")
	}
	return &tok, nil
}

// SaveToken persists the token to the configured token file, if any.
func (o *OAuth) SaveToken(tok *Token) error {
	if o.TokenFile == "" {
		return nil
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(o.TokenFile, data, 0o600)
}
