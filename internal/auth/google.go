// Package auth implements sign-in through Google and issues session cookies.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	sharedauth "aari-docs/internal/shared/auth"
	"aari-docs/internal/shared/server/middleware"
	"aari-docs/internal/shared/server/respond"
	"aari-docs/internal/shared/telemetry"
	"aari-docs/internal/users"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// UserUpserter records the signed-in user.
type UserUpserter interface {
	UpsertFromAuth(ctx context.Context, identity users.Identity) (users.User, error)
}

// TokenSigner issues session tokens.
type TokenSigner interface {
	Sign(claims sharedauth.Claims) (string, error)
	TTL() time.Duration
}

// GoogleConfig holds the OAuth client settings.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// UIRedirect is where the browser lands after sign-in and sign-out.
	UIRedirect   string
	SecureCookie bool
}

// GoogleService handles Google OAuth flows.
type GoogleService struct {
	oauthConfig *oauth2.Config
	uiRedirect  string
	secure      bool
	stateTTL    time.Duration
	states      StateStore
	signer      TokenSigner
	users       UserUpserter
	userInfoURL string
}

// NewGoogleService builds a GoogleService. A nil state store falls back to memory.
func NewGoogleService(cfg GoogleConfig, signer TokenSigner, upserter UserUpserter, states StateStore) *GoogleService {
	if states == nil {
		states = NewMemoryStateStore()
	}
	uiRedirect := cfg.UIRedirect
	if uiRedirect == "" {
		uiRedirect = "/"
	}
	return &GoogleService{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		uiRedirect:  uiRedirect,
		secure:      cfg.SecureCookie,
		stateTTL:    5 * time.Minute,
		states:      states,
		signer:      signer,
		users:       upserter,
		userInfoURL: googleUserInfoURL,
	}
}

// RegisterRoutes attaches Google auth routes.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
	rg.POST("/auth/logout", s.logout)
}

func (s *GoogleService) configured() bool {
	return s.oauthConfig.ClientID != "" && s.oauthConfig.ClientSecret != "" && s.oauthConfig.RedirectURL != ""
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.configured() {
		respond.Error(c, http.StatusInternalServerError, "Google auth not configured", nil)
		return
	}

	state := uuid.NewString()
	if err := s.states.Put(c.Request.Context(), state, s.stateTTL); err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to start sign-in", err)
		return
	}

	c.Redirect(http.StatusFound, s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

func (s *GoogleService) callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "missing state or code", nil)
		return
	}

	ctx := c.Request.Context()
	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to verify sign-in", err)
		return
	}
	if !ok {
		respond.Error(c, http.StatusBadRequest, "invalid or expired state", nil)
		return
	}

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "failed to exchange code", err)
		return
	}

	info, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "failed to fetch user profile", err)
		return
	}
	if strings.TrimSpace(info.Email) == "" {
		respond.Error(c, http.StatusBadGateway, "invalid user profile", nil)
		return
	}

	user, err := s.users.UpsertFromAuth(ctx, users.Identity{
		Email:     info.Email,
		Name:      info.Name,
		AvatarURL: info.Picture,
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to record user", err)
		return
	}

	session, err := s.signer.Sign(sharedauth.Claims{
		Email:            user.Email,
		Name:             user.Name,
		Picture:          info.Picture,
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID},
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "failed to issue token", err)
		return
	}

	telemetry.Info("auth.sign_in", map[string]any{"user_id": user.ID})
	s.setSessionCookie(c, session, int(s.signer.TTL().Seconds()))
	c.Redirect(http.StatusFound, s.uiRedirect)
}

func (s *GoogleService) logout(c *gin.Context) {
	s.setSessionCookie(c, "", -1)
	respond.Success(c)
}

func (s *GoogleService) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", s.secure, true)
}

type googleUserInfo struct {
	Sub     string `json:"sub"`
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *GoogleService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	client := s.oauthConfig.Client(ctx, token)
	resp, err := client.Get(s.userInfoURL)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}

	// Some responses use "id" instead of "sub".
	if info.Sub == "" {
		info.Sub = info.ID
	}
	return info, nil
}
