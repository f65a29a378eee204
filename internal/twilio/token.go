package twilio

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL matches the provider SDK default.
const DefaultTokenTTL = time.Hour

// TokenConfig holds the credentials for minting client access tokens.
type TokenConfig struct {
	AccountSid string
	APIKey     string
	APISecret  string
	// AppSid is the TwiML application outgoing client calls are routed to.
	AppSid string
	TTL    time.Duration
}

// VoiceGrant lets a browser client place outgoing calls through a TwiML app.
type VoiceGrant struct {
	Outgoing struct {
		ApplicationSid string `json:"application_sid"`
	} `json:"outgoing"`
}

// Grants is the grants claim of an access token.
type Grants struct {
	Identity string      `json:"identity"`
	Voice    *VoiceGrant `json:"voice,omitempty"`
}

// AccessTokenClaims are the claims of a provider access token.
type AccessTokenClaims struct {
	Grants Grants `json:"grants"`
	jwt.RegisteredClaims
}

// NewAccessToken mints a voice access token for identity.
func NewAccessToken(cfg TokenConfig, identity string, now time.Time) (string, error) {
	if identity == "" {
		return "", fmt.Errorf("identity is required")
	}
	if cfg.AccountSid == "" || cfg.APIKey == "" || cfg.APISecret == "" || cfg.AppSid == "" {
		return "", fmt.Errorf("account sid, api key, api secret and app sid are required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	grant := &VoiceGrant{}
	grant.Outgoing.ApplicationSid = cfg.AppSid
	claims := AccessTokenClaims{
		Grants: Grants{Identity: identity, Voice: grant},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        fmt.Sprintf("%s-%d", cfg.APIKey, now.Unix()),
			Issuer:    cfg.APIKey,
			Subject:   cfg.AccountSid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["cty"] = "twilio-fpa;v=1"
	return token.SignedString([]byte(cfg.APISecret))
}
