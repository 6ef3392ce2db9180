package salesforce

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/johnquangdev/opportunity-notes/pkg/config"
)

const (
	tokenPath      = "/services/oauth2/token"
	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionTTL   = 3 * time.Minute
)

// Session is an authenticated Salesforce API session
type Session struct {
	AccessToken string
	InstanceURL string
}

// Login authenticates with the JWT bearer flow when a private key is
// configured, otherwise with the username-password flow.
func Login(ctx context.Context, cfg *config.SalesforceConfig, httpClient *http.Client) (*Session, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if strings.TrimSpace(cfg.PrivateKeyPath) != "" {
		pem, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read salesforce private key: %w", err)
		}
		key, err := jwt.ParseRSAPrivateKeyFromPEM(pem)
		if err != nil {
			return nil, fmt.Errorf("parse salesforce private key: %w", err)
		}
		return LoginJWT(ctx, cfg, key, httpClient)
	}
	return LoginPassword(ctx, cfg, httpClient)
}

// LoginPassword runs the OAuth2 resource-owner password grant. Salesforce
// expects the security token appended to the password.
func LoginPassword(ctx context.Context, cfg *config.SalesforceConfig, httpClient *http.Client) (*Session, error) {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  loginBase(cfg.LoginURL) + tokenPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	tok, err := oauthCfg.PasswordCredentialsToken(ctx, cfg.Username, cfg.Password+cfg.SecurityToken)
	if err != nil {
		return nil, fmt.Errorf("salesforce password login failed: %w", err)
	}

	instance, _ := tok.Extra("instance_url").(string)
	if instance == "" {
		return nil, fmt.Errorf("salesforce token response has no instance_url")
	}
	return &Session{AccessToken: tok.AccessToken, InstanceURL: strings.TrimRight(instance, "/")}, nil
}

// LoginJWT runs the OAuth2 JWT bearer grant with an RS256 assertion
func LoginJWT(ctx context.Context, cfg *config.SalesforceConfig, key *rsa.PrivateKey, httpClient *http.Client) (*Session, error) {
	base := loginBase(cfg.LoginURL)
	claims := jwt.RegisteredClaims{
		Issuer:    cfg.ClientID,
		Subject:   cfg.Username,
		Audience:  jwt.ClaimStrings{base},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(assertionTTL)),
	}
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return nil, fmt.Errorf("sign salesforce assertion: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("salesforce jwt login failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		InstanceURL string `json:"instance_url"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode salesforce token response: %w", err)
	}
	if payload.AccessToken == "" || payload.InstanceURL == "" {
		return nil, fmt.Errorf("salesforce token response missing access_token or instance_url")
	}
	return &Session{AccessToken: payload.AccessToken, InstanceURL: strings.TrimRight(payload.InstanceURL, "/")}, nil
}

func loginBase(loginURL string) string {
	base := strings.TrimRight(strings.TrimSpace(loginURL), "/")
	if base == "" {
		return "https://login.salesforce.com"
	}
	return base
}
