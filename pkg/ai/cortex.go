package ai

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/johnquangdev/opportunity-notes/pkg/config"
)

const (
	cortexDefaultModel  = "llama3.1-70b"
	cortexStatement     = "SELECT SNOWFLAKE.CORTEX.COMPLETE(?, ?) AS RESPONSE"
	cortexTokenLifetime = 59 * time.Minute
	cortexPollInterval  = time.Second

	// statementRunning is the SQL API code for an asynchronous statement still in progress
	statementRunning = "333334"
)

// CortexClient runs Cortex completions through the Snowflake SQL API using key-pair JWT auth
type CortexClient struct {
	cfg        config.SnowflakeConfig
	model      string
	baseURL    string
	privateKey *rsa.PrivateKey
	client     *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// NewCortexClient loads the RSA key named by cfg.PrivateKeyPath and returns a client
func NewCortexClient(cfg *config.SnowflakeConfig, timeout time.Duration) (*CortexClient, error) {
	if cfg == nil || cfg.Account == "" || cfg.User == "" {
		return nil, fmt.Errorf("SNOWFLAKE_ACCOUNT and SNOWFLAKE_USER are required for cortex")
	}
	pemBytes, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read snowflake private key: %w", err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("parse snowflake private key: %w", err)
	}
	return NewCortexClientWithKey(cfg, key, timeout), nil
}

// NewCortexClientWithKey builds a client around an already parsed key
func NewCortexClientWithKey(cfg *config.SnowflakeConfig, key *rsa.PrivateKey, timeout time.Duration) *CortexClient {
	model := cfg.CortexModel
	if model == "" {
		model = cortexDefaultModel
	}
	base := cfg.BaseURL
	if base == "" {
		host := strings.ToLower(strings.ReplaceAll(cfg.Account, "_", "-"))
		base = "https://" + host + ".snowflakecomputing.com"
	}
	return &CortexClient{
		cfg:        *cfg,
		model:      model,
		baseURL:    strings.TrimRight(base, "/"),
		privateKey: key,
		client:     httpClient(timeout),
		now:        time.Now,
	}
}

// Name returns the model name recorded on generated notes
func (c *CortexClient) Name() string {
	return "cortex:" + c.model
}

type sqlBinding struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type statementRequest struct {
	Statement string                `json:"statement"`
	Timeout   int                   `json:"timeout,omitempty"`
	Warehouse string                `json:"warehouse,omitempty"`
	Role      string                `json:"role,omitempty"`
	Database  string                `json:"database,omitempty"`
	Schema    string                `json:"schema,omitempty"`
	Bindings  map[string]sqlBinding `json:"bindings"`
}

type statementResponse struct {
	Code               string      `json:"code"`
	Message            string      `json:"message"`
	StatementHandle    string      `json:"statementHandle"`
	StatementStatusURL string      `json:"statementStatusUrl"`
	Data               [][]*string `json:"data"`
}

// Complete executes SNOWFLAKE.CORTEX.COMPLETE(model, prompt) and returns the single result cell
func (c *CortexClient) Complete(ctx context.Context, prompt string) (string, error) {
	body := statementRequest{
		Statement: cortexStatement,
		Timeout:   int(c.client.Timeout / time.Second),
		Warehouse: c.cfg.Warehouse,
		Role:      c.cfg.Role,
		Database:  c.cfg.Database,
		Schema:    c.cfg.Schema,
		Bindings: map[string]sqlBinding{
			"1": {Type: "TEXT", Value: c.model},
			"2": {Type: "TEXT", Value: prompt},
		},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/api/v2/statements", b)
	if err != nil {
		return "", err
	}

	// 202 means the statement is still running; poll its status URL.
	for resp.Code == statementRunning && resp.StatementStatusURL != "" {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(cortexPollInterval):
		}
		resp, err = c.do(ctx, http.MethodGet, c.baseURL+resp.StatementStatusURL, nil)
		if err != nil {
			return "", err
		}
	}

	if len(resp.Data) == 0 || len(resp.Data[0]) == 0 || resp.Data[0][0] == nil {
		return "", fmt.Errorf("cortex returned empty response")
	}
	return *resp.Data[0][0], nil
}

func (c *CortexClient) do(ctx context.Context, method, url string, payload []byte) (*statementResponse, error) {
	token, err := c.bearerToken()
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Snowflake-Authorization-Token-Type", "KEYPAIR_JWT")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &StatusError{Backend: "snowflake_cortex", StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}

	var sr statementResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode cortex response: %w", err)
	}
	if resp.StatusCode == http.StatusAccepted && sr.Code == "" {
		sr.Code = statementRunning
	}
	return &sr, nil
}

// bearerToken returns a cached key-pair JWT, minting a new one when close to expiry
func (c *CortexClient) bearerToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.token != "" && now.Add(time.Minute).Before(c.expiresAt) {
		return c.token, nil
	}

	token, err := KeyPairJWT(c.cfg.Account, c.cfg.User, c.privateKey, now, cortexTokenLifetime)
	if err != nil {
		return "", err
	}
	c.token = token
	c.expiresAt = now.Add(cortexTokenLifetime)
	return token, nil
}

// KeyPairJWT mints the RS256 token Snowflake expects for key-pair authentication
func KeyPairJWT(account, user string, key *rsa.PrivateKey, now time.Time, lifetime time.Duration) (string, error) {
	fp, err := PublicKeyFingerprint(&key.PublicKey)
	if err != nil {
		return "", err
	}
	// Account locators may carry region and cloud suffixes; only the first label goes in the claims.
	acct := strings.ToUpper(strings.SplitN(account, ".", 2)[0])
	qualified := acct + "." + strings.ToUpper(user)

	claims := jwt.RegisteredClaims{
		Issuer:    qualified + "." + fp,
		Subject:   qualified,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign snowflake jwt: %w", err)
	}
	return signed, nil
}

// PublicKeyFingerprint returns SHA256:<base64 digest of the DER public key>
func PublicKeyFingerprint(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}
	sum := sha256.Sum256(der)
	return "SHA256:" + base64.StdEncoding.EncodeToString(sum[:]), nil
}
