// Package backend is the HTTP client for the marketplace auth API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/servicemarket/admin-console/internal/api/metrics"
	"github.com/servicemarket/admin-console/internal/core/domain"
	"github.com/servicemarket/admin-console/internal/core/ports"
)

const (
	defaultRetryWaitMax = 2 * time.Second
	maxBodyBytes        = 1 << 20
)

// Config captures the settings of the auth API client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Retries int
}

// Client implements ports.AuthClient over the REST contract.
type Client struct {
	http    *http.Client
	baseURL string
	log     zerolog.Logger
}

var _ ports.AuthClient = (*Client)(nil)

// NewClient builds a client that retries transport failures only. A response
// with any status code is final.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = defaultRetryWaitMax
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.Logger = nil

	retryClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}
		return false, nil
	}

	return &Client{
		http:    retryClient.StandardClient(),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		log:     log.With().Str("component", "auth_client").Logger(),
	}
}

type loginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DeviceToken string `json:"deviceToken,omitempty"`
}

type loginResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *domain.User `json:"user"`
}

type registerRequest struct {
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Password      string      `json:"password"`
	Role          domain.Role `json:"role"`
	ContactHandle string      `json:"contactHandle,omitempty"`
}

type verifyRequest struct {
	ContactHandle string `json:"contactHandle"`
	Code          string `json:"code"`
}

type verifyResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
}

type contactRequest struct {
	ContactHandle string `json:"contactHandle"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) Login(ctx context.Context, in ports.Credentials) (*ports.LoginResult, error) {
	var out loginResponse
	err := c.post(ctx, "login", loginRequest{Email: in.Email, Password: in.Password, DeviceToken: in.DeviceToken}, &out, domain.KindCredential)
	if err != nil {
		return nil, err
	}
	if out.AccessToken == "" || out.User == nil {
		return nil, malformed("login", errors.New("missing token or user"))
	}
	return &ports.LoginResult{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken, User: *out.User}, nil
}

func (c *Client) Register(ctx context.Context, in ports.Registration) error {
	return c.post(ctx, "register", registerRequest{
		Name:          in.Name,
		Email:         in.Email,
		Password:      in.Password,
		Role:          in.Role,
		ContactHandle: in.ContactHandle,
	}, nil, domain.KindCredential)
}

func (c *Client) VerifyOtp(ctx context.Context, contactHandle, code string) (*ports.VerifyResult, error) {
	var out verifyResponse
	if err := c.post(ctx, "verify-otp", verifyRequest{ContactHandle: contactHandle, Code: code}, &out, domain.KindOtp); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, malformed("verify-otp", errors.New("missing user"))
	}
	return &ports.VerifyResult{User: *out.User, AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}, nil
}

func (c *Client) ResendOtp(ctx context.Context, contactHandle string) error {
	return c.post(ctx, "resend-otp", contactRequest{ContactHandle: contactHandle}, nil, domain.KindOtp)
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	var out refreshResponse
	if err := c.post(ctx, "refresh-token", refreshRequest{RefreshToken: refreshToken}, &out, domain.KindRefresh); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, malformed("refresh-token", errors.New("missing token"))
	}
	return &ports.TokenPair{AccessToken: out.Token, RefreshToken: out.RefreshToken}, nil
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, "request-password-reset", emailRequest{Email: email}, nil, domain.KindCredential)
}

func (c *Client) ResetPassword(ctx context.Context, in ports.PasswordReset) error {
	return c.post(ctx, "reset-password", resetRequest{Email: in.Email, Code: in.Code, Password: in.Password}, nil, domain.KindCredential)
}

// post sends body to /auth/<endpoint> and decodes a 2xx response into out
// when out is non-nil. Non-2xx responses become AuthErrors of kind.
func (c *Client) post(ctx context.Context, endpoint string, body, out any, kind domain.ErrorKind) error {
	start := time.Now()
	defer func() {
		metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/"+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", endpoint, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "network").Inc()
		c.log.Warn().Err(err).Str("endpoint", endpoint).Str("request_id", requestID).Msg("auth backend unreachable")
		return domain.NewAuthError(domain.KindNetwork, "", 0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "network").Inc()
		return domain.NewAuthError(domain.KindNetwork, "", resp.StatusCode, fmt.Errorf("read %s response: %w", endpoint, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "rejected").Inc()
		c.log.Debug().Int("status", resp.StatusCode).Str("endpoint", endpoint).Str("request_id", requestID).Msg("auth backend rejected request")
		return domain.NewAuthError(kind, serverMessage(raw), resp.StatusCode, nil)
	}

	metrics.BackendRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return malformed(endpoint, err)
	}
	return nil
}

// serverMessage extracts {message} or {error} from an error body.
func serverMessage(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

func malformed(endpoint string, err error) error {
	return domain.NewAuthError(domain.KindNetwork, "", 0, fmt.Errorf("decode %s response: %w", endpoint, err))
}
