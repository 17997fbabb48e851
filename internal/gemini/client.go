// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the Google Gemini API client for chat completions.
//
// CLOUD: Secure logging, retry logic, and validation
package gemini

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/gemrun-tui/internal/auth"
	"github.com/jeranaias/gemrun-tui/internal/model"
)

// Configuration constants for the Gemini API.
const (
	// DefaultBaseURL is the base URL for the Gemini API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion attacks.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// userAgent identifies gemrun in outgoing requests.
	userAgent = "gemrun/0.3.0"
)

// Explain-mode framing instructions.
//
// Both modes frame the prompt; simple mode is a different instruction, not
// the absence of one. The prefix is prepended to the newest user turn as a
// plain string so the transcript itself stays unframed.
const (
	// SimpleFraming prefixes prompts when simple mode is on.
	SimpleFraming = "Explain simply, as if to a beginner: "

	// TechnicalFraming prefixes prompts when simple mode is off.
	TechnicalFraming = "Explain in technical depth: "
)

// Wire role strings for Content turns. The Gemini API calls the assistant
// side "model" rather than "assistant".
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// finishReasonSafety marks a candidate whose reply was cut by safety filters.
const finishReasonSafety = "SAFETY"

var (
	// sharedTransport pools connections for all Gemini requests.
	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	// SECURITY: TLS verification required for production
	sharedTransport = &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			CipherSuites:       auth.ApprovedCipherSuites,
			InsecureSkipVerify: false, // SECURITY: TLS verification required for production
		},
	}

	// sharedHTTPClient is the default HTTP client for all Gemini requests.
	sharedHTTPClient = &http.Client{
		Transport: sharedTransport,
		Timeout:   DefaultTimeout,
	}
)

// Error variables for common Gemini API errors.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("gemini API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired API key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrQuotaExceeded indicates the project's request quota is spent.
	// Unlike ErrRateLimited this is not retryable; the quota resets on its
	// own schedule, not within a backoff window.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrBlocked indicates safety filtering blocked the prompt or the reply.
	ErrBlocked = errors.New("blocked by safety filter")

	// ErrEmptyResponse indicates a well-formed response with no reply text.
	ErrEmptyResponse = errors.New("empty response")
)

// APIError represents an error returned by the Gemini API.
type APIError struct {
	StatusCode int    // HTTP status code
	Status     string // API status string, e.g. "RESOURCE_EXHAUSTED"
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini error [%s] (HTTP %d): %s", e.Status, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini error (HTTP %d): %s", e.StatusCode, e.Message)
}

// Part is one piece of a content turn. Text is the only part kind this
// client sends or reads; other Gemini part kinds decode to empty text and
// are ignored.
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content represents a single conversation turn in Gemini wire format.
type Content struct {
	Role  string `json:"role,omitempty"` // "user" or "model"
	Parts []Part `json:"parts"`
}

// NewUserContent creates a user turn holding one text part.
func NewUserContent(text string) Content {
	return Content{Role: RoleUser, Parts: []Part{{Text: text}}}
}

// NewModelContent creates a model turn holding one text part.
func NewModelContent(text string) Content {
	return Content{Role: RoleModel, Parts: []Part{{Text: text}}}
}

// GenerationConfig tunes decoding for a request. Zero values are omitted so
// the API's own defaults apply.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// GenerateRequest represents a request to the generateContent endpoint.
type GenerateRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Candidate is one generated reply.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
	Index        int     `json:"index,omitempty"`
}

// PromptFeedback reports safety screening applied to the prompt itself.
type PromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// UsageMetadata reports token accounting for a request.
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// GenerateResponse represents a response from the generateContent endpoint.
type GenerateResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *UsageMetadata  `json:"usageMetadata,omitempty"`
	ModelVersion   string          `json:"modelVersion,omitempty"`
}

// Text returns the concatenated text parts of the first candidate, or the
// empty string if there are no candidates.
func (r *GenerateResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// apiErrorResponse is the error envelope returned by the Gemini API.
type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Client is a client for communicating with the Gemini API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	model      string
	maxRetries int
	timeout    time.Duration

	temperature     float64
	maxOutputTokens int
}

// NewClient creates a new Gemini client with the given API key.
//
// The API key should be in the format "AIza..." as issued by Google AI
// Studio. If the API key is empty, the client will still be created but
// Chat requests will fail with ErrNotConfigured.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		httpClient: sharedHTTPClient,
		model:      model.DefaultModel,
		maxRetries: DefaultMaxRetries,
		timeout:    DefaultTimeout,
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// WithModel sets the model, resolving friendly aliases like "flash".
func (c *Client) WithModel(name string) *Client {
	c.SetModel(name)
	return c
}

// WithTimeout sets the request timeout.
// The replacement client keeps the shared pooled transport.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	c.httpClient = &http.Client{
		Transport: sharedTransport,
		Timeout:   timeout,
	}
	return c
}

// WithMaxRetries sets the maximum number of retry attempts.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	c.maxRetries = maxRetries
	return c
}

// WithHTTPClient sets a custom HTTP client, replacing the pooled default.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithTemperature sets the sampling temperature for generation.
func (c *Client) WithTemperature(t float64) *Client {
	c.temperature = t
	return c
}

// WithMaxOutputTokens caps the reply length in tokens.
func (c *Client) WithMaxOutputTokens(n int) *Client {
	c.maxOutputTokens = n
	return c
}

// SetModel sets the model to use for chat requests.
// Friendly aliases like "flash" resolve to full model IDs.
func (c *Client) SetModel(name string) {
	c.model = model.ResolveModelID(name)
}

// GetModel returns the current model.
func (c *Client) GetModel() string {
	return c.model
}

// IsConfigured returns true if the client has an API key configured.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// APIKeyMasked returns a masked version of the API key for display.
// SECURITY: Never exposes API key fragments - use fingerprint instead.
// CLOUD: Secure logging - never log API key fragments.
func (c *Client) APIKeyMasked() string {
	if c.apiKey == "" {
		return "[not set]"
	}
	// SECURITY: Never show any part of the key, use fingerprint instead
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(c.apiKey), c.keyFingerprint())
}

// keyFingerprint returns a secure fingerprint of the API key for logging.
// SECURITY: Uses SHA-256 hash to create a unique identifier without exposing the key.
func (c *Client) keyFingerprint() string {
	if c.apiKey == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.apiKey))
	return hex.EncodeToString(h[:4]) // First 8 hex chars (4 bytes)
}

// KeyFingerprint returns a secure fingerprint of the API key for external use.
func (c *Client) KeyFingerprint() string {
	return c.keyFingerprint()
}

// =============================================================================
// CLOUD: Request/Response Logging (without sensitive data)
// =============================================================================

// logRequest logs an API request without exposing sensitive data.
// CLOUD: Secure logging - does not log headers (may contain auth) or body (may contain user prompts).
func (c *Client) logRequest(req *http.Request) {
	log.Printf("API Request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs an API response with duration.
// CLOUD: Secure logging - only logs status code and duration, no response body.
func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API Response: %d %s (%v)", resp.StatusCode, resp.Status, duration)
}

// =============================================================================
// CLOUD: Model Validation
// =============================================================================

// validateModel guards the request path. Registry models pass as-is, and
// unknown IDs are allowed through so new Gemini releases work without a
// code change, as long as they are shaped like a model ID.
// SECURITY: Model IDs are spliced into the request URL, so reject
// metacharacters that could redirect the request.
func validateModel(id string) error {
	if id == "" {
		return errors.New("model name is empty")
	}
	if _, ok := model.Models[id]; ok {
		return nil
	}
	if strings.ContainsAny(id, " \t\r\n/\\?#%&") {
		return fmt.Errorf("invalid model name: %q", id)
	}
	return nil
}

// =============================================================================
// CLOUD: Chat with Retry Logic and Exponential Backoff
// =============================================================================

// Chat performs a generateContent request with the given conversation turns.
//
// It automatically handles retries with exponential backoff for transient
// errors such as rate limiting and server errors. Safety blocks, auth
// failures, and quota exhaustion are returned immediately.
func (c *Client) Chat(ctx context.Context, contents []Content) (*GenerateResponse, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if err := validateModel(c.model); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)

	reqBody := &GenerateRequest{Contents: contents}
	if c.temperature != 0 || c.maxOutputTokens != 0 {
		reqBody.GenerationConfig = &GenerationConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxOutputTokens,
		}
	}

	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		// Apply backoff delay after first attempt
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		response, err := c.doRequest(ctx, endpoint, reqBody)
		if err != nil {
			if c.isRetryable(err) {
				lastErr = err
				continue
			}
			return nil, err
		}

		return response, nil
	}

	// All retries exhausted
	if lastErr != nil {
		return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return nil, errors.New("max retries exceeded")
}

// setHeaders sets the required headers for Gemini API requests.
// The API key travels in the x-goog-api-key header, not a bearer token.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
}

// readResponse reads the response body with size limits to prevent memory exhaustion.
//
// SECURITY: Response size limit prevents memory exhaustion attacks.
func readResponse(resp *http.Response) ([]byte, error) {
	// SECURITY: Limit response size to prevent memory exhaustion
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Check if we hit the limit (response was truncated)
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}

	return body, nil
}

// doRequest performs a single HTTP request to the generateContent endpoint.
//
// SECURITY: Clears the API key header after the request to prevent logging.
// PERFORMANCE: Uses shared HTTP client with connection pooling.
func (c *Client) doRequest(ctx context.Context, endpoint string, reqBody *GenerateRequest) (*GenerateResponse, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(req)
	c.logRequest(req)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)

	// SECURITY: Clear API key header immediately after request to prevent logging
	req.Header.Del("x-goog-api-key")

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// SECURITY: Read response with size limit to prevent memory exhaustion
	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	c.logResponse(resp, time.Since(startTime))

	// Handle error responses
	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, body)
	}

	// Parse successful response
	var genResp GenerateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Safety screening can block the prompt outright or cut the reply short.
	// Both arrive as HTTP 200, so they are mapped to errors here.
	if pf := genResp.PromptFeedback; pf != nil && pf.BlockReason != "" {
		return nil, fmt.Errorf("%w: prompt blocked (%s)", ErrBlocked, pf.BlockReason)
	}
	if len(genResp.Candidates) > 0 && genResp.Candidates[0].FinishReason == finishReasonSafety {
		return nil, fmt.Errorf("%w: reply stopped by safety filter", ErrBlocked)
	}

	return &genResp, nil
}

// handleErrorResponse converts HTTP error responses to appropriate Go errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	// Try to parse error response
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		gemErr := &APIError{
			StatusCode: statusCode,
			Status:     apiErr.Error.Status,
			Message:    apiErr.Error.Message,
		}

		// Map to specific error types
		switch statusCode {
		case http.StatusBadRequest:
			// An invalid key surfaces as 400 INVALID_ARGUMENT rather than 401.
			if strings.Contains(strings.ToLower(gemErr.Message), "api key") {
				return fmt.Errorf("%w: %s", ErrAuthFailed, gemErr.Message)
			}
			return gemErr
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrAuthFailed, gemErr.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrModelNotFound, gemErr.Message)
		case http.StatusTooManyRequests:
			// RESOURCE_EXHAUSTED covers both burst throttling and a spent
			// daily quota. Only the former is worth retrying.
			if strings.Contains(strings.ToLower(gemErr.Message), "quota") {
				return fmt.Errorf("%w: %s", ErrQuotaExceeded, gemErr.Message)
			}
			return fmt.Errorf("%w: %s", ErrRateLimited, gemErr.Message)
		default:
			return gemErr
		}
	}

	// Fallback for unparseable error responses
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthFailed
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &APIError{
			StatusCode: statusCode,
			Message:    string(body),
		}
	}
}

// isRetryable determines if an error should trigger a retry.
func (c *Client) isRetryable(err error) bool {
	// Rate limiting is retryable; a spent quota is not
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	// We don't retry context cancellation
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Check for APIError with 5xx status
	var gemErr *APIError
	if errors.As(err, &gemErr) {
		return gemErr.StatusCode >= 500 && gemErr.StatusCode < 600
	}

	return false
}

// calculateBackoff returns the delay to wait before the next retry.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	// Exponential backoff: 500ms, 1000ms, 2000ms, etc.
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// =============================================================================
// CLOUD: Generation Helpers and Explain-Mode Framing
// =============================================================================

// FramePrompt prepends the explain-mode instruction for the given mode.
func FramePrompt(prompt string, simple bool) string {
	if simple {
		return SimpleFraming + prompt
	}
	return TechnicalFraming + prompt
}

// Generate performs a one-shot generation with a single user prompt and
// returns the reply text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.Chat(ctx, []Content{NewUserContent(prompt)})
	if err != nil {
		return "", err
	}
	return textFromResponse(resp)
}

// GenerateWithMode performs a one-shot generation with the explain-mode
// framing applied to the prompt.
func (c *Client) GenerateWithMode(ctx context.Context, prompt string, simple bool) (string, error) {
	return c.Generate(ctx, FramePrompt(prompt, simple))
}

// ChatWithModel performs a chat request with a specific model, overriding the default.
// This method is thread-safe and does not modify the original client's model field.
func (c *Client) ChatWithModel(ctx context.Context, name string, contents []Content) (*GenerateResponse, error) {
	// Copy the client so concurrent callers never observe a foreign model
	clientCopy := *c
	clientCopy.SetModel(name)
	return clientCopy.Chat(ctx, contents)
}

// textFromResponse extracts the reply text or maps its absence to an error.
func textFromResponse(resp *GenerateResponse) (string, error) {
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// CountTokens gives a rough token estimate for prompt budgeting.
// Gemini bills roughly 4 characters per token; good enough for the status
// bar and context warnings without a tokenizer dependency.
func CountTokens(text string) int {
	return (len(text) + 3) / 4
}

// ValidateAPIKey checks if the API key format appears valid.
// Note: This doesn't verify the key with Google, just checks the format.
// SECURITY: Enhanced validation with length and entropy checks.
func ValidateAPIKey(apiKey string) bool {
	apiKey = strings.TrimSpace(apiKey)

	// Google AI Studio keys start with "AIza"
	if !strings.HasPrefix(apiKey, "AIza") {
		return false
	}

	// Minimum length check ("AIza" prefix + at least 30 chars)
	if len(apiKey) < 34 {
		return false
	}

	// Basic entropy check: count unique characters to detect obvious
	// placeholder keys like "AIzaaaaaaaaa..."
	uniqueChars := make(map[rune]bool)
	for _, char := range apiKey[4:] { // Skip "AIza" prefix
		uniqueChars[char] = true
	}

	// Require at least 10 unique characters for reasonable entropy
	return len(uniqueChars) >= 10
}
