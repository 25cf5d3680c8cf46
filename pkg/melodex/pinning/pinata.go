// Package pinning provides a Pinata-compatible client for pinning
// files and JSON documents to IPFS.
package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.pinata.cloud"
	defaultGateway = "https://ipfs.io/ipfs"
)

// Client pins content through the Pinata HTTP API. Calls are
// single-shot; no retry wrapper is provided.
type Client struct {
	baseURL string
	gateway string
	jwt     string
	httpc   *http.Client
}

// Config options for the pinning client
type Config struct {
	BaseURL string // Pinata API base URL
	Gateway string // public gateway used to derive retrieval URLs
	JWT     string // Pinata JWT
}

// New creates a new pinning client
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Gateway == "" {
		config.Gateway = defaultGateway
	}
	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		gateway: strings.TrimRight(config.Gateway, "/"),
		jwt:     config.JWT,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// PinFile pins raw bytes and returns the content identifier.
func (c *Client) PinFile(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	return c.pin(ctx, "/pinning/pinFileToIPFS", &body, writer.FormDataContentType())
}

// PinJSON pins the JSON serialization of v and returns the content
// identifier.
func (c *Client) PinJSON(ctx context.Context, v any) (string, error) {
	data, err := json.Marshal(map[string]any{"pinataContent": v})
	if err != nil {
		return "", err
	}
	return c.pin(ctx, "/pinning/pinJSONToIPFS", bytes.NewReader(data), "application/json")
}

// GatewayURL derives the public retrieval URL for a content id.
func (c *Client) GatewayURL(cid string) string {
	return c.gateway + "/" + cid
}

func (c *Client) pin(ctx context.Context, path string, body io.Reader, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.jwt)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("pinata request failed: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var out pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.IpfsHash == "" {
		return "", fmt.Errorf("pinata response has no IpfsHash")
	}
	return out.IpfsHash, nil
}
