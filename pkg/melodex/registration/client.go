// Package registration provides the client for the IP-registration
// gateway that fronts the protocol SDK.
package registration

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

	"github.com/melodex/melodex/pkg/melodex"
)

// Client calls the registration gateway's mint-and-register endpoint.
// The call blocks until the gateway reports on-chain confirmation.
type Client struct {
	baseURL  string
	apiKey   string
	contract string
	httpc    *http.Client
}

// Config options for the registration client
type Config struct {
	BaseURL  string // gateway base URL
	APIKey   string // optional gateway API key
	Contract string // SPG NFT contract the collection mints under
}

// New creates a new registration client
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("registration gateway URL is required")
	}
	if config.Contract == "" {
		return nil, errors.New("SPG NFT contract address is required")
	}
	return &Client{
		baseURL:  strings.TrimRight(config.BaseURL, "/"),
		apiKey:   config.APIKey,
		contract: config.Contract,
		// On-chain confirmation can take a while; the generous timeout
		// matches the gateway's own transaction wait.
		httpc: &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

type mintRequest struct {
	SpgNftContract   string             `json:"spgNftContract"`
	LicenseTermsData []licenseTermsData `json:"licenseTermsData"`
	IPMetadata       metadataRefs       `json:"ipMetadata"`
	TxOptions        txOptions          `json:"txOptions"`
}

type licenseTermsData struct {
	Terms melodex.LicenseTerms `json:"terms"`
}

type metadataRefs struct {
	IPMetadataURI   string `json:"ipMetadataURI"`
	IPMetadataHash  string `json:"ipMetadataHash"`
	NFTMetadataURI  string `json:"nftMetadataURI"`
	NFTMetadataHash string `json:"nftMetadataHash"`
}

type txOptions struct {
	WaitForTransaction bool `json:"waitForTransaction"`
}

// MintAndRegister mints an NFT in the configured collection and
// registers it as an IP asset with the supplied license terms.
func (c *Client) MintAndRegister(ctx context.Context, req melodex.RegisterRequest) (*melodex.RegisterResult, error) {
	payload := mintRequest{
		SpgNftContract:   c.contract,
		LicenseTermsData: []licenseTermsData{{Terms: req.LicenseTerms}},
		IPMetadata: metadataRefs{
			IPMetadataURI:   req.IPMetadataURI,
			IPMetadataHash:  req.IPMetadataHash,
			NFTMetadataURI:  req.NFTMetadataURI,
			NFTMetadataHash: req.NFTMetadataHash,
		},
		TxOptions: txOptions{WaitForTransaction: true},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ip-assets/mint-and-register", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("registration request failed: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var result melodex.RegisterResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
