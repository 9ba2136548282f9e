package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"credverify/internal/blob"
	"credverify/internal/sentinel"
)

const (
	defaultPinataAPIURL  = "https://api.pinata.cloud"
	defaultPinataGateway = "https://gateway.pinata.cloud/ipfs"
	maxGatewayBody       = 4 << 20
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// PinataConfig carries Pinata credentials. JWT wins over the key pair when both are set.
type PinataConfig struct {
	APIURL     string
	GatewayURL string
	APIKey     string
	SecretKey  string
	JWT        string
}

// PinataStore pins JSON to IPFS through the Pinata pinning API and reads it
// back through a gateway. Addresses are IPFS CIDs.
type PinataStore struct {
	cfg    PinataConfig
	client HTTPDoer
}

func NewPinataStore(cfg PinataConfig, client HTTPDoer) *PinataStore {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultPinataAPIURL
	}
	if cfg.GatewayURL == "" {
		cfg.GatewayURL = defaultPinataGateway
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.GatewayURL = strings.TrimRight(cfg.GatewayURL, "/")
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &PinataStore{cfg: cfg, client: client}
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func (p *PinataStore) Put(ctx context.Context, v any) (string, error) {
	data, err := blob.Canonical(v)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIURL+"/pinning/pinJSONToIPFS", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: build pin request: %v", sentinel.ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: pin request: %v", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: pin returned %d: %s", sentinel.ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode pin response: %v", sentinel.ErrUnavailable, err)
	}
	if out.IpfsHash == "" {
		return "", fmt.Errorf("%w: pin response missing IpfsHash", sentinel.ErrUnavailable)
	}
	return out.IpfsHash, nil
}

func (p *PinataStore) Get(ctx context.Context, address string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.GatewayURL+"/"+address, nil)
	if err != nil {
		return fmt.Errorf("%w: build gateway request: %v", sentinel.ErrUnavailable, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: gateway request: %v", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("blob %s: %w", address, sentinel.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: gateway returned %d", sentinel.ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxGatewayBody)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode gateway body: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

// URL returns the public gateway URL for address.
func (p *PinataStore) URL(address string) string {
	return p.cfg.GatewayURL + "/" + address
}

func (p *PinataStore) authorize(req *http.Request) {
	if p.cfg.JWT != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.JWT)
		return
	}
	req.Header.Set("pinata_api_key", p.cfg.APIKey)
	req.Header.Set("pinata_secret_api_key", p.cfg.SecretKey)
}
