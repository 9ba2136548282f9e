// Package ledger reads (and, in development, simulates) the external
// non-transferable credential token registry.
package ledger

import (
	"context"
	"time"

	id "credverify/pkg/domain"
)

// Record is a token as the ledger reports it.
type Record struct {
	TokenID      string       `json:"tokenId"`
	Owner        id.SubjectID `json:"owner"`
	MetadataHash string       `json:"metadataHash"`
	Score        int          `json:"verificationScore"`
	SkillTags    []string     `json:"skillTags"`
	Issuer       string       `json:"issuer"`
	MintedAt     time.Time    `json:"timestamp"`
	Active       bool         `json:"isActive"`
}

// MintRequest describes a token to mint. Tokens cannot be transferred once minted.
type MintRequest struct {
	Owner        id.SubjectID
	MetadataHash string
	Score        int
	SkillTags    []string
}

// Reader looks up a token. Unknown tokens wrap sentinel.ErrNotFound;
// transport failures wrap sentinel.ErrUnavailable.
type Reader interface {
	Get(ctx context.Context, tokenID string) (*Record, error)
}

// Ledger is the full token registry surface.
type Ledger interface {
	Reader
	Mint(ctx context.Context, req MintRequest) (string, error)
	Revoke(ctx context.Context, tokenID string) error
}
