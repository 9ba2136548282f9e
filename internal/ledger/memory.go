package ledger

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"credverify/internal/sentinel"
)

// MemoryLedger simulates the registry in process. Token ids are decimal
// strings counting up from 1, matching uint256 ids on chain.
type MemoryLedger struct {
	mu      sync.RWMutex
	records map[string]*Record
	next    uint64
	issuer  string
	now     func() time.Time
}

func NewMemoryLedger(issuer string) *MemoryLedger {
	return &MemoryLedger{
		records: make(map[string]*Record),
		next:    1,
		issuer:  issuer,
		now:     time.Now,
	}
}

func (l *MemoryLedger) Mint(_ context.Context, req MintRequest) (string, error) {
	if req.Owner.IsNil() {
		return "", fmt.Errorf("%w: owner is required", sentinel.ErrInvalidInput)
	}
	if req.MetadataHash == "" {
		return "", fmt.Errorf("%w: metadata hash is required", sentinel.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	tokenID := strconv.FormatUint(l.next, 10)
	l.next++
	l.records[tokenID] = &Record{
		TokenID:      tokenID,
		Owner:        req.Owner,
		MetadataHash: req.MetadataHash,
		Score:        req.Score,
		SkillTags:    slices.Clone(req.SkillTags),
		Issuer:       l.issuer,
		MintedAt:     l.now().UTC(),
		Active:       true,
	}
	return tokenID, nil
}

func (l *MemoryLedger) Get(_ context.Context, tokenID string) (*Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.records[tokenID]
	if !ok {
		return nil, fmt.Errorf("token %s: %w", tokenID, sentinel.ErrNotFound)
	}
	cp := *rec
	cp.SkillTags = slices.Clone(rec.SkillTags)
	return &cp, nil
}

func (l *MemoryLedger) Revoke(_ context.Context, tokenID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[tokenID]
	if !ok {
		return fmt.Errorf("token %s: %w", tokenID, sentinel.ErrNotFound)
	}
	rec.Active = false
	return nil
}

var _ Ledger = (*MemoryLedger)(nil)
