package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credverify/internal/sentinel"
)

type payload struct {
	ResumeID      string `json:"resumeId"`
	WalletAddress string `json:"walletAddress"`
	Score         int    `json:"score"`
}

func TestMemoryStore_ContentAddressed(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a1, err := s.Put(ctx, payload{ResumeID: "r1", WalletAddress: "0xabc", Score: 72})
	require.NoError(t, err)
	a2, err := s.Put(ctx, payload{ResumeID: "r1", WalletAddress: "0xabc", Score: 72})
	require.NoError(t, err)
	a3, err := s.Put(ctx, payload{ResumeID: "r1", WalletAddress: "0xabc", Score: 73})
	require.NoError(t, err)

	assert.Equal(t, a1, a2, "same bytes, same address")
	assert.NotEqual(t, a1, a3)
	assert.Len(t, a1, 64)
	assert.Equal(t, 2, s.Len())

	var got payload
	require.NoError(t, s.Get(ctx, a1, &got))
	assert.Equal(t, 72, got.Score)
}

func TestMemoryStore_UnknownAddress(t *testing.T) {
	var got payload
	err := NewMemoryStore().Get(context.Background(), "deadbeef", &got)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemoryStore_UnencodableValue(t *testing.T) {
	_, err := NewMemoryStore().Put(context.Background(), map[string]any{"ch": make(chan int)})
	assert.ErrorIs(t, err, sentinel.ErrInvalidInput)
}
