package blob_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credverify/internal/blob"
	"credverify/internal/blob/adapters"
)

type latency struct{ n int }

func (l *latency) ObserveBlobPut(time.Duration) { l.n++ }

type failing struct{}

func (failing) Put(context.Context, any) (string, error) {
	return "", errors.New("down")
}

func (failing) Get(context.Context, string, any) error {
	return errors.New("down")
}

func TestCanonical_StableMapOrder(t *testing.T) {
	a, err := blob.Canonical(map[string]int{"b": 2, "a": 1})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2}`, string(a))
	assert.Equal(t, blob.ContentAddress(a), blob.ContentAddress([]byte(`{"a":1,"b":2}`)))
}

func TestInstrumented(t *testing.T) {
	rec := &latency{}
	st := blob.NewInstrumented(adapters.NewMemoryStore(), "memory", nil, rec)

	addr, err := st.Put(context.Background(), map[string]string{"skill": "Rust"})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.n)

	var got map[string]string
	require.NoError(t, st.Get(context.Background(), addr, &got))
	assert.Equal(t, "Rust", got["skill"])

	_, err = blob.NewInstrumented(failing{}, "memory", nil, rec).Put(context.Background(), 1)
	assert.Error(t, err)
	assert.Equal(t, 2, rec.n)
}
