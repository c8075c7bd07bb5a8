package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theatreops/internal/domain"
)

func TestMemorySuppressions(t *testing.T) {
	store := NewMemorySuppressions()
	ctx := context.Background()

	_, open, err := store.ActiveBucket(ctx, "procedure|proc-1|procedure_breached")
	require.NoError(t, err)
	assert.False(t, open)

	require.NoError(t, store.Open(ctx, "procedure|proc-1|procedure_breached", "elevated"))

	bucket, open, err := store.ActiveBucket(ctx, "procedure|proc-1|procedure_breached")
	require.NoError(t, err)
	assert.True(t, open)
	assert.Equal(t, "elevated", bucket)

	// Reopening replaces the bucket.
	require.NoError(t, store.Open(ctx, "procedure|proc-1|procedure_breached", "critical"))
	bucket, _, err = store.ActiveBucket(ctx, "procedure|proc-1|procedure_breached")
	require.NoError(t, err)
	assert.Equal(t, "critical", bucket)

	require.NoError(t, store.Clear(ctx, "procedure|proc-1|procedure_breached"))
	_, open, err = store.ActiveBucket(ctx, "procedure|proc-1|procedure_breached")
	require.NoError(t, err)
	assert.False(t, open)
}

func TestMemorySink_ListRecentNewestFirst(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	for _, recipient := range []string{"first", "second", "third"} {
		require.NoError(t, sink.Write(ctx, domain.Notification{Recipient: recipient}))
	}

	recent, err := sink.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].Recipient)
	assert.Equal(t, "second", recent[1].Recipient)
}
