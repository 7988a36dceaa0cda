//go:build integration

package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"procurement/pkg/platform/sentinel"
	"procurement/pkg/testutil/containers"
)

func TestRedisClock(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	clock := NewRedisClock(rc.Client, "")

	_, err := clock.Height(ctx)
	require.ErrorIs(t, err, sentinel.ErrUnavailable)

	require.NoError(t, clock.Publish(ctx, 17))
	h, err := clock.Height(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(17), h)

	require.NoError(t, clock.Publish(ctx, 9))
	h, err = clock.Height(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(17), h, "height must not regress")
}
