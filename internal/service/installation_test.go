package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumCapacities(t *testing.T) {
	svc := NewInstallationService(&fakeInstallationRepo{capacities: map[uint]int{1: 50, 2: 120, 3: 30}})

	t.Run("adds up the selected installations", func(t *testing.T) {
		total, err := svc.SumCapacities(context.Background(), []uint{1, 3})
		require.NoError(t, err)
		assert.Equal(t, 80, total)
	})

	t.Run("empty set sums to zero", func(t *testing.T) {
		total, err := svc.SumCapacities(context.Background(), nil)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("unknown installation short-circuits", func(t *testing.T) {
		_, err := svc.SumCapacities(context.Background(), []uint{1, 99})
		assert.ErrorIs(t, err, ErrInstallationNotFound)
	})
}
