package stageregistry

import (
	"testing"

	"canopy-backend/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry(DefaultStageDefinitions)
	require.Nil(t, err)

	t.Run(`ResolvePhaseGroup totality check`, func(t *testing.T) {
		for _, def := range DefaultStageDefinitions {
			group, err := reg.ResolvePhaseGroup(def.Key)
			require.Nil(t, err)
			require.Equal(t, def.Group, group)
		}
	})

	t.Run(`ResolvePhaseGroup unknown key check`, func(t *testing.T) {
		_, err := reg.ResolvePhaseGroup("background_check")
		require.NotNil(t, err)
		require.True(t, errors.Is(err, ErrUnknownStage))
	})

	t.Run(`Compare reflexivity check`, func(t *testing.T) {
		groups := []models.PhaseGroup{
			models.PhaseSubmitted, models.PhaseScreening, models.PhaseInterviewing,
			models.PhaseOffer, models.PhaseHired, models.PhaseRejected, models.PhaseWithdrawn,
		}
		for _, g := range groups {
			require.Equal(t, OrderEqual, reg.Compare(g, g))
		}
	})

	t.Run(`Compare linear order check`, func(t *testing.T) {
		require.Equal(t, OrderBefore, reg.Compare(models.PhaseSubmitted, models.PhaseScreening))
		require.Equal(t, OrderBefore, reg.Compare(models.PhaseScreening, models.PhaseInterviewing))
		require.Equal(t, OrderBefore, reg.Compare(models.PhaseInterviewing, models.PhaseOffer))
		require.Equal(t, OrderBefore, reg.Compare(models.PhaseOffer, models.PhaseHired))
		require.Equal(t, OrderAfter, reg.Compare(models.PhaseHired, models.PhaseSubmitted))
	})

	t.Run(`Compare terminal side branches check`, func(t *testing.T) {
		require.Equal(t, OrderIncomparable, reg.Compare(models.PhaseRejected, models.PhaseScreening))
		require.Equal(t, OrderIncomparable, reg.Compare(models.PhaseOffer, models.PhaseWithdrawn))
		require.Equal(t, OrderIncomparable, reg.Compare(models.PhaseRejected, models.PhaseWithdrawn))
	})

	t.Run(`AssignablePhaseGroups declaration order check`, func(t *testing.T) {
		groups := reg.AssignablePhaseGroups()
		require.Equal(t, []models.PhaseGroup{
			models.PhaseSubmitted, models.PhaseScreening, models.PhaseInterviewing,
			models.PhaseOffer, models.PhaseHired, models.PhaseRejected, models.PhaseWithdrawn,
		}, groups)
	})

	t.Run(`duplicate key is rejected check`, func(t *testing.T) {
		_, err := NewRegistry([]StageDefinition{
			{Key: "screening", Group: models.PhaseScreening},
			{Key: "screening", Group: models.PhaseScreening},
		})
		require.NotNil(t, err)
	})

	t.Run(`unknown group is rejected check`, func(t *testing.T) {
		_, err := NewRegistry([]StageDefinition{
			{Key: "limbo", Group: models.PhaseGroup("LIMBO")},
		})
		require.NotNil(t, err)
	})

	t.Run(`internal-only stages excluded from assignable check`, func(t *testing.T) {
		reg, err := NewRegistry([]StageDefinition{
			{Key: "submitted", Group: models.PhaseSubmitted, Assignable: true},
			{Key: "auto_screen", Group: models.PhaseScreening, Assignable: false},
		})
		require.Nil(t, err)
		require.Equal(t, []models.PhaseGroup{models.PhaseSubmitted}, reg.AssignablePhaseGroups())
	})
}
