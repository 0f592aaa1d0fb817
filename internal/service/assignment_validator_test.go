package service

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ethics-case-api/internal/models"
	appErrors "github.com/noah-isme/ethics-case-api/pkg/errors"
)

func TestValidateAssignment(t *testing.T) {
	c := seedCase("c1", models.StatusApprovedProcedure)
	c.SetPhaseAnalyst(models.PhaseProcedure, "analyst-a")

	require.NoError(t, ValidateAssignment(c, models.PhaseProcedure, "analyst-a"))
	require.ErrorIs(t, ValidateAssignment(c, models.PhaseInvestigation, "analyst-a"), appErrors.ErrSodViolation)
	require.NoError(t, ValidateAssignment(c, models.PhaseInvestigation, "analyst-b"))
	require.ErrorIs(t, ValidateAssignment(c, models.PhaseExecution, "analyst-a"), appErrors.ErrSodViolation)
	require.ErrorIs(t, ValidateAssignment(c, models.Phase(0), "analyst-b"), appErrors.ErrValidation)
	require.ErrorIs(t, ValidateAssignment(c, models.PhaseInvestigation, ""), appErrors.ErrValidation)
	require.ErrorIs(t, ValidateAssignment(nil, models.PhaseInvestigation, "analyst-b"), appErrors.ErrValidation)
}

func TestValidateAssignmentMatchesEarlierSlots(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	pool := []string{"", "analyst-a", "analyst-b", "analyst-c"}

	for i := 0; i < 500; i++ {
		c := seedCase("c1", models.StatusRegistered)
		for p := models.PhaseProcedure; p <= models.PhaseExecution; p++ {
			if holder := pool[rng.Intn(len(pool))]; holder != "" {
				c.SetPhaseAnalyst(p, holder)
			}
		}
		phase := models.Phase(rng.Intn(3) + 1)
		candidate := pool[1+rng.Intn(len(pool)-1)]

		held := false
		for earlier := models.PhaseProcedure; earlier < phase; earlier++ {
			if c.PhaseAnalyst(earlier) == candidate {
				held = true
			}
		}

		err := ValidateAssignment(c, phase, candidate)
		if held {
			require.ErrorIs(t, err, appErrors.ErrSodViolation)
		} else {
			require.NoError(t, err)
		}
	}
}
