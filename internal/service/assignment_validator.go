package service

import (
	"fmt"

	"github.com/noah-isme/ethics-case-api/internal/models"
	appErrors "github.com/noah-isme/ethics-case-api/pkg/errors"
)

// ValidateAssignment enforces segregation of duties: the candidate may not
// hold any phase of the case lower than phase. It reads only the slot values
// of c and never touches the store.
func ValidateAssignment(c *models.Case, phase models.Phase, candidate string) error {
	if !phase.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("phase must be 1, 2 or 3, got %d", phase))
	}
	if candidate == "" {
		return appErrors.Clone(appErrors.ErrValidation, "analystId is required")
	}
	if c == nil {
		return appErrors.Clone(appErrors.ErrValidation, "case is required")
	}
	for earlier := models.PhaseProcedure; earlier < phase; earlier++ {
		if c.PhaseAnalyst(earlier) == candidate {
			return appErrors.Clone(appErrors.ErrSodViolation,
				fmt.Sprintf("analyst %s already holds phase %d of case %s", candidate, earlier, c.Protocol))
		}
	}
	return nil
}
