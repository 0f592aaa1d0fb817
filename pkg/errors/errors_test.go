package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	cloned := Clone(ErrSodViolation, "analyst-1 already holds phase 1")
	require.True(t, errors.Is(cloned, ErrSodViolation))
	require.False(t, errors.Is(cloned, ErrInvalidTransition))

	wrapped := fmt.Errorf("assign: %w", cloned)
	require.True(t, errors.Is(wrapped, ErrSodViolation))
}

func TestFromErrorNormalisesUnknown(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	require.Equal(t, ErrInternal.Code, appErr.Code)
	require.Equal(t, http.StatusInternalServerError, appErr.Status)

	require.Nil(t, FromError(nil))
	require.Equal(t, ErrNotAssigned.Code, FromError(ErrNotAssigned).Code)
}

func TestAttachKeepsKind(t *testing.T) {
	cause := errors.New("insert risk entry: connection reset")
	err := Attach(ErrArtifactCreation, cause)
	require.True(t, errors.Is(err, ErrArtifactCreation))
	require.ErrorIs(t, err, cause)
	require.Nil(t, ErrArtifactCreation.Err)
}
