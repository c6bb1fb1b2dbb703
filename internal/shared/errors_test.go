package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategoryOf(t *testing.T) {
	err := E(CategoryInsufficientStock, "Insufficient stock. Available: %d, Requested: %d", 5, 7)
	require.EqualError(t, err, "Insufficient stock. Available: 5, Requested: 7")
	require.Equal(t, CategoryInsufficientStock, CategoryOf(err))

	wrapped := fmt.Errorf("posting movement: %w", err)
	require.Equal(t, CategoryInsufficientStock, CategoryOf(wrapped))

	require.Equal(t, CategoryStore, CategoryOf(errors.New("connection reset")))
}
