package catalog

import (
	"errors"
	"fmt"
	"testing"

	pgxconn "github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/stockroom/internal/shared"
)

func TestDeleteErrorMapsForeignKeyViolation(t *testing.T) {
	fkErr := &pgxconn.PgError{Code: "23503", Message: "violates foreign key constraint"}

	err := deleteError("item-1", fkErr)
	require.Equal(t, shared.CategoryReferentialIntegrity, shared.CategoryOf(err))

	err = deleteError("item-1", fmt.Errorf("exec delete: %w", fkErr))
	require.Equal(t, shared.CategoryReferentialIntegrity, shared.CategoryOf(err))
}

func TestDeleteErrorPassesThroughOtherFailures(t *testing.T) {
	plain := errors.New("connection reset")
	require.Equal(t, plain, deleteError("item-1", plain))

	dup := &pgxconn.PgError{Code: "23505"}
	require.Equal(t, error(dup), deleteError("item-1", dup))
}
