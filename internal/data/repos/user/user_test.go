package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/pdfmentor-backend/internal/data/repos/testutil"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserRepo(db, testutil.Logger(t))

	missing, err := repo.GetByExternalID(dbc, "user_missing")
	require.NoError(t, err)
	require.Nil(t, missing)

	created, err := repo.EnsureByExternalID(dbc, "user_abc", "abc", nil)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	again, err := repo.EnsureByExternalID(dbc, "user_abc", "other-name", nil)
	require.NoError(t, err)
	require.Equal(t, created.ID, again.ID)
	require.Equal(t, "abc", again.Username)

	byID, err := repo.GetByID(dbc, created.ID)
	require.NoError(t, err)
	require.Equal(t, "user_abc", byID.ExternalID)

	_, err = repo.EnsureByExternalID(dbc, "  ", "", nil)
	require.Error(t, err)
}
