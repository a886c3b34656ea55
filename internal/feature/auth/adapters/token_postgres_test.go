package adapters

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"taskandtime_backend/internal/feature/auth/domain/entity"
	"taskandtime_backend/internal/feature/auth/usecase"
)

// seedToken creates a test token in the database.
func seedToken(t *testing.T, db *gorm.DB, raw string, userID uint, expired, revoked bool) *TokenModel {
	t.Helper()
	m := &TokenModel{Token: raw, UserID: userID, Expired: expired, Revoked: revoked}
	require.NoError(t, db.Create(m).Error, "failed to seed token")
	return m
}

func findModel(t *testing.T, db *gorm.DB, raw string) TokenModel {
	t.Helper()
	var m TokenModel
	require.NoError(t, db.Where("token = ?", raw).First(&m).Error)
	return m
}

func TestTokenPostgres_FindValidByUserID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		userID        uint
		setupFunc     func(t *testing.T, db *gorm.DB)
		expectedCount int
	}{
		{
			name:   "only valid tokens of the user",
			userID: 1,
			setupFunc: func(t *testing.T, db *gorm.DB) {
				seedToken(t, db, "valid-1", 1, false, false)
				seedToken(t, db, "valid-2", 1, false, false)
				seedToken(t, db, "expired", 1, true, false)
				seedToken(t, db, "revoked", 1, false, true)
				seedToken(t, db, "retired", 1, true, true)
				seedToken(t, db, "other-user", 2, false, false)
			},
			expectedCount: 2,
		},
		{
			name:          "no tokens",
			userID:        999,
			expectedCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupTestDB(t)
			repo := NewTokenPostgres(db)
			if tt.setupFunc != nil {
				tt.setupFunc(t, db)
			}

			tokens, err := repo.FindValidByUserID(context.Background(), tt.userID)

			assert.NoError(t, err)
			assert.Len(t, tokens, tt.expectedCount)
			for _, tok := range tokens {
				assert.True(t, tok.IsValid())
			}
		})
	}
}

func TestTokenPostgres_FindByToken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenPostgres(db)
	seedToken(t, db, "abc", 7, false, true)

	got, err := repo.FindByToken(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, uint(7), got.UserID)
	assert.True(t, got.Revoked)
	assert.False(t, got.Expired)

	_, err = repo.FindByToken(context.Background(), "missing")
	assert.ErrorIs(t, err, usecase.ErrTokenNotFound)
}

func TestTokenPostgres_RotateForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("retires previous tokens and stores the new one", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTokenPostgres(db)
		seedUser(t, db, "ann@x.io")
		seedToken(t, db, "old-1", 1, false, false)
		seedToken(t, db, "old-2", 1, false, false)
		seedToken(t, db, "revoked-only", 1, false, true)
		seedToken(t, db, "other", 2, false, false)

		tok := &entity.AccessToken{Token: "new"}
		require.NoError(t, repo.RotateForUser(ctx, 1, tok))
		assert.NotZero(t, tok.ID)
		assert.Equal(t, uint(1), tok.UserID)

		for _, raw := range []string{"old-1", "old-2", "revoked-only"} {
			m := findModel(t, db, raw)
			assert.True(t, m.Expired, raw)
			assert.True(t, m.Revoked, raw)
		}
		assert.False(t, findModel(t, db, "other").Revoked)

		valid, err := repo.FindValidByUserID(ctx, 1)
		require.NoError(t, err)
		require.Len(t, valid, 1)
		assert.Equal(t, "new", valid[0].Token)
	})

	t.Run("two rotations leave only the second valid", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTokenPostgres(db)
		seedUser(t, db, "ann@x.io")

		require.NoError(t, repo.RotateForUser(ctx, 1, &entity.AccessToken{Token: "t1"}))
		require.NoError(t, repo.RotateForUser(ctx, 1, &entity.AccessToken{Token: "t2"}))

		t1 := findModel(t, db, "t1")
		assert.True(t, t1.Expired)
		assert.True(t, t1.Revoked)

		valid, err := repo.FindValidByUserID(ctx, 1)
		require.NoError(t, err)
		require.Len(t, valid, 1)
		assert.Equal(t, "t2", valid[0].Token)
	})

	t.Run("failed insert rolls back the revocation", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTokenPostgres(db)
		seedUser(t, db, "ann@x.io")
		seedToken(t, db, "current", 1, false, false)
		seedToken(t, db, "taken", 2, false, false)

		// duplicate token value violates the unique index
		err := repo.RotateForUser(ctx, 1, &entity.AccessToken{Token: "taken"})
		require.Error(t, err)

		m := findModel(t, db, "current")
		assert.False(t, m.Expired)
		assert.False(t, m.Revoked)
	})

	t.Run("unknown user", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTokenPostgres(db)

		err := repo.RotateForUser(ctx, 42, &entity.AccessToken{Token: "orphan"})
		assert.ErrorIs(t, err, usecase.ErrUserNotFound)

		var count int64
		require.NoError(t, db.Model(&TokenModel{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("concurrent rotations leave exactly one valid token", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTokenPostgres(db)
		owner := seedUser(t, db, "ann@x.io")

		const logins = 8
		var wg sync.WaitGroup
		errs := make(chan error, logins)
		for i := 0; i < logins; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- repo.RotateForUser(ctx, owner.ID, &entity.AccessToken{Token: fmt.Sprintf("t%d", i)})
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		valid, err := repo.FindValidByUserID(ctx, owner.ID)
		require.NoError(t, err)
		assert.Len(t, valid, 1)
	})
}

func TestLockUser_SelectsForUpdate(t *testing.T) {
	t.Parallel()

	// No connection is made: DryRun only renders the statement.
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=127.0.0.1 user=app dbname=app sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	stmt := lockUser(db, 7).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, `FROM "users"`)
	assert.Contains(t, sql, "FOR UPDATE")
	assert.Contains(t, sql, "id = $1")
	assert.Equal(t, uint(7), stmt.Vars[0])
}

func TestTokenPostgres_RevokeAllByUserID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenPostgres(db)
	seedToken(t, db, "a", 1, false, false)
	seedToken(t, db, "b", 1, false, false)
	seedToken(t, db, "c", 1, true, true)
	seedToken(t, db, "d", 2, false, false)

	n, err := repo.RevokeAllByUserID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	valid, _ := repo.FindValidByUserID(context.Background(), 1)
	assert.Empty(t, valid)
	valid, _ = repo.FindValidByUserID(context.Background(), 2)
	assert.Len(t, valid, 1)
}

func TestTokenPostgres_Revoke(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewTokenPostgres(db)
	seedToken(t, db, "a", 1, false, false)

	require.NoError(t, repo.Revoke(ctx, "a"))
	m := findModel(t, db, "a")
	assert.True(t, m.Expired)
	assert.True(t, m.Revoked)

	// terminal states are sticky and revoking again is not an error
	require.NoError(t, repo.Revoke(ctx, "a"))
	assert.True(t, findModel(t, db, "a").Revoked)

	assert.ErrorIs(t, repo.Revoke(ctx, "missing"), usecase.ErrTokenNotFound)
}
