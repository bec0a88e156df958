//go:build integration

package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hotel-listing-api/internal/domain"
	"github.com/phrazzld/hotel-listing-api/internal/platform/sqldb"
	"github.com/phrazzld/hotel-listing-api/internal/query"
	"github.com/phrazzld/hotel-listing-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_Catalog(t *testing.T) {
	for _, driver := range []string{sqldb.Postgres.Name, sqldb.MySQL.Name} {
		t.Run(driver, func(t *testing.T) {
			db, dialect := testdb.Open(t, driver)
			ctx := context.Background()
			uow := NewUnitOfWork(db, dialect, nil)

			jm := &domain.Country{Name: "Jamaica", ShortName: "JM"}
			bs := &domain.Country{Name: "Bahamas", ShortName: "BS"}
			require.NoError(t, uow.Countries.InsertRange([]*domain.Country{jm, bs}))
			require.NoError(t, uow.Commit(ctx))
			require.NotZero(t, jm.ID)
			require.NotZero(t, bs.ID)

			require.NoError(t, uow.Hotels.InsertRange([]*domain.Hotel{
				{Name: "Sandals", Address: "Negril", Rating: 4.5, CountryID: jm.ID},
				{Name: "Couples", Address: "Ocho Rios", Rating: 3.8, CountryID: jm.ID},
				{Name: "Atlantis", Address: "Nassau", Rating: 4.9, CountryID: bs.ID},
			}))
			require.NoError(t, uow.Commit(ctx))

			hotels, err := uow.Hotels.List(ctx, query.Options{
				Where:    query.And(query.Eq("countryId", jm.ID), query.Ge("rating", 4.0)),
				OrderBy:  query.Desc("rating"),
				Includes: []string{RelationCountry},
			})
			require.NoError(t, err)
			require.Len(t, hotels, 1)
			assert.Equal(t, "Sandals", hotels[0].Name)
			require.NotNil(t, hotels[0].Country)
			assert.Equal(t, "Jamaica", hotels[0].Country.Name)

			page, err := uow.Hotels.PagedList(ctx, domain.PageRequest{PageNumber: 2, PageSize: 2}, query.Options{OrderBy: query.Asc("name")})
			require.NoError(t, err)
			assert.Equal(t, int64(3), page.TotalCount)
			require.Len(t, page.Items, 1)
			assert.Equal(t, "Sandals", page.Items[0].Name)

			require.NoError(t, uow.Hotels.Insert(&domain.Hotel{Name: "Orphan", Rating: 3, CountryID: 99999}))
			require.NoError(t, uow.Countries.Delete(bs.ID))
			err = uow.Commit(ctx)
			assert.ErrorIs(t, err, domain.ErrConflict)

			got, err := uow.Countries.GetByID(ctx, bs.ID)
			require.NoError(t, err, "failed commit rolled back the delete")
			assert.Equal(t, "Bahamas", got.Name)

			require.NoError(t, uow.Countries.Delete(jm.ID))
			require.NoError(t, uow.Commit(ctx))
			remaining, err := uow.Hotels.List(ctx, query.Options{})
			require.NoError(t, err)
			assert.Len(t, remaining, 1, "hotels follow their country")
		})
	}
}

func TestIntegration_RefreshTokenRedemptionIsSingleUse(t *testing.T) {
	for _, driver := range []string{sqldb.Postgres.Name, sqldb.MySQL.Name} {
		t.Run(driver, func(t *testing.T) {
			db, dialect := testdb.Open(t, driver)
			ctx := context.Background()

			creds := sqldb.NewCredentialStore(db, dialect, nil)
			owner := &domain.Credential{
				PrincipalID:        uuid.New(),
				UserName:           "ada@example.com",
				NormalizedUserName: domain.NormalizeUserName("ada@example.com"),
				Email:              "ada@example.com",
				PasswordHash:       "$2a$04$placeholderplaceholderplaceholderplaceholderplacehold",
				Roles:              []string{domain.RoleUser},
			}
			require.NoError(t, creds.Create(ctx, owner))

			tokens := sqldb.NewRefreshTokenStore(db, dialect, nil)
			now := time.Now().UTC().Truncate(time.Second)
			require.NoError(t, tokens.Save(ctx, &domain.RefreshToken{
				Value:     "integration-refresh-value",
				OwnerID:   owner.PrincipalID,
				IssuedAt:  now,
				ExpiresAt: now.Add(time.Hour),
			}))

			var wins atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ok, err := tokens.MarkUsed(ctx, "integration-refresh-value")
					if err == nil && ok {
						wins.Add(1)
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, int32(1), wins.Load())
		})
	}
}
