//go:build integration

package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kookie-shop/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) (*Repository, func()) {
	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	repo, err := NewRepository(&Credentials{
		Driver:   DriverPostgres,
		Host:     host,
		Port:     port.Int(),
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	})
	require.NoError(t, err)

	require.NoError(t, repo.RunMigrations())

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return repo, cleanup
}

func TestPostgres_CartAndCheckout(t *testing.T) {
	repo, cleanup := setupPostgres(t)
	defer cleanup()
	ctx := context.Background()

	user := createUser(t, repo, "pg@example.com")
	guest := domain.Anonymous("pg-guest")

	// concurrent adds on the same line accumulate
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.AddLine(ctx, guest, productChocolateChip, 1))
		}()
	}
	wg.Wait()
	assert.Equal(t, map[int64]int{productChocolateChip: 10}, quantities(t, repo, guest))

	require.NoError(t, repo.AddLine(ctx, user, productChocolateChip, 3))
	require.NoError(t, repo.AddLine(ctx, user, productOatmeal, 1))

	merged, err := repo.MergeGuestCart(ctx, guest.SessionToken, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, merged)
	assert.Equal(t, map[int64]int{productChocolateChip: 13, productOatmeal: 1}, quantities(t, repo, user))
	assert.Empty(t, quantities(t, repo, guest))

	order, created, err := repo.PlaceOrder(ctx, user, testShipping, "pg-key")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "135.00", order.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", order.Totals.Shipping.StringFixed(2))
	assert.Equal(t, "10.80", order.Totals.Tax.StringFixed(2))
	assert.Equal(t, "145.80", order.Totals.Total.StringFixed(2))

	again, created, err := repo.PlaceOrder(ctx, user, testShipping, "pg-key")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, order.ID, again.ID)

	_, _, err = repo.PlaceOrder(ctx, user, testShipping, "")
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	orders, err := repo.ListOrdersByUser(ctx, user.UserID)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	require.NoError(t, repo.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusProcessing))
	assert.ErrorIs(t, repo.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusCancelled), ErrStaleStatus)

	events, err := repo.GetUnprocessedEvents(ctx, 100)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NoError(t, repo.MarkEventAsProcessed(ctx, events[0].ID))
}

func TestPostgres_UnknownProductAndDuplicateEmail(t *testing.T) {
	repo, cleanup := setupPostgres(t)
	defer cleanup()
	ctx := context.Background()

	err := repo.AddLine(ctx, domain.Anonymous("pg-guest"), 999, 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = repo.CreateUser(ctx, "A", "dup@example.com", "h")
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, "B", "dup@example.com", "h")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}
