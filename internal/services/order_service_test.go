package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

func TestOrderAdminList(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewOrderService(db)
	sara := seedUser(t, db, "Sara Ahmadi", "09120000000", models.RoleUser)
	reza := seedUser(t, db, "Reza Karimi", "09121111111", models.RoleUser)
	category := seedCategory(t, db, "Laptops")
	product := seedProduct(t, db, "ThinkPad X1", 1000, category.ID)
	saraAddress := seedAddress(t, db, sara.ID)
	rezaAddress := seedAddress(t, db, reza.ID)

	seedOrder(t, db, sara.ID, saraAddress.ID, models.OrderPending, orderLine{product, 1})
	seedOrder(t, db, sara.ID, saraAddress.ID, models.OrderDelivered, orderLine{product, 2})
	seedOrder(t, db, reza.ID, rezaAddress.ID, models.OrderCanceled, orderLine{product, 1})

	list, err := svc.AdminList(ctx, "", utils.NewPagination("", "", false))
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.TotalOrders)
	assert.Equal(t, int64(1), list.CountsByStatus[models.OrderPending])
	assert.Equal(t, int64(0), list.CountsByStatus[models.OrderProcessing])
	assert.Equal(t, int64(0), list.CountsByStatus[models.OrderShipped])
	assert.Equal(t, int64(1), list.CountsByStatus[models.OrderDelivered])
	assert.Equal(t, int64(1), list.CountsByStatus[models.OrderCanceled])
	require.Len(t, list.Orders, 3)

	list, err = svc.AdminList(ctx, "sara", utils.NewPagination("", "", false))
	require.NoError(t, err)
	require.Len(t, list.Orders, 2)
	for _, order := range list.Orders {
		require.NotNil(t, order.User)
		assert.Equal(t, "Sara Ahmadi", order.User.FullName)
		require.NotNil(t, order.Address)
		require.Len(t, order.OrderItems, 1)
		require.NotNil(t, order.OrderItems[0].Product)
		assert.Equal(t, "ThinkPad X1", order.OrderItems[0].Product.Name)
	}
	assert.Equal(t, int64(3), list.TotalOrders)
}

func TestOrderListKeepsDeletedAddress(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := seedUser(t, db, "Sara Ahmadi", "09120000000", models.RoleUser)
	address := seedAddress(t, db, user.ID)
	seedOrder(t, db, user.ID, address.ID, models.OrderDelivered)

	require.NoError(t, NewAddressService(db).Remove(ctx, user.ID, address.ID))

	list, err := NewOrderService(db).AdminList(ctx, "", utils.NewPagination("", "", false))
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	require.NotNil(t, list.Orders[0].Address)
	assert.Equal(t, address.ID, list.Orders[0].Address.ID)
}

func TestOrderChangeStatus(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewOrderService(db)
	user := seedUser(t, db, "Sara Ahmadi", "09120000000", models.RoleUser)
	address := seedAddress(t, db, user.ID)
	order := seedOrder(t, db, user.ID, address.ID, models.OrderPending)

	_, err := svc.ChangeStatus(ctx, order.ID, models.OrderStatus("LOST"))
	requireKind(t, err, apperr.KindBadRequest)

	_, err = svc.ChangeStatus(ctx, uuid.New(), models.OrderShipped)
	requireKind(t, err, apperr.KindNotFound)

	updated, err := svc.ChangeStatus(ctx, order.ID, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)
}
