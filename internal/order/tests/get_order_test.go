package tests

import (
	"net/http"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/repository"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/service"
)

func (s *IntegrationTestSuite) TestGetOrderNotFound() {
	stub := &inventoryStub{snapshotCode: http.StatusNotFound}
	svc, _ := s.newOrderService(stub)

	_, err := svc.GetOrder(s.Ctx, 424242)
	s.Require().ErrorIs(err, repository.ErrOrderNotFound)
}

func (s *IntegrationTestSuite) TestGetOrderRoundTrip() {
	stub := &inventoryStub{
		snapshot:     monitorSnapshot(),
		snapshotCode: http.StatusOK,
		reserveBody: map[string]any{
			"success":          true,
			"message":          "Inventory updated successfully",
			"updated_quantity": 3,
			"reserved_batches": []map[string]any{
				{"batch_id": 9, "quantity": 3},
			},
		},
		reserveCode: http.StatusOK,
	}

	svc, _ := s.newOrderService(stub)

	placed, err := svc.PlaceOrder(s.Ctx, 2002, 3)
	s.Require().NoError(err)

	fetched, err := svc.GetOrder(s.Ctx, placed.ID)
	s.Require().NoError(err)

	s.Require().Equal(placed.ID, fetched.ID)
	s.Require().Equal(placed.ProductID, fetched.ProductID)
	s.Require().Equal(placed.Quantity, fetched.Quantity)
	s.Require().Equal([]int64{9}, fetched.BatchIDs())
}

func (s *IntegrationTestSuite) TestGetOrderServedFromCache() {
	stub := &inventoryStub{
		snapshot:     monitorSnapshot(),
		snapshotCode: http.StatusOK,
		reserveBody: map[string]any{
			"success":          true,
			"message":          "Inventory updated successfully",
			"updated_quantity": 3,
			"reserved_batches": []map[string]any{
				{"batch_id": 9, "quantity": 3},
			},
		},
		reserveCode: http.StatusOK,
	}

	inner, _ := s.newOrderService(stub)
	cached := service.NewCachedOrderService(inner, s.RedisClient)

	placed, err := cached.PlaceOrder(s.Ctx, 2002, 3)
	s.Require().NoError(err)

	// First read populates the cache.
	first, err := cached.GetOrder(s.Ctx, placed.ID)
	s.Require().NoError(err)
	s.Require().Equal(placed.ID, first.ID)

	// Deleting the row proves the second read is served from Redis.
	_, err = s.DbPool.Exec(s.Ctx, "DELETE FROM orders WHERE order_id = $1", placed.ID)
	s.Require().NoError(err)

	second, err := cached.GetOrder(s.Ctx, placed.ID)
	s.Require().NoError(err)
	s.Require().Equal(placed.ID, second.ID)
	s.Require().Equal(placed.ProductID, second.ProductID)

	_, err = inner.GetOrder(s.Ctx, placed.ID)
	s.Require().ErrorIs(err, repository.ErrOrderNotFound)
}
