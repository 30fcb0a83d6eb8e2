package tests

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/client"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/domain"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/service"
)

// inventoryStub fakes the inventory service HTTP surface: a snapshot for
// reads and a canned verdict for reserve calls.
type inventoryStub struct {
	snapshot     map[string]any
	snapshotCode int

	reserveBody map[string]any
	reserveCode int

	reserveCalls atomic.Int64
}

func (st *inventoryStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodPost && r.URL.Path == "/inventory/update" {
		st.reserveCalls.Add(1)
		w.WriteHeader(st.reserveCode)
		_ = json.NewEncoder(w).Encode(st.reserveBody)
		return
	}

	w.WriteHeader(st.snapshotCode)
	_ = json.NewEncoder(w).Encode(st.snapshot)
}

func monitorSnapshot() map[string]any {
	return map[string]any{
		"product_id":   2002,
		"product_name": "Monitor",
		"batches": []map[string]any{
			{"batch_id": 9, "quantity": 29, "expiry_date": "2026-05-31"},
			{"batch_id": 10, "quantity": 83, "expiry_date": "2026-11-15"},
		},
	}
}

func (s *IntegrationTestSuite) TestPlaceOrderPersistsReservedBatches() {
	stub := &inventoryStub{
		snapshot:     monitorSnapshot(),
		snapshotCode: http.StatusOK,
		reserveBody: map[string]any{
			"success":          true,
			"message":          "Inventory updated successfully",
			"updated_quantity": 35,
			"reserved_batches": []map[string]any{
				{"batch_id": 9, "quantity": 29},
				{"batch_id": 10, "quantity": 6},
			},
		},
		reserveCode: http.StatusOK,
	}

	svc, _ := s.newOrderService(stub)

	order, err := svc.PlaceOrder(s.Ctx, 2002, 35)
	s.Require().NoError(err)

	s.Require().NotZero(order.ID)
	s.Require().Equal(domain.OrderStatusPlaced, order.Status)
	s.Require().Equal("Monitor", order.ProductName)
	s.Require().Equal([]int64{9, 10}, order.BatchIDs())
	s.Require().Equal(int64(1), stub.reserveCalls.Load())

	stored, err := s.OrderRepo.GetByID(s.Ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(order.ID, stored.ID)
	s.Require().Equal("9,10", stored.ReservedBatchIDs)

	s.Require().Equal(int64(1), s.outboxEventCount("OrderPlaced"))
}

func (s *IntegrationTestSuite) TestPlaceOrderEventReachesKafka() {
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

	order, err := svc.PlaceOrder(s.Ctx, 2002, 3)
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		var published int64
		err := s.DbPool.QueryRow(
			s.Ctx,
			"SELECT COUNT(*) FROM outbox WHERE aggregate_id = $1 AND published_at IS NOT NULL",
			strconv.FormatInt(order.ID, 10),
		).Scan(&published)

		return err == nil && published == 1
	}, 15*time.Second, 250*time.Millisecond, "outbox event was never published")
}

func (s *IntegrationTestSuite) TestPlaceOrderRejectsInvalidQuantity() {
	stub := &inventoryStub{snapshot: monitorSnapshot(), snapshotCode: http.StatusOK}
	svc, _ := s.newOrderService(stub)

	_, err := svc.PlaceOrder(s.Ctx, 2002, 0)
	s.Require().ErrorIs(err, service.ErrInvalidRequest)

	s.Require().Equal(int64(0), s.orderCount())
	s.Require().Equal(int64(0), stub.reserveCalls.Load())
}

func (s *IntegrationTestSuite) TestPlaceOrderUnknownProduct() {
	stub := &inventoryStub{snapshotCode: http.StatusNotFound}
	svc, _ := s.newOrderService(stub)

	_, err := svc.PlaceOrder(s.Ctx, 9999, 1)
	s.Require().ErrorIs(err, client.ErrProductNotFound)

	s.Require().Equal(int64(0), s.orderCount())
}

func (s *IntegrationTestSuite) TestPlaceOrderStopsAtAdvisoryCheck() {
	stub := &inventoryStub{
		snapshot: map[string]any{
			"product_id":   2002,
			"product_name": "Monitor",
			"batches": []map[string]any{
				{"batch_id": 9, "quantity": 2, "expiry_date": "2026-05-31"},
			},
		},
		snapshotCode: http.StatusOK,
	}

	svc, _ := s.newOrderService(stub)

	_, err := svc.PlaceOrder(s.Ctx, 2002, 5)
	s.Require().ErrorIs(err, client.ErrInsufficientStock)

	var stockErr *client.InsufficientStockError
	s.Require().ErrorAs(err, &stockErr)
	s.Require().Equal(int64(2), stockErr.Available)
	s.Require().Equal(int64(5), stockErr.Requested)

	// The advisory check failed, so the authoritative call was never made.
	s.Require().Equal(int64(0), stub.reserveCalls.Load())
	s.Require().Equal(int64(0), s.orderCount())
	s.Require().Equal(int64(0), s.outboxEventCount("OrderPlaced"))
}

func (s *IntegrationTestSuite) TestPlaceOrderReserveVerdictWins() {
	// Snapshot says there is plenty, but by the time the reserve call lands
	// the stock is gone. The reserve verdict is the one that counts.
	stub := &inventoryStub{
		snapshot:     monitorSnapshot(),
		snapshotCode: http.StatusOK,
		reserveBody: map[string]any{
			"success":   false,
			"message":   "Insufficient inventory. Available: 1, Requested: 35",
			"available": 1,
			"requested": 35,
		},
		reserveCode: http.StatusBadRequest,
	}

	svc, _ := s.newOrderService(stub)

	_, err := svc.PlaceOrder(s.Ctx, 2002, 35)
	s.Require().ErrorIs(err, client.ErrInsufficientStock)

	var stockErr *client.InsufficientStockError
	s.Require().ErrorAs(err, &stockErr)
	s.Require().Equal(int64(1), stockErr.Available)

	s.Require().Equal(int64(0), s.orderCount())
}

func (s *IntegrationTestSuite) TestPlaceOrderInventoryDown() {
	stub := &inventoryStub{snapshot: monitorSnapshot(), snapshotCode: http.StatusOK}
	svc, server := s.newOrderService(stub)
	server.Close()

	_, err := svc.PlaceOrder(s.Ctx, 2002, 1)
	s.Require().ErrorIs(err, client.ErrInventoryUnavailable)

	s.Require().Equal(int64(0), s.orderCount())
}
