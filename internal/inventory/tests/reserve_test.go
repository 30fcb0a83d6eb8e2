package tests

import (
	"sync"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/repository"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/service"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/strategy"
)

func (s *IntegrationTestSuite) TestReserveFIFOTakesEarliestExpiryFirst() {
	s.seedBatch(9, 2002, "Monitor", 29, "2026-05-31")
	s.seedBatch(10, 2002, "Monitor", 83, "2026-11-15")

	svc := s.newService(strategy.FIFO)

	allocations, err := svc.Reserve(s.Ctx, 2002, 3)
	s.Require().NoError(err)

	s.Require().Equal([]strategy.Allocation{
		{BatchID: 9, Quantity: 3},
	}, allocations)

	s.Require().Equal(int64(26), s.batchQuantity(9))
	s.Require().Equal(int64(83), s.batchQuantity(10))

	s.Require().Equal(int64(1), s.outboxEventCount("StockReserved"))
}

func (s *IntegrationTestSuite) TestReserveLIFOTakesLatestExpiryFirst() {
	s.seedBatch(9, 2002, "Monitor", 29, "2026-05-31")
	s.seedBatch(10, 2002, "Monitor", 83, "2026-11-15")

	svc := s.newService(strategy.LIFO)

	allocations, err := svc.Reserve(s.Ctx, 2002, 50)
	s.Require().NoError(err)

	s.Require().Equal([]strategy.Allocation{
		{BatchID: 10, Quantity: 50},
	}, allocations)

	s.Require().Equal(int64(29), s.batchQuantity(9))
	s.Require().Equal(int64(33), s.batchQuantity(10))
}

func (s *IntegrationTestSuite) TestReserveSpansBatches() {
	s.seedBatch(9, 2002, "Monitor", 29, "2026-05-31")
	s.seedBatch(10, 2002, "Monitor", 83, "2026-11-15")

	svc := s.newService(strategy.FIFO)

	allocations, err := svc.Reserve(s.Ctx, 2002, 35)
	s.Require().NoError(err)

	s.Require().Equal([]strategy.Allocation{
		{BatchID: 9, Quantity: 29},
		{BatchID: 10, Quantity: 6},
	}, allocations)

	s.Require().Equal(int64(0), s.batchQuantity(9))
	s.Require().Equal(int64(77), s.batchQuantity(10))
}

func (s *IntegrationTestSuite) TestReserveInsufficientStockLeavesInventoryUntouched() {
	s.seedBatch(9, 2002, "Monitor", 29, "2026-05-31")
	s.seedBatch(10, 2002, "Monitor", 83, "2026-11-15")

	svc := s.newService(strategy.FIFO)

	_, err := svc.Reserve(s.Ctx, 2002, 200)
	s.Require().ErrorIs(err, repository.ErrInsufficientStock)

	var stockErr *repository.InsufficientStockError
	s.Require().ErrorAs(err, &stockErr)
	s.Require().Equal(int64(112), stockErr.Available)
	s.Require().Equal(int64(200), stockErr.Requested)

	s.Require().Equal(int64(29), s.batchQuantity(9))
	s.Require().Equal(int64(83), s.batchQuantity(10))

	s.Require().Equal(int64(0), s.outboxEventCount("StockReserved"))
}

func (s *IntegrationTestSuite) TestReserveUnknownProductReportsZeroAvailable() {
	svc := s.newService(strategy.FIFO)

	_, err := svc.Reserve(s.Ctx, 4242, 1)
	s.Require().ErrorIs(err, repository.ErrInsufficientStock)

	var stockErr *repository.InsufficientStockError
	s.Require().ErrorAs(err, &stockErr)
	s.Require().Equal(int64(0), stockErr.Available)
}

func (s *IntegrationTestSuite) TestReserveRejectsNonPositiveQuantity() {
	s.seedBatch(9, 2002, "Monitor", 29, "2026-05-31")

	svc := s.newService(strategy.FIFO)

	for _, quantity := range []int64{0, -5} {
		_, err := svc.Reserve(s.Ctx, 2002, quantity)
		s.Require().ErrorIs(err, service.ErrInvalidQuantity)
	}

	s.Require().Equal(int64(29), s.batchQuantity(9))
	s.Require().Equal(int64(0), s.outboxEventCount("StockReserved"))
}

func (s *IntegrationTestSuite) TestReserveSkipsDrainedBatches() {
	s.seedBatch(401, 1003, "Tablet", 0, "2025-12-20")
	s.seedBatch(402, 1003, "Tablet", 20, "2026-04-05")

	svc := s.newService(strategy.FIFO)

	allocations, err := svc.Reserve(s.Ctx, 1003, 5)
	s.Require().NoError(err)

	s.Require().Equal([]strategy.Allocation{
		{BatchID: 402, Quantity: 5},
	}, allocations)
}

// Concurrent reservations must never oversell: row locks serialize the
// planning, so 4 workers taking 25 each drain exactly 100 units.
func (s *IntegrationTestSuite) TestReserveConcurrentRequestsDoNotOversell() {
	s.seedBatch(501, 3003, "Keyboard", 40, "2026-02-01")
	s.seedBatch(502, 3003, "Keyboard", 35, "2026-07-01")
	s.seedBatch(503, 3003, "Keyboard", 25, "2026-12-01")

	svc := s.newService(strategy.FIFO)

	const workers = 4
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = svc.Reserve(s.Ctx, 3003, 25)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		s.Require().NoError(err)
	}

	s.Require().Equal(int64(0), s.productTotal(3003))

	_, err := svc.Reserve(s.Ctx, 3003, 1)
	s.Require().ErrorIs(err, repository.ErrInsufficientStock)
}
