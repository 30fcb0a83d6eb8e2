package tests

import (
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/repository"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/strategy"
)

func (s *IntegrationTestSuite) TestGetInventoryUnknownProduct() {
	svc := s.newService(strategy.FIFO)

	_, err := svc.GetInventory(s.Ctx, 9999)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
}

func (s *IntegrationTestSuite) TestGetInventoryReturnsBatchesInStrategyOrder() {
	s.seedBatch(101, 1001, "Laptop", 40, "2027-02-28")
	s.seedBatch(102, 1001, "Laptop", 10, "2026-01-15")
	s.seedBatch(103, 1001, "Laptop", 25, "2026-06-30")

	fifo := s.newService(strategy.FIFO)
	snapshot, err := fifo.GetInventory(s.Ctx, 1001)
	s.Require().NoError(err)

	s.Require().Equal(int64(1001), snapshot.ProductID)
	s.Require().Equal("Laptop", snapshot.ProductName)
	s.Require().Equal(int64(75), snapshot.TotalQuantity())

	s.Require().Len(snapshot.Batches, 3)
	s.Require().Equal(int64(102), snapshot.Batches[0].BatchID)
	s.Require().Equal(int64(103), snapshot.Batches[1].BatchID)
	s.Require().Equal(int64(101), snapshot.Batches[2].BatchID)

	lifo := s.newService(strategy.LIFO)
	snapshot, err = lifo.GetInventory(s.Ctx, 1001)
	s.Require().NoError(err)

	s.Require().Equal(int64(101), snapshot.Batches[0].BatchID)
	s.Require().Equal(int64(103), snapshot.Batches[1].BatchID)
	s.Require().Equal(int64(102), snapshot.Batches[2].BatchID)
}

func (s *IntegrationTestSuite) TestGetInventoryDoesNotMutateStock() {
	s.seedBatch(201, 1002, "Smartphone", 15, "2026-03-10")
	s.seedBatch(202, 1002, "Smartphone", 60, "2026-09-01")

	svc := s.newService(strategy.FIFO)

	for i := 0; i < 3; i++ {
		snapshot, err := svc.GetInventory(s.Ctx, 1002)
		s.Require().NoError(err)
		s.Require().Equal(int64(75), snapshot.TotalQuantity())
	}

	s.Require().Equal(int64(75), s.productTotal(1002))
}

func (s *IntegrationTestSuite) TestGetInventoryIncludesEmptyBatches() {
	s.seedBatch(301, 1003, "Tablet", 0, "2025-12-20")
	s.seedBatch(302, 1003, "Tablet", 20, "2026-04-05")

	svc := s.newService(strategy.FIFO)

	snapshot, err := svc.GetInventory(s.Ctx, 1003)
	s.Require().NoError(err)

	s.Require().Len(snapshot.Batches, 2)
	s.Require().Equal(int64(20), snapshot.TotalQuantity())
}
