package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/domain"
	"github.com/redis/go-redis/v9"
)

// cachedOrderService keeps order reads out of Postgres. Orders are
// immutable once placed, so cached entries can never go stale.
type cachedOrderService struct {
	next        OrderService
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewCachedOrderService(next OrderService, redisClient *redis.Client) OrderService {
	return &cachedOrderService{
		next:        next,
		redisClient: redisClient,
		cacheTTL:    time.Minute * 10,
	}
}

func (s *cachedOrderService) PlaceOrder(ctx context.Context, productID, quantity int64) (*domain.Order, error) {
	return s.next.PlaceOrder(ctx, productID, quantity)
}

func (s *cachedOrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	key := fmt.Sprintf("order:%d", id)

	val, err := s.redisClient.Get(ctx, key).Result()
	if err == nil {
		var order domain.Order
		if err := json.Unmarshal([]byte(val), &order); err == nil {
			return &order, nil
		}
	}

	order, err := s.next.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(order); err == nil {
		s.redisClient.Set(ctx, key, data, s.cacheTTL)
	}

	return order, nil
}
