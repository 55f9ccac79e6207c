package restaurant

import (
	"context"

	"ordersetu-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	IncrementAcceptedOrders(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (Stats, error)
	TableQR(ctx context.Context, restaurantID string, table int) ([]byte, error)
}

type service struct {
	repo  Repository
	cache StatsCache
	qr    QRGenerator
}

// NewService accepts a nil cache; stats are then computed on every call.
func NewService(repo Repository, cache StatsCache, qr QRGenerator) Service {
	return &service{repo: repo, cache: cache, qr: qr}
}

func (s *service) IncrementAcceptedOrders(ctx context.Context, id uuid.UUID) error {
	return s.repo.IncrementAcceptedOrders(ctx, id)
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Stats"),
	)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			log.Warn("stats cache read failed", zap.Error(err))
		}
		if ok {
			return cached, nil
		}
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		log.Error("failed to load stats", zap.Error(err))
		return Stats{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			log.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *service) TableQR(ctx context.Context, restaurantID string, table int) ([]byte, error) {
	id, err := uuid.Parse(restaurantID)
	if err != nil {
		return nil, ErrInvalidRestaurant
	}

	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if table < 1 || (res.TableCount > 0 && table > res.TableCount) {
		return nil, ErrInvalidTable
	}

	png, err := s.qr.Generate(id.String(), table)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to generate table qr", zap.Error(err))
		return nil, err
	}
	return png, nil
}
