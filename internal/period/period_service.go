package period

import (
	"context"
	"errors"
	"time"

	perioderrors "go-leave/internal/period/errors"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

//go:generate mockgen -source=period_service.go -destination=mock/period_service_mock.go -package=mock
type Service interface {
	// CurrentPeriod returns the period whose interval contains asOf.
	CurrentPeriod(ctx context.Context, asOf time.Time) (Period, error)
}

type service struct {
	repo   Repository
	group  singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("period.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("period.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) CurrentPeriod(ctx context.Context, asOf time.Time) (Period, error) {
	// Periods are static reference data; collapse concurrent lookups for
	// the same day into a single query.
	key := asOf.Format("2006-01-02")

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		p, err := s.repo.FindContaining(ctx, asOf)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Error("no period covers date", zap.String("as_of", key))
				return nil, perioderrors.ErrNoPeriodDefined
			}
			return nil, err
		}
		return *p, nil
	})
	if err != nil {
		return Period{}, err
	}

	return v.(Period), nil
}
