package error_notificator

import (
	"context"

	"go.uber.org/zap"
)

// Service never fails the caller: delivery problems are only logged.
type Service struct {
	infra Notificator
	log   *zap.Logger
}

func NewService(infra Notificator, log *zap.Logger) *Service {
	if infra == nil {
		infra = Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{infra: infra, log: log.Named("notify")}
}

func (s *Service) Notify(ctx context.Context, err error, details string) error {
	if sendErr := s.infra.Notify(ctx, err, details); sendErr != nil {
		s.log.Warn("admin notification not delivered", zap.Error(sendErr), zap.NamedError("original", err))
	}
	return nil
}
