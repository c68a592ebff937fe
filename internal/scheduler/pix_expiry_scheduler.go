package scheduler

import (
	"time"

	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/service"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// PixExpiryScheduler varre pagamentos PIX pendentes cujo QR Code venceu e
// marca o pagamento como falho. O polling do cliente também detecta a
// expiração; a varredura cobre pedidos abandonados sem polling ativo.
type PixExpiryScheduler struct {
	cron         *cron.Cron
	orderService service.OrderService
}

func NewPixExpiryScheduler(orderService service.OrderService) *PixExpiryScheduler {
	return &PixExpiryScheduler{
		cron:         cron.New(),
		orderService: orderService,
	}
}

// Start agenda a varredura a cada 5 minutos
func (s *PixExpiryScheduler) Start() error {
	_, err := s.cron.AddFunc("*/5 * * * *", func() {
		logger.Debug("Starting PIX expiry sweep", nil)

		expired, err := s.orderService.ExpireStalePixPayments(time.Now())
		if err != nil {
			logger.Error("PIX expiry sweep failed", err, nil)
			return
		}

		if expired > 0 {
			logger.Info("PIX expiry sweep completed", map[string]interface{}{
				"expired_count": expired,
			})
		}
	})

	if err != nil {
		logger.Error("Failed to schedule PIX expiry sweep", err, nil)
		return err
	}

	s.cron.Start()
	logger.Info("PIX expiry scheduler started (every 5 minutes)", nil)

	return nil
}

func (s *PixExpiryScheduler) Stop() {
	logger.Info("Stopping PIX expiry scheduler...", nil)
	s.cron.Stop()
	logger.Info("PIX expiry scheduler stopped", nil)
}
