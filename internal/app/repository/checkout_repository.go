package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound indica sessão de checkout inexistente ou expirada.
var ErrSessionNotFound = errors.New("sessão de checkout não encontrada")

// CheckoutSessionStore guarda o estado do assistente de checkout.
// A sessão expira sozinha (TTL), então abandono não deixa lixo.
type CheckoutSessionStore interface {
	Save(ctx context.Context, session *model.CheckoutSession) error
	Find(ctx context.Context, userID uint) (*model.CheckoutSession, error)
	Delete(ctx context.Context, userID uint) error
}

type redisCheckoutStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCheckoutStore(client *redis.Client, ttl time.Duration) CheckoutSessionStore {
	return &redisCheckoutStore{client: client, ttl: ttl}
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("checkout:session:%d", userID)
}

func (s *redisCheckoutStore) Save(ctx context.Context, session *model.CheckoutSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout session: %w", err)
	}

	key := sessionKey(session.UserID)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		logger.Error("Failed to save checkout session in Redis", err, map[string]interface{}{
			"user_id": session.UserID,
			"step":    session.Step,
		})
		return err
	}

	logger.Debug("Checkout session saved in Redis", map[string]interface{}{
		"user_id": session.UserID,
		"step":    session.Step,
		"ttl":     s.ttl.String(),
	})
	return nil
}

func (s *redisCheckoutStore) Find(ctx context.Context, userID uint) (*model.CheckoutSession, error) {
	data, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		logger.Error("Failed to load checkout session from Redis", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	var session model.CheckoutSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}
	return &session, nil
}

func (s *redisCheckoutStore) Delete(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		logger.Error("Failed to delete checkout session from Redis", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}
