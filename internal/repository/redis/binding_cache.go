package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yourusername/userauth-api/internal/domain/entity"
	apperrors "github.com/yourusername/userauth-api/internal/pkg/errors"
)

const (
	bindingKeyPrefix = "authbinding"

	// tombstone занимает ключ после Invalidate, пока не истечет tombstoneTTL
	tombstone           = "-"
	defaultTombstoneTTL = 30 * time.Second
)

// BindingCache реализует repository.BindingCache поверх Redis.
//
// Invalidate не удаляет ключ, а записывает надгробие, а Set пишет только в свободный
// ключ (SET NX). Читатель, который прочитал строку из БД до удаления и кеширует ее
// после Invalidate, получает отказ, пока живет надгробие. Устаревшая запись возможна,
// только если между чтением из БД и Set прошло больше tombstoneTTL.
type BindingCache struct {
	client       redis.UniversalClient
	ttl          time.Duration
	tombstoneTTL time.Duration
}

// NewBindingCache создает кеш привязок и возвращает ошибку при проблемах
func NewBindingCache(client redis.UniversalClient, ttl time.Duration) (*BindingCache, error) {
	if client == nil {
		return nil, fmt.Errorf("Redis client cannot be nil for BindingCache")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("binding cache ttl must be positive, got %s", ttl)
	}
	tombstoneTTL := defaultTombstoneTTL
	if ttl < tombstoneTTL {
		tombstoneTTL = ttl
	}
	return &BindingCache{client: client, ttl: ttl, tombstoneTTL: tombstoneTTL}, nil
}

func bindingKey(provider, externalAccountID string) string {
	return fmt.Sprintf("%s:%s:%s", bindingKeyPrefix, provider, externalAccountID)
}

// Get возвращает привязку из кеша или apperrors.ErrNotFound
func (c *BindingCache) Get(ctx context.Context, provider, externalAccountID string) (*entity.AuthBinding, error) {
	data, err := c.client.Get(ctx, bindingKey(provider, externalAccountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	binding, ok := decodeBinding(data)
	if !ok {
		if !isTombstone(data) {
			// битая запись: удаляем и считаем промахом
			_ = c.client.Del(ctx, bindingKey(provider, externalAccountID)).Err()
		}
		return nil, apperrors.ErrNotFound
	}
	return binding, nil
}

// Set сохраняет привязку в JSON на время ttl, если ключ свободен.
// Занятый ключ (живая запись или надгробие) не ошибка: запись просто пропускается.
func (c *BindingCache) Set(ctx context.Context, binding *entity.AuthBinding) error {
	data, err := json.Marshal(binding)
	if err != nil {
		return err
	}
	return c.client.SetNX(ctx, bindingKey(binding.Provider, binding.ExternalAccountID), data, c.ttl).Err()
}

// Invalidate заменяет привязку надгробием на время tombstoneTTL
func (c *BindingCache) Invalidate(ctx context.Context, provider, externalAccountID string) error {
	return c.client.Set(ctx, bindingKey(provider, externalAccountID), tombstone, c.tombstoneTTL).Err()
}

func isTombstone(data []byte) bool {
	return string(data) == tombstone
}

func decodeBinding(data []byte) (*entity.AuthBinding, bool) {
	if isTombstone(data) {
		return nil, false
	}
	var binding entity.AuthBinding
	if err := json.Unmarshal(data, &binding); err != nil {
		return nil, false
	}
	return &binding, true
}
