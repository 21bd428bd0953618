// Package imagecache реализует персистентный кэш изображений по URI.
//
// Запрос сначала проверяется в ограниченном LRU-слое в памяти, затем в
// персистентном key-value хранилище, и только при полном промахе уходит в сеть.
// Компонент пограничный и fail-soft: любая ошибка получения, кодирования или
// записи гасится локально, а вызывающему возвращается исходный URI, чтобы
// отображение могло попытаться загрузить картинку нативным загрузчиком.
package imagecache

import (
	"context"
	"encoding/base64"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/RoGogDBD/canteen/internal/kvstore"
)

// Cache разрешает URI изображений в отображаемые payload'ы.
type Cache struct {
	mem     *MemCache
	store   kvstore.Store
	fetcher Fetcher
	group   singleflight.Group

	hits      metric.Int64Counter
	misses    metric.Int64Counter
	fallbacks metric.Int64Counter
}

// New создает кэш поверх персистентного хранилища и загрузчика.
func New(store kvstore.Store, fetcher Fetcher, memMaxItems int) *Cache {
	meter := otel.Meter("github.com/RoGogDBD/canteen/internal/imagecache")
	hits, _ := meter.Int64Counter("imagecache_hits_total",
		metric.WithDescription("Cache hits by layer"))
	misses, _ := meter.Int64Counter("imagecache_misses_total",
		metric.WithDescription("Full cache misses that went to the network"))
	fallbacks, _ := meter.Int64Counter("imagecache_fallbacks_total",
		metric.WithDescription("Resolves degraded to the raw URI"))

	return &Cache{
		mem:       NewMemCache(memMaxItems),
		store:     store,
		fetcher:   fetcher,
		hits:      hits,
		misses:    misses,
		fallbacks: fallbacks,
	}
}

// Resolve возвращает отображаемый payload для URI: data-URI из кэша либо,
// при любой ошибке, исходный URI. Ошибки наружу не отдаются никогда —
// отображение картинки не должно ронять экран.
//
// Пустой URI — no-op: вызывающему нечего отображать.
func (c *Cache) Resolve(ctx context.Context, uri string) string {
	if uri == "" {
		return ""
	}

	if payload, ok := c.mem.Get(uri); ok {
		c.hits.Add(ctx, 1, metric.WithAttributes(attribute.String("layer", "memory")))
		return payload
	}

	payload, ok, err := c.store.Get(ctx, uri)
	if err != nil {
		log.Printf("image cache: store lookup failed for %q: %v", uri, err)
		c.fallbacks.Add(ctx, 1)
		return uri
	}
	if ok {
		c.mem.Save(uri, payload)
		c.hits.Add(ctx, 1, metric.WithAttributes(attribute.String("layer", "store")))
		return payload
	}

	c.misses.Add(ctx, 1)

	// Одновременные промахи по одному URI схлопываются в один сетевой запрос.
	result, _, _ := c.group.Do(uri, func() (interface{}, error) {
		return c.fill(ctx, uri), nil
	})
	return result.(string)
}

// fill выполняет сетевую загрузку и заполнение кэша. Возвращает payload
// либо исходный URI, если что-то пошло не так. Неуспешный результат
// не кэшируется: следующий Resolve попробует снова.
func (c *Cache) fill(ctx context.Context, uri string) string {
	body, contentType, err := c.fetcher.Fetch(ctx, uri)
	if err != nil {
		log.Printf("image cache: fetch failed for %q: %v", uri, err)
		c.fallbacks.Add(ctx, 1)
		return uri
	}

	payload := EncodeDataURI(contentType, body)

	if err := c.store.Set(ctx, uri, payload); err != nil {
		log.Printf("image cache: store write failed for %q: %v", uri, err)
		c.fallbacks.Add(ctx, 1)
		return uri
	}

	c.mem.Save(uri, payload)
	return payload
}

// EncodeDataURI упаковывает тело изображения в самодостаточный data-URI.
func EncodeDataURI(contentType string, body []byte) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body)
}
