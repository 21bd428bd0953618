// Package backend содержит клиент REST API столовой.
// Бизнес-логика (цены, платежи, переходы статусов) живет на бэкенде;
// клиент только читает данные для локальных проекций.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/RoGogDBD/canteen/internal/models"
	"github.com/RoGogDBD/canteen/internal/retry"
)

// Client — HTTP-клиент бэкенда с повторами на сетевые сбои.
type Client struct {
	baseURL  string
	client   *http.Client
	validate *validator.Validate
	policy   retry.Policy
}

// ordersPage — страница списка заказов в формате бэкенда.
type ordersPage struct {
	Orders []*models.Order `json:"orders"`
	Page   int             `json:"page"`
	Total  int             `json:"total"`
}

// New создает клиент бэкенда.
func New(baseURL string, timeout time.Duration, validate *validator.Validate, maxRetries int, backoff *retry.Backoff) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		validate: validate,
		policy: retry.Policy{
			MaxRetries:  maxRetries,
			Backoff:     backoff,
			ShouldRetry: isRetriable,
		},
	}
}

// FetchOrders загружает страницу заказов пользователя.
// Заказы, не прошедшие валидацию, отбрасываются с предупреждением,
// остальная страница отдается как есть.
func (c *Client) FetchOrders(ctx context.Context, userID string, page, pageSize int) ([]*models.Order, error) {
	endpoint := fmt.Sprintf("%s/api/v1/users/%s/orders?%s", c.baseURL, url.PathEscape(userID), url.Values{
		"page":      []string{strconv.Itoa(page)},
		"page_size": []string{strconv.Itoa(pageSize)},
	}.Encode())

	var result ordersPage
	err := retry.Do(ctx, c.policy, func() error {
		return c.getJSON(ctx, endpoint, &result)
	}, func(err error, attempt int, wait time.Duration) {
		log.Printf("backend: fetch orders attempt %d failed: %v (retrying in %v)", attempt, err, wait)
	})
	if err != nil {
		return nil, err
	}

	orders := make([]*models.Order, 0, len(result.Orders))
	for _, o := range result.Orders {
		if err := c.validate.Struct(o); err != nil {
			log.Printf("backend: dropping invalid order %q: %v", o.OrderUID, err)
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &transientError{err: fmt.Errorf("do request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= http.StatusInternalServerError:
		return &transientError{err: fmt.Errorf("backend status %d", resp.StatusCode)}
	default:
		return fmt.Errorf("backend status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// transientError помечает ошибки, имеющие смысл для повтора:
// сетевые сбои и 5xx ответы. 4xx повторять бессмысленно.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isRetriable(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
