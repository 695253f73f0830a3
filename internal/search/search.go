package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/retail_shop/internal/models"
)

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

type Client struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(cfg Config) (*Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: create client: %w", err)
	}

	index := cfg.Index
	if index == "" {
		index = "products"
	}
	return &Client{es: client, index: index}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Info(c.es.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("info", res.StatusCode, res.Body)
	}
	return nil
}

func (c *Client) Index(ctx context.Context, p models.Product) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("elasticsearch: marshal product: %w", err)
	}

	res, err := c.es.Index(
		c.index,
		bytes.NewReader(body),
		c.es.Index.WithDocumentID(p.ID.String()),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res.StatusCode, res.Body)
	}
	return nil
}

// Delete ignores documents that were never indexed.
func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := c.es.Delete(c.index, id.String(), c.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch: delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete", res.StatusCode, res.Body)
	}
	return nil
}

func (c *Client) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"product_name^2", "category", "brand", "tags"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: encode query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res.StatusCode, res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: decode response: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}

func responseError(op string, status int, body io.Reader) error {
	msg, _ := io.ReadAll(io.LimitReader(body, 1<<10))
	return fmt.Errorf("elasticsearch: %s failed with status %d: %s", op, status, bytes.TrimSpace(msg))
}
