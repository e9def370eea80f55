package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/elastic/go-elasticsearch/v9"
)

func NewClient(cfg config.ESConfig, l *slog.Logger) (*elasticsearch.Client, error) {
	l.Info("es_connect", "url", cfg.URL, "user", cfg.User)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("es: new client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: info: %s: %s", res.Status(), body)
	}

	l.Info("es_connected")
	return client, nil
}

// ItemIndex keeps a search copy of items. The database stays the source of
// truth; the index only hands back ids.
type ItemIndex struct {
	Client *elasticsearch.Client
	Index  string
}

type itemDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

func (x *ItemIndex) IndexItem(ctx context.Context, item *models.Item) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(itemDoc{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Price:       item.Price,
	}); err != nil {
		return fmt.Errorf("es: encode item: %w", err)
	}

	res, err := x.Client.Index(x.Index, &buf,
		x.Client.Index.WithContext(ctx),
		x.Client.Index.WithDocumentID(item.ID),
	)
	if err != nil {
		return fmt.Errorf("es: index item: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es: index item: %s", res.Status())
	}
	return nil
}

func (x *ItemIndex) DeleteItem(ctx context.Context, id string) error {
	res, err := x.Client.Delete(x.Index, id, x.Client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: delete item: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es: delete item: %s", res.Status())
	}
	return nil
}

func (x *ItemIndex) Search(ctx context.Context, query string, from, size int) (int64, []string, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from":    from,
		"size":    size,
		"_source": []string{"id"},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("es: encode query: %w", err)
	}

	res, err := x.Client.Search(
		x.Client.Search.WithContext(ctx),
		x.Client.Search.WithIndex(x.Index),
		x.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("es: search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("es: decode search: %w", err)
	}

	ids := make([]string, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		ids[i] = hit.ID
	}
	return r.Hits.Total.Value, ids, nil
}
