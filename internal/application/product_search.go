package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/oksasatya/inventory-sales-api/internal/domain/entity"
)

const esTimeout = 3 * time.Second

func productDoc(p *entity.Product) map[string]any {
	return map[string]any{
		"id":              p.ID.Hex(),
		"name":            p.Name,
		"number_in_stock": p.NumberInStock,
		"price_to_sell":   p.PriceToSell,
		"buying_date":     p.BuyingDate.Format(time.RFC3339Nano),
		"creation_date":   p.CreationDate.Format(time.RFC3339Nano),
	}
}

// indexProduct mirrors the product into the search index. Failures are
// logged only; the store stays authoritative.
func (s *ProductService) indexProduct(ctx context.Context, p *entity.Product) error {
	if s.ES == nil || s.ESIndex == "" || p == nil {
		return nil
	}
	b, _ := json.Marshal(productDoc(p))
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.ID.Hex(), Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, esTimeout)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("product_id", p.ID.Hex()).Warn("es index failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("product_id", p.ID.Hex()).Warn("es index response error")
	}
	return nil
}

func (s *ProductService) deleteProductDoc(ctx context.Context, id bson.ObjectID) error {
	if s.ES == nil || s.ESIndex == "" {
		return nil
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id.Hex()}
	c, cancel := context.WithTimeout(ctx, esTimeout)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("product_id", id.Hex()).Warn("es delete failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		s.Logger.WithField("status", res.Status()).WithField("product_id", id.Hex()).Warn("es delete response error")
	}
	return nil
}

func (s *ProductService) searchProductIDs(ctx context.Context, q string, size int) ([]bson.ObjectID, error) {
	query := map[string]any{
		"query": map[string]any{
			"match": map[string]any{
				"name": map[string]any{"query": q, "fuzziness": "AUTO"},
			},
		},
		"size":    size,
		"_source": false,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, esTimeout)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]bson.ObjectID, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id, err := bson.ObjectIDFromHex(h.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
