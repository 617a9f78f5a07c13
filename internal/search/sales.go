package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/shopspring/decimal"
)

// SaleDoc is the flattened sale stored for report screens.
type SaleDoc struct {
	SaleID        int64           `json:"sale_id"`
	Date          time.Time       `json:"sale_date"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	Customer      string          `json:"customer"`
	Items         string          `json:"items"`
}

type Indexer interface {
	IndexSale(ctx context.Context, doc SaleDoc) error
	DeleteSale(ctx context.Context, saleID int64) error
}

type Nop struct{}

func (Nop) IndexSale(context.Context, SaleDoc) error { return nil }
func (Nop) DeleteSale(context.Context, int64) error { return nil }

type SalesIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewSalesIndex(es *elasticsearch.Client, index string) *SalesIndex {
	return &SalesIndex{es: es, index: index}
}

func (s *SalesIndex) IndexSale(ctx context.Context, doc SaleDoc) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("encode sale %d: %w", doc.SaleID, err)
	}

	res, err := s.es.Index(
		s.index,
		&buf,
		s.es.Index.WithContext(ctx),
		s.es.Index.WithDocumentID(strconv.FormatInt(doc.SaleID, 10)),
	)
	if err != nil {
		return fmt.Errorf("index sale %d: %w", doc.SaleID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index sale", res.Status(), res.Body)
	}
	return nil
}

// DeleteSale treats a document that was never indexed as already deleted.
func (s *SalesIndex) DeleteSale(ctx context.Context, saleID int64) error {
	res, err := s.es.Delete(
		s.index,
		strconv.FormatInt(saleID, 10),
		s.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete sale %d: %w", saleID, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return responseError("delete sale", res.Status(), res.Body)
	}
	return nil
}

func (s *SalesIndex) Search(ctx context.Context, query string, from, size int) (int64, []SaleDoc, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"customer^2", "items", "payment_method", "status"},
				"fuzziness": "AUTO",
			},
		},
		"sort": []interface{}{map[string]string{"sale_date": "desc"}},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search sales: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search sales", res.Status(), res.Body)
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				Source SaleDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search: %w", err)
	}

	docs := make([]SaleDoc, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		docs[i] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}

func responseError(op, status string, body io.Reader) error {
	msg, _ := io.ReadAll(io.LimitReader(body, 1024))
	return fmt.Errorf("%s: %s: %s", op, status, bytes.TrimSpace(msg))
}
