package qc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/agentlink-service/internal/domain"
	"github.com/user/agentlink-service/internal/links"
)

// Result is the success payload of a QC retrieval, bit-exact with the
// wire contract.
type Result struct {
	Status        string             `json:"status"`
	Data          []domain.QCImage   `json:"data"`
	Galleries     []domain.QCGallery `json:"galleries"`
	NormalizedURL string             `json:"normalizedUrl"`
	Timestamp     string             `json:"timestamp"`
}

// providerResponse is the provider's flat response shape. Data stays raw
// until its structure has been checked.
type providerResponse struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// ResultCache stores finished QC results keyed by normalized URL. A nil
// cache disables caching.
type ResultCache interface {
	GetQCResult(ctx context.Context, normalizedURL string) ([]byte, bool)
	SetQCResult(ctx context.Context, normalizedURL string, payload []byte)
}

// Service drives one QC retrieval end to end: validate, normalize,
// revalidate, call with retry, parse, cluster.
type Service struct {
	normalizer *links.Normalizer
	client     *Client
	cache      ResultCache
	logger     *zap.Logger
}

func NewService(normalizer *links.Normalizer, client *Client, cache ResultCache, logger *zap.Logger) *Service {
	return &Service{
		normalizer: normalizer,
		client:     client,
		cache:      cache,
		logger:     logger,
	}
}

// Retrieve fetches and clusters QC images for a product URL. All failures
// come back as a taxonomy-coded *Error.
func (s *Service) Retrieve(ctx context.Context, goodsURL string) (*Result, *Error) {
	if goodsURL == "" {
		return nil, errMissingGoodsURL()
	}
	if !isHTTPURL(goodsURL) {
		return nil, errInvalidGoodsURL()
	}

	normalized := s.normalizer.Normalize(ctx, goodsURL)

	// Catches normalization fallback exhaustion: a passthrough URL on an
	// unsupported host must not reach the provider.
	obj, err := url.Parse(normalized)
	if err != nil || !links.IsMarketplaceHost(obj.Hostname()) {
		return nil, errInvalidGoodsURL()
	}

	if s.cache != nil {
		if payload, ok := s.cache.GetQCResult(ctx, normalized); ok {
			var cached Result
			if err := json.Unmarshal(payload, &cached); err == nil {
				s.logger.Debug("qc result served from cache", zap.String("url", normalized))
				return &cached, nil
			}
		}
	}

	res, qcErr := s.client.FetchImages(ctx, normalized)
	if qcErr != nil {
		return nil, qcErr
	}

	result, qcErr := s.parse(res, normalized)
	if qcErr != nil {
		return nil, qcErr
	}

	if s.cache != nil {
		if payload, err := json.Marshal(result); err == nil {
			s.cache.SetQCResult(ctx, normalized, payload)
		}
	}
	return result, nil
}

func (s *Service) parse(res *providerResult, normalizedURL string) (*Result, *Error) {
	body := bytes.TrimSpace(res.Body)
	if len(body) == 0 {
		return nil, errNoImagesFound()
	}

	var data providerResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errNoImagesFound()
	}

	if data.Status == "error" && data.Message != "" &&
		(strings.Contains(data.Message, "Invalid token") || strings.Contains(data.Message, "token")) {
		return nil, errInvalidToken(data.Message)
	}
	if data.Status == "error" {
		return nil, errAPIError(data.Message, 400)
	}
	if data.Status != "success" {
		return nil, errUnexpectedStatus()
	}

	// Retrying cannot fix a contract violation, so a malformed data
	// field is terminal.
	trimmed := bytes.TrimSpace(data.Data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errInvalidDataStructure()
	}
	var images []domain.QCImage
	if err := json.Unmarshal(trimmed, &images); err != nil {
		return nil, errInvalidDataStructure()
	}

	return &Result{
		Status:        "success",
		Data:          images,
		Galleries:     BuildGalleries(images),
		NormalizedURL: normalizedURL,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func isHTTPURL(raw string) bool {
	obj, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return obj.Scheme == "http" || obj.Scheme == "https"
}
