package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/user/agentlink-service/internal/domain"
	"github.com/user/agentlink-service/internal/links"
	"github.com/user/agentlink-service/internal/qc"
	"github.com/user/agentlink-service/internal/scraper"
)

type processLinkRequest struct {
	URL string `json:"url"`
}

type processLinkResponse struct {
	Status      string `json:"status"`
	OriginalURL string `json:"original_url"`
	AgentLink   string `json:"agent_link"`
}

func (s *Server) handleProcessLink(w http.ResponseWriter, r *http.Request) {
	var req processLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" {
		s.respondWithError(w, http.StatusBadRequest, "url is required")
		return
	}

	result := links.ProcessAnyLinkContext(r.Context(), s.resolver, req.URL, links.AgentKakoBuy, s.config.AgentAffCode)
	if result.AgentLink == "" && result.OriginalURL == "" {
		s.respondWithError(w, http.StatusBadRequest, "Not a recognizable product URL: "+req.URL)
		return
	}

	s.metrics.IncLinksProcessed(string(links.DetectPlatform(result.OriginalURL)))
	s.respondWithJSON(w, http.StatusOK, processLinkResponse{
		Status:      "success",
		OriginalURL: result.OriginalURL,
		AgentLink:   result.AgentLink,
	})
}

type qcErrorResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleQCGet(w http.ResponseWriter, r *http.Request) {
	s.serveQC(w, r, r.URL.Query().Get("goodsUrl"))
}

func (s *Server) handleQCPost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GoodsURL string `json:"goodsUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondQCError(w, &qc.Error{
			Code:    qc.CodeMissingGoodsURL,
			Message: "Goods URL is required",
			Status:  http.StatusBadRequest,
		})
		return
	}
	s.serveQC(w, r, req.GoodsURL)
}

func (s *Server) serveQC(w http.ResponseWriter, r *http.Request, goodsURL string) {
	start := time.Now()
	result, qcErr := s.qcService.Retrieve(r.Context(), goodsURL)
	s.metrics.QCRetrievalDuration.Observe(time.Since(start).Seconds())

	if qcErr != nil {
		s.metrics.IncQCRequests(qcErr.Code)
		s.respondQCError(w, qcErr)
		return
	}

	s.metrics.IncQCRequests("success")
	s.respondWithJSON(w, http.StatusOK, result)
}

func (s *Server) respondQCError(w http.ResponseWriter, qcErr *qc.Error) {
	s.respondWithJSON(w, qcErr.Status, qcErrorResponse{
		Status:    "error",
		Message:   qcErr.Message,
		ErrorCode: qcErr.Code,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

type scrapeRequest struct {
	URL string `json:"url"`
}

type scrapeResponse struct {
	Success   bool                   `json:"success"`
	Data      *domain.ScrapedProduct `json:"data,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid URL format")
		return
	}

	product, err := s.scraper.Scrape(r.Context(), req.URL)
	if err != nil {
		s.logger.Error("scrape failed", zap.String("url", req.URL), zap.Error(err))
		status := http.StatusBadGateway
		if errors.Is(err, scraper.ErrLoginRequired) {
			status = http.StatusForbidden
		}
		s.respondWithJSON(w, status, scrapeResponse{
			Success:   false,
			Error:     err.Error(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	s.respondWithJSON(w, http.StatusOK, scrapeResponse{
		Success:   true,
		Data:      product,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

type addProductResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ProductID int64  `json:"product_id,omitempty"`
}

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		domain.Product
		OriginalURL string `json:"original_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithJSON(w, http.StatusBadRequest, addProductResponse{Success: false, Error: "Invalid request body"})
		return
	}
	if req.Name == "" || req.Price == 0 || req.Image == "" || req.Category == "" || req.Links["KakoBuy"] == "" {
		s.respondWithJSON(w, http.StatusBadRequest, addProductResponse{Success: false, Error: "Missing required fields"})
		return
	}

	id, err := s.pgStore.SaveProduct(r.Context(), &req.Product)
	if err != nil {
		s.logger.Error("failed to save product", zap.String("name", req.Name), zap.Error(err))
		s.metrics.IncErrorsTotal("db_save_failed")
		s.respondWithJSON(w, http.StatusInternalServerError, addProductResponse{Success: false, Error: "Failed to save product to database"})
		return
	}

	// Notification failure must never fail the product save.
	if !s.notifier.Notify(r.Context(), &req.Product, req.OriginalURL) {
		s.logger.Warn("telegram notification failed", zap.String("name", req.Name))
		s.metrics.IncErrorsTotal("notify_failed")
	}

	s.respondWithJSON(w, http.StatusOK, addProductResponse{
		Success:   true,
		Message:   "Product added successfully",
		ProductID: id,
	})
}

type notifyRequest struct {
	domain.Product
	OriginalURL string `json:"original_url"`
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid request body"})
		return
	}
	if req.Name == "" || req.Price == 0 || req.Links["KakoBuy"] == "" {
		s.respondWithJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Missing required product information"})
		return
	}

	if !s.notifier.Notify(r.Context(), &req.Product, req.OriginalURL) {
		s.respondWithJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to send notification"})
		return
	}
	s.respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Notification sent"})
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string)

	if err := s.pgStore.Ping(ctx); err != nil {
		healthStatus["postgres"] = "unhealthy"
		s.logger.Error("health check failed for postgres", zap.Error(err))
	} else {
		healthStatus["postgres"] = "healthy"
	}

	if err := s.redisStore.Ping(ctx); err != nil {
		healthStatus["redis"] = "unhealthy"
		s.logger.Error("health check failed for redis", zap.Error(err))
	} else {
		healthStatus["redis"] = "healthy"
	}

	if healthStatus["postgres"] != "healthy" || healthStatus["redis"] != "healthy" {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
