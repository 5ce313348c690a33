package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/agentlink-service/internal/domain"
	"github.com/user/agentlink-service/internal/links"
	"github.com/user/agentlink-service/internal/monitoring"
)

// ErrLoginRequired is returned when the agent page bounced to a login or
// verification wall instead of a product page.
var ErrLoginRequired = errors.New("agent page requires login or verification")

// Scraper renders agent product pages in a headless browser and extracts
// display data with selector heuristics. The agent serves a JS-rendered
// storefront, so a plain HTTP fetch never sees the product markup.
type Scraper struct {
	pool    *Pool
	timeout time.Duration
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

func NewScraper(workers int, timeout time.Duration, logger *zap.Logger, metrics *monitoring.Metrics) *Scraper {
	return &Scraper{
		pool:    NewPool(workers),
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

// Scrape navigates to an agent link and extracts title, price and images.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (*domain.ScrapedProduct, error) {
	start := time.Now()
	product, err := s.scrape(ctx, pageURL)
	s.metrics.ScrapeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.IncScrapes("failure")
		return nil, err
	}
	s.metrics.IncScrapes("success")
	return product, nil
}

func (s *Scraper) scrape(ctx context.Context, pageURL string) (*domain.ScrapedProduct, error) {
	allocCtx := s.pool.Get()
	defer s.pool.Put(allocCtx)

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	taskCtx, tcancel := context.WithTimeout(taskCtx, s.timeout)
	defer tcancel()

	// Honor the caller's cancellation as well as our own deadline.
	go func() {
		select {
		case <-ctx.Done():
			tcancel()
		case <-taskCtx.Done():
		}
	}()

	var htmlContent, currentURL string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.Location(&currentURL),
		chromedp.OuterHTML("html", &htmlContent),
	)
	if err != nil {
		return nil, fmt.Errorf("navigate %s: %w", pageURL, err)
	}

	if strings.Contains(currentURL, "login") || strings.Contains(currentURL, "verify") {
		return nil, ErrLoginRequired
	}

	product, err := ExtractProduct(pageURL, htmlContent)
	if err != nil {
		return nil, fmt.Errorf("extract product from %s: %w", pageURL, err)
	}

	product.Platform = string(links.DetectPlatform(pageURL))
	s.logger.Info("scraped agent page",
		zap.String("url", pageURL),
		zap.String("title", product.Title),
		zap.String("price", product.Price))
	return product, nil
}
