package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/agentlink-service/internal/domain"
)

// titleSelectors are tried in order; agent storefronts rename their
// product markup often, so the list runs from specific to generic.
var titleSelectors = []string{
	".product-title",
	".item-title",
	".goods-title",
	"h1.product-title",
	"h1.item-title",
	".product-info .title",
	".product-details .title",
	".product-name",
	"h1",
	".title",
}

var priceSelectors = []string{
	".product-price",
	".price",
	".current-price",
	".product-info .price",
	".product-details .price",
	".price-current",
	".price .current",
	".cost",
	".amount",
}

// priceTextRe recognizes CNY price strings inside arbitrary element text.
var priceTextRe = regexp.MustCompile(`(?:￥|¥|CNY)\s*(\d+(?:\.\d{1,2})?)`)

// ExtractProduct parses rendered agent-page HTML and extracts display
// data.
func ExtractProduct(url, htmlContent string) (*domain.ScrapedProduct, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	product := &domain.ScrapedProduct{
		URL:      url,
		Currency: "CNY",
		Images:   []string{},
	}

	for _, sel := range titleSelectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			product.Title = text
			break
		}
	}
	if product.Title == "" {
		product.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	for _, sel := range priceSelectors {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if text == "" {
			continue
		}
		if m := priceTextRe.FindStringSubmatch(text); m != nil {
			product.Price = m[1]
			break
		}
	}
	if product.Price == "" {
		// Last resort: scan the whole body text for a CNY amount.
		if m := priceTextRe.FindStringSubmatch(doc.Find("body").Text()); m != nil {
			product.Price = m[1]
		}
	}

	doc.Find("img").Each(func(i int, sel *goquery.Selection) {
		src, exists := sel.Attr("src")
		if !exists || src == "" {
			if src, exists = sel.Attr("data-src"); !exists || src == "" {
				return
			}
		}
		cleaned := CleanImageURL(src)
		if cleaned != "" {
			product.Images = append(product.Images, cleaned)
		}
	})

	return product, nil
}

var (
	resizeQualityWebpRe = regexp.MustCompile(`_\d+x\d+q\d+\.jpg_\.webp$`)
	resizeQualityRe     = regexp.MustCompile(`_\d+x\d+q\d+\.jpg$`)
	resizeRe            = regexp.MustCompile(`_\d+x\d+\.jpg$`)
)

// CleanImageURL strips resize/format suffixes marketplaces append to CDN
// image URLs and fixes protocol-relative and root-relative forms, e.g.
// https://cdn/image.jpg_400x400q85.jpg_.webp -> https://cdn/image.jpg
func CleanImageURL(rawURL string) string {
	cleaned := rawURL
	if strings.HasPrefix(cleaned, "//") {
		cleaned = "https:" + cleaned
	} else if strings.HasPrefix(cleaned, "/") {
		cleaned = "https://kakobuy.com" + cleaned
	}

	cleaned = resizeQualityWebpRe.ReplaceAllString(cleaned, "")
	cleaned = resizeQualityRe.ReplaceAllString(cleaned, "")
	cleaned = resizeRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSuffix(cleaned, ".webp")
	return cleaned
}
