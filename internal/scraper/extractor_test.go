package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPageHTML = `<!DOCTYPE html>
<html>
<head><title>KakoBuy - Shopping Agent</title></head>
<body>
  <h1 class="product-title">Vintage Washed Hoodie</h1>
  <div class="product-price">¥ 128.50</div>
  <div class="gallery">
    <img src="https://img.alicdn.com/imgextra/hoodie1.jpg_400x400q85.jpg_.webp">
    <img data-src="//si.geilicdn.com/hoodie2.jpg_800x800.jpg">
    <img src="/static/hoodie3.jpg">
    <img src="">
  </div>
</body>
</html>`

func TestExtractProduct(t *testing.T) {
	product, err := ExtractProduct("https://www.kakobuy.com/item/details?url=x", productPageHTML)
	require.NoError(t, err)

	assert.Equal(t, "Vintage Washed Hoodie", product.Title)
	assert.Equal(t, "128.50", product.Price)
	assert.Equal(t, "CNY", product.Currency)
	assert.Equal(t, "https://www.kakobuy.com/item/details?url=x", product.URL)
	assert.Equal(t, []string{
		"https://img.alicdn.com/imgextra/hoodie1.jpg",
		"https://si.geilicdn.com/hoodie2.jpg",
		"https://kakobuy.com/static/hoodie3.jpg",
	}, product.Images)
}

func TestExtractProductFallsBackToPageTitle(t *testing.T) {
	html := `<html><head><title>Plain Tee</title></head><body><p>out of stock</p></body></html>`
	product, err := ExtractProduct("https://example.com", html)
	require.NoError(t, err)
	assert.Equal(t, "Plain Tee", product.Title)
	assert.Empty(t, product.Price)
	assert.Empty(t, product.Images)
}

func TestExtractProductScansBodyForPrice(t *testing.T) {
	html := `<html><body><h1>Sneakers</h1><p>Only CNY 299 this week</p></body></html>`
	product, err := ExtractProduct("https://example.com", html)
	require.NoError(t, err)
	assert.Equal(t, "299", product.Price)
}

func TestExtractProductPrefersSelectorOrder(t *testing.T) {
	html := `<html><body>
	  <h1>Generic Heading</h1>
	  <div class="item-title">Actual Item Name</div>
	  <span class="amount">￥50</span>
	  <div class="price">￥42.00</div>
	</body></html>`
	product, err := ExtractProduct("https://example.com", html)
	require.NoError(t, err)
	assert.Equal(t, "Actual Item Name", product.Title)
	assert.Equal(t, "42.00", product.Price)
}

func TestCleanImageURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "resize quality webp suffix",
			in:   "https://img.alicdn.com/a.jpg_400x400q85.jpg_.webp",
			want: "https://img.alicdn.com/a.jpg",
		},
		{
			name: "resize quality suffix",
			in:   "https://img.alicdn.com/a.jpg_750x750q90.jpg",
			want: "https://img.alicdn.com/a.jpg",
		},
		{
			name: "plain resize suffix",
			in:   "https://si.geilicdn.com/b.jpg_800x800.jpg",
			want: "https://si.geilicdn.com/b.jpg",
		},
		{
			name: "trailing webp",
			in:   "https://img.alicdn.com/c.png.webp",
			want: "https://img.alicdn.com/c.png",
		},
		{
			name: "protocol relative",
			in:   "//img.alicdn.com/d.jpg",
			want: "https://img.alicdn.com/d.jpg",
		},
		{
			name: "root relative",
			in:   "/assets/e.jpg",
			want: "https://kakobuy.com/assets/e.jpg",
		},
		{
			name: "already clean",
			in:   "https://img.alicdn.com/f.jpg",
			want: "https://img.alicdn.com/f.jpg",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanImageURL(tc.in))
		})
	}
}
