package scraper

import (
	"context"
	"sync"

	"github.com/chromedp/chromedp"
)

const scrapeUserAgent = `Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36`

// Pool hands out chromedp exec-allocator contexts so browser processes
// are reused across scrapes.
type Pool struct {
	inner sync.Pool
}

func NewPool(size int) *Pool {
	p := &Pool{}
	p.inner.New = func() interface{} {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(scrapeUserAgent),
		)
		allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
		return allocCtx
	}
	// Pre-warm the pool
	for i := 0; i < size; i++ {
		p.inner.Put(p.inner.New())
	}
	return p
}

func (p *Pool) Get() context.Context {
	return p.inner.Get().(context.Context)
}

func (p *Pool) Put(ctx context.Context) {
	p.inner.Put(ctx)
}
