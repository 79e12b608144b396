// Package browser acquires session cookies through a headless Chrome visit.
// The browser is used only for this bootstrap step; all API traffic goes
// through the direct HTTP client.
package browser

import (
	"context"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Bootstrapper struct {
	startURL string
	timeout  time.Duration
}

// New returns a bootstrapper that loads startURL in headless Chrome and
// harvests the cookies the site sets during the visit.
func New(startURL string, timeout time.Duration) *Bootstrapper {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Bootstrapper{startURL: startURL, timeout: timeout}
}

func (b *Bootstrapper) AcquireSession(ctx context.Context) ([]*http.Cookie, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.timeout)
	defer cancelTimeout()

	var raw []*network.Cookie
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(b.startURL),
		chromedp.Sleep(3*time.Second), // let the site finish setting cookies
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			raw, err = network.GetCookies().Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}

	cookies := make([]*http.Cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, &http.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
		})
	}
	log.Info().Int("cookies", len(cookies)).Msg("browser session acquired")
	return cookies, nil
}

// Static satisfies the bootstrapper contract with a fixed cookie set.
// Used for cookie-less runs and in tests.
type Static struct {
	Cookies []*http.Cookie
}

func (s Static) AcquireSession(ctx context.Context) ([]*http.Cookie, error) {
	return s.Cookies, nil
}
