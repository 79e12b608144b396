// Package tvil is the typed HTTP boundary to the tvil.ru JSON API. All
// decoding happens here; the rest of the pipeline only sees domain values.
package tvil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"tvilstat/internal/adapters/observability"
	"tvilstat/internal/domain"
)

const (
	entitiesPath    = "/api/entities"
	calculatePath   = "/api/reserves/calculate"
	catalogReferer  = "/city/irkutskaya-oblast/?gp%5Bentity_type%5D%5B0%5D=1"
	detailInclude   = "photos_t1,photos_t2"
	catalogInclude  = "params,child_params,photos_t2,photos_t1,tooltip,services,inflect,characteristics"
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	jsonAPIMime     = "application/vnd.api+json"
	catalogPageSize = "20"
)

type Client struct {
	base *url.URL
	geo  string
	hc   *resty.Client
	rl   *rate.Limiter
}

// New builds a client against base (scheme + host, e.g. https://tvil.ru)
// filtering the catalog by geo. delay is the fixed pause enforced between
// any two requests; cookies pre-seed the session (may be nil).
func New(base, geo string, delay time.Duration, cookies []*http.Cookie) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("tvil: bad base url %q: %w", base, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	jar.SetCookies(u, cookies)

	hc := resty.New().
		SetBaseURL(base).
		SetCookieJar(jar).
		SetTimeout(30 * time.Second).
		SetHeaders(map[string]string{
			"accept":          jsonAPIMime,
			"accept-language": "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7",
			"cache-control":   "no-cache",
			"derived-from":    "front_v3",
			"pragma":          "no-cache",
			"referer":         base + catalogReferer,
			"user-agent":      userAgent,
		})

	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Client{base: u, geo: geo, hc: hc, rl: rate.NewLimiter(limit, 1)}, nil
}

// SearchURL builds the first catalog page URL with the fixed filter set for
// the given stay dates.
func (c *Client) SearchURL(arrival, departure time.Time) string {
	q := url.Values{}
	q.Set("page[limit]", catalogPageSize)
	q.Set("page[offset]", "0")
	q.Set("include", catalogInclude)
	q.Add("filter[generalParam][entity_type][]", "1")
	q.Set("filter[type]", "")
	q.Set("filter[geo]", c.geo)
	q.Set("format[withNearEntities]", "1")
	q.Set("format[withBusyEntities]", "1")
	q.Set("format[withDisabledEntities]", "0")
	q.Set("order[arrival]", arrival.Format("2006-01-02"))
	q.Set("order[departure]", departure.Format("2006-01-02"))
	q.Set("order[male]", "1")
	return strings.TrimRight(c.base.String(), "/") + entitiesPath + "?" + q.Encode()
}

func (c *Client) FetchCatalogPage(ctx context.Context, pageURL string) ([]domain.Hotel, string, error) {
	var env entitiesEnvelope
	if err := c.getJSON(ctx, "catalog", pageURL, &env); err != nil {
		return nil, "", err
	}
	hotels := make([]domain.Hotel, 0, len(env.Data))
	for _, raw := range env.Data {
		var rec entityRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Debug().Err(err).Msg("skipping malformed catalog record")
			continue
		}
		if rec.ID == "" || rec.Attributes.Title == "" {
			continue
		}
		hotels = append(hotels, domain.Hotel{
			ID:         string(rec.ID),
			Name:       rec.Attributes.Title,
			Address:    rec.Attributes.Address,
			City:       rec.Attributes.CityAddress,
			URL:        c.absoluteURL(rec.Links.Public),
			RoomsTotal: string(rec.Attributes.RoomsTotal),
		})
	}
	return hotels, c.NormalizeNext(env.Links.Next), nil
}

func (c *Client) FetchDescriptions(ctx context.Context, hotelID string) (map[string]string, error) {
	u := strings.TrimRight(c.base.String(), "/") + entitiesPath + "/" + url.PathEscape(hotelID) + "?include=" + detailInclude
	var env detailEnvelope
	if err := c.getJSON(ctx, "descriptions", u, &env); err != nil {
		return nil, err
	}
	descs := make(map[string]string, len(env.Included))
	for _, item := range env.Included {
		if item.Type != "photos" || item.Attributes.ObjectID == "" {
			continue
		}
		descs[string(item.Attributes.ObjectID)] = item.Attributes.Description
	}
	return descs, nil
}

func (c *Client) Calculate(ctx context.Context, hotelID string, arrival, departure time.Time) ([]domain.CalcEntry, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}
	u := strings.TrimRight(c.base.String(), "/") + calculatePath
	resp, err := c.hc.R().
		SetContext(ctx).
		SetHeader("content-type", jsonAPIMime).
		SetHeader("origin", c.base.Scheme+"://"+c.base.Host).
		SetBody(newCalcRequest(hotelID, arrival.Format("2006-01-02"), departure.Format("2006-01-02"))).
		Post(u)
	if err != nil {
		observability.ObserveExternal("calculate", 0, 0)
		return nil, err
	}
	observability.ObserveExternal("calculate", resp.StatusCode(), resp.Time())
	if resp.IsError() {
		return nil, fmt.Errorf("tvil: calculate status %d", resp.StatusCode())
	}
	var env calcEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, fmt.Errorf("tvil: decode calculate response: %w", err)
	}

	entries := make([]domain.CalcEntry, 0, len(env.Data))
	for _, raw := range env.Data {
		var rec calcRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Debug().Err(err).Str("hotel", hotelID).Msg("skipping malformed calculation element")
			continue
		}
		price := string(rec.Attributes.TotalPrice)
		if price == "" {
			price = "0"
		}
		free := 0
		if n, err := strconv.Atoi(string(rec.Attributes.RoomsData.FreeCount)); err == nil {
			free = n
		}
		entries = append(entries, domain.CalcEntry{
			ID:               string(rec.ID),
			Price:            price,
			FreeCount:        free,
			AvailabilityText: rec.Attributes.RoomsData.Text,
		})
	}
	return entries, nil
}

// VisitPage issues a GET purely for its Set-Cookie side effects.
func (c *Client) VisitPage(ctx context.Context, pageURL string) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	resp, err := c.hc.R().
		SetContext(ctx).
		SetHeader("accept", "text/html,application/xhtml+xml").
		Get(pageURL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("tvil: page visit status %d", resp.StatusCode())
	}
	return nil
}

// NormalizeNext turns a links.next cursor into an absolute API URL: the
// public /entities/ path is rewritten to /api/entities/ (idempotent) and
// relative forms are joined to the base origin.
func (c *Client) NormalizeNext(next string) string {
	if next == "" {
		return ""
	}
	if strings.Contains(next, "/entities/") && !strings.Contains(next, entitiesPath+"/") {
		next = strings.Replace(next, "/entities/", entitiesPath+"/", 1)
	}
	return c.absoluteURL(next)
}

func (c *Client) absoluteURL(s string) string {
	switch {
	case s == "":
		return ""
	case strings.HasPrefix(s, "http"):
		return s
	case strings.HasPrefix(s, "/"):
		return strings.TrimRight(c.base.String(), "/") + s
	default:
		return strings.TrimRight(c.base.String(), "/") + "/" + s
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint, u string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	resp, err := c.hc.R().SetContext(ctx).Get(u)
	if err != nil {
		observability.ObserveExternal(endpoint, 0, 0)
		return err
	}
	observability.ObserveExternal(endpoint, resp.StatusCode(), resp.Time())
	if resp.IsError() {
		return fmt.Errorf("tvil: %s status %d", endpoint, resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("tvil: decode %s response: %w", endpoint, err)
	}
	return nil
}
