package driven

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/ratelimit"

	"github.com/alorle/addon-playlist/circuitbreaker"
	"github.com/alorle/addon-playlist/internal/logo"
	"github.com/alorle/addon-playlist/metrics"
)

const (
	// DefaultWikimediaAPIURL is the Wikimedia Commons action API endpoint.
	DefaultWikimediaAPIURL = "https://commons.wikimedia.org/w/api.php"

	defaultIndexTimeout = 5 * time.Second
	searchLimit         = 10
	thumbnailWidth      = 200
	fileNamespace       = "6"
)

// WikimediaHTTPIndex searches Wikimedia Commons for logo files.
// It implements the driven.MediaIndex port.
type WikimediaHTTPIndex struct {
	apiURL  string
	client  *http.Client
	breaker circuitbreaker.CircuitBreaker
	limiter ratelimit.Limiter
	logger  *slog.Logger
}

// NewWikimediaHTTPIndex creates a Commons client.
// If apiURL is empty, it uses DefaultWikimediaAPIURL.
// If client is nil, it creates a default HTTP client with a 5-second timeout.
// If breaker is nil, calls are never short-circuited; if limiter is nil, calls are not rate limited.
func NewWikimediaHTTPIndex(apiURL string, client *http.Client, breaker circuitbreaker.CircuitBreaker, limiter ratelimit.Limiter, logger *slog.Logger) *WikimediaHTTPIndex {
	if apiURL == "" {
		apiURL = DefaultWikimediaAPIURL
	}
	if client == nil {
		client = &http.Client{
			Timeout: defaultIndexTimeout,
		}
	}
	if limiter == nil {
		limiter = ratelimit.NewUnlimited()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WikimediaHTTPIndex{
		apiURL:  apiURL,
		client:  client,
		breaker: breaker,
		limiter: limiter,
		logger:  logger,
	}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type imageInfoResponse struct {
	Query struct {
		Pages map[string]struct {
			Missing   *string `json:"missing"`
			ImageInfo []struct {
				ThumbURL string `json:"thumburl"`
				URL      string `json:"url"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

// excludedMIMETypes are bitmap formats the candidate filter rejects anyway;
// keeping them out of the query leaves the result slots to svg, png and jpeg.
var excludedMIMETypes = []string{"image/gif", "image/webp", "image/tiff", "image/x-xcf", "image/bmp"}

func searchQuery(term string) string {
	var b strings.Builder
	b.WriteString(term)
	b.WriteString(" filetype:bitmap|drawing")
	for _, mime := range excludedMIMETypes {
		b.WriteString(" -filemime:")
		b.WriteString(mime)
	}
	return b.String()
}

// Search returns the titles of svg, png and jpeg files matching term, in
// relevance order.
func (w *WikimediaHTTPIndex) Search(ctx context.Context, term string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srnamespace", fileNamespace)
	params.Set("srsearch", searchQuery(term))
	params.Set("srlimit", strconv.Itoa(searchLimit))
	params.Set("format", "json")

	var resp searchResponse
	if err := w.call(ctx, "search", params, &resp); err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(resp.Query.Search))
	for _, r := range resp.Query.Search {
		if r.Title != "" {
			titles = append(titles, r.Title)
		}
	}
	return titles, nil
}

// ResolveFileURL returns the 200px thumbnail URL of fileTitle, or the original
// file URL when the index has no thumbnail.
func (w *WikimediaHTTPIndex) ResolveFileURL(ctx context.Context, fileTitle string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", fileTitle)
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url")
	params.Set("iiurlwidth", strconv.Itoa(thumbnailWidth))
	params.Set("format", "json")

	var resp imageInfoResponse
	if err := w.call(ctx, "imageinfo", params, &resp); err != nil {
		return "", err
	}

	for _, page := range resp.Query.Pages {
		if page.Missing != nil || len(page.ImageInfo) == 0 {
			continue
		}
		info := page.ImageInfo[0]
		if info.ThumbURL != "" {
			return info.ThumbURL, nil
		}
		if info.URL != "" {
			return info.URL, nil
		}
	}
	return "", logo.ErrNoImageInfo
}

// call performs one rate-limited API request through the circuit breaker and
// decodes the JSON body into out.
func (w *WikimediaHTTPIndex) call(ctx context.Context, operation string, params url.Values, out any) error {
	do := func() error {
		w.limiter.Take()
		return w.get(ctx, params, out)
	}

	var err error
	if w.breaker != nil {
		err = w.breaker.Execute(do)
	} else {
		err = do()
	}

	switch {
	case errors.Is(err, circuitbreaker.ErrOpen):
		metrics.RecordIndexRequest(operation, "unavailable")
		return fmt.Errorf("%s: %w", operation, logo.ErrIndexUnavailable)
	case err != nil:
		metrics.RecordIndexRequest(operation, "error")
		w.logger.Debug("media index request failed", "operation", operation, "error", err)
		return fmt.Errorf("%s: %w", operation, err)
	}
	metrics.RecordIndexRequest(operation, "ok")
	return nil
}

func (w *WikimediaHTTPIndex) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("querying media index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding media index response: %w", err)
	}
	return nil
}

// StatusError reports a non-200 answer from the media index.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status: %s", e.Status)
}

// IsIndexFailure tells the circuit breaker which media index errors mean the
// index is unhealthy: transport errors, 5xx answers and undecodable bodies.
// 4xx answers and calls abandoned by the caller do not count.
func IsIndexFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	return true
}
