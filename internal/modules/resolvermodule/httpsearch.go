package resolvermodule

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-hclog"
)

// HTTPSearcher implements Searcher and InfoFetcher against providers
// that expose a JSON search API. Each provider's base URL comes from
// configuration; a provider with no configured URL fails with a
// SearchError so the orchestrator can fall back past it.
type HTTPSearcher struct {
	baseURLs map[string]string
	client   *http.Client
	logger   hclog.Logger
}

// NewHTTPSearcher creates a search adapter over the configured
// provider base URLs.
func NewHTTPSearcher(baseURLs map[string]string, timeout time.Duration, logger hclog.Logger) *HTTPSearcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &HTTPSearcher{
		baseURLs: baseURLs,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.Named("search"),
	}
}

type searchResponse struct {
	Results []Candidate `json:"results"`
}

// Search queries a provider's search endpoint for a free-text title.
func (h *HTTPSearcher) Search(ctx context.Context, provider, title string) ([]Candidate, error) {
	base, ok := h.baseURLs[provider]
	if !ok {
		return nil, &SearchError{Provider: provider, Err: fmt.Errorf("no base URL configured")}
	}

	params := url.Values{}
	params.Set("q", title)
	searchURL := fmt.Sprintf("%s/search?%s", base, params.Encode())

	body, err := h.get(ctx, searchURL)
	if err != nil {
		return nil, &SearchError{Provider: provider, Err: err}
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &SearchError{Provider: provider, Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	h.logger.Debug("search completed", "provider", provider, "title", title, "results", len(resp.Results))
	return resp.Results, nil
}

// GetInfo fetches full metadata for a provider-native id.
func (h *HTTPSearcher) GetInfo(ctx context.Context, provider, nativeID, typeHint string) (*MediaInfo, error) {
	base, ok := h.baseURLs[provider]
	if !ok {
		return nil, fmt.Errorf("no base URL configured for provider %s", provider)
	}

	infoURL := fmt.Sprintf("%s/info/%s", base, url.PathEscape(nativeID))
	if typeHint != "" {
		infoURL += "?type=" + url.QueryEscape(typeHint)
	}

	body, err := h.get(ctx, infoURL)
	if err != nil {
		return nil, err
	}

	var info MediaInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse info response: %w", err)
	}
	if info.ID == "" {
		return nil, ErrNotFound
	}
	return &info, nil
}

func (h *HTTPSearcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "medialog/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
