package entrants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/catsiege/arena-server/internal/arena"
)

var ErrInsufficientEntrants = errors.New("fewer than 2 usable entrants available")

// Token is one row of the external listing API's metadata response.
type Token struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	Mint  string `json:"mint"`
}

// Fetcher pulls token metadata off the paginated listing API. Failed pages
// are logged and skipped rather than retried; the fetch only fails outright
// when fewer than 2 usable entrants remain in total.
type Fetcher struct {
	baseURL  string
	pageSize int
	maxPages int
	client   *http.Client
}

func NewFetcher(baseURL string, pageSize, maxPages, timeoutSeconds int) *Fetcher {
	return &Fetcher{
		baseURL:  baseURL,
		pageSize: pageSize,
		maxPages: maxPages,
		client:   &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
	}
}

// FetchAll collects entrants across pages until an empty page or the page
// limit. Health on the returned entrants is initialized to maxHealth.
func (f *Fetcher) FetchAll(ctx context.Context, maxHealth int) ([]arena.Entrant, error) {
	var out []arena.Entrant

	for page := 0; page < f.maxPages; page++ {
		tokens, err := f.fetchPage(ctx, page)
		if err != nil {
			slog.Warn("skipping entrant page", "page", page, "error", err)
			continue
		}
		if len(tokens) == 0 {
			break
		}

		for _, tok := range tokens {
			if tok.Mint == "" {
				continue
			}
			out = append(out, arena.Entrant{
				ID:     tok.Mint,
				Name:   tok.Name,
				Image:  tok.Image,
				Mint:   tok.Mint,
				Health: maxHealth,
			})
		}
	}

	if len(out) < 2 {
		return nil, ErrInsufficientEntrants
	}
	return out, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, page int) ([]Token, error) {
	url := fmt.Sprintf("%s/tokens?page=%d&limit=%d", f.baseURL, page, f.pageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing API returned %d", resp.StatusCode)
	}

	var tokens []Token
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("decode page %d: %w", page, err)
	}
	return tokens, nil
}
