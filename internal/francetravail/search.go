package francetravail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

type searchResponse struct {
	Resultats []map[string]any `json:"resultats"`
}

// Search queries offers matching the keywords, most recent first. Pages are
// numbered from 1 and surface as the API's inclusive result range.
func (c *Client) Search(ctx context.Context, keywords string, page, limit int) ([]*Offer, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPerPage {
		limit = maxPerPage
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	start := (page - 1) * limit
	end := page*limit - 1

	q := url.Values{}
	q.Set("motsCles", keywords)
	q.Set("range", fmt.Sprintf("%d-%d", start, end))
	q.Set("sort", "1")

	searchURL := c.APIURL + "/offres/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.URL.RawQuery = q.Encode()

	c.logger.Debug("searching offers",
		zap.String("keywords", keywords),
		zap.String("range", q.Get("range")),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search offers: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		// No offer matches the query.
		return nil, nil
	case http.StatusOK, http.StatusPartialContent:
		// 206 means more results exist beyond the requested range.
	default:
		return nil, fmt.Errorf("search offers: bad status: %s", resp.Status)
	}

	var response searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	offers := make([]*Offer, 0, len(response.Resultats))
	for _, payload := range response.Resultats {
		offer, err := offerFromPayload(payload)
		if err != nil {
			return nil, fmt.Errorf("decode offer payload: %w", err)
		}
		offers = append(offers, offer)
	}

	c.logger.Debug("search done", zap.Int("offers", len(offers)))

	return offers, nil
}
