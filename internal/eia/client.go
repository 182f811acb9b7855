package eia

import (
	"context"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridsage/plantenrich/internal/fetcher"
)

// Client pulls facility-fuel generation snapshots for one reporting period.
type Client struct {
	fetcher  fetcher.Fetcher
	baseURL  string
	apiKey   string
	pageSize int
}

// NewClient creates an EIA client. baseURL should point at the v2 API root
// (e.g. https://api.eia.gov/v2).
func NewClient(f fetcher.Fetcher, baseURL, apiKey string, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = 5000
	}
	return &Client{
		fetcher:  f,
		baseURL:  baseURL,
		apiKey:   apiKey,
		pageSize: pageSize,
	}
}

// FacilityFuel fetches all monthly gross-generation rows for the given
// period, following offset pagination until the feed is exhausted.
func (c *Client) FacilityFuel(ctx context.Context, period string) ([]GenerationRow, error) {
	if c.apiKey == "" {
		return nil, eris.New("eia: missing API key")
	}

	var rows []GenerationRow
	offset := 0
	for {
		page, total, err := c.fetchPage(ctx, period, offset)
		if err != nil {
			return nil, err
		}
		rows = append(rows, page...)

		zap.L().Debug("eia: fetched page",
			zap.String("period", period),
			zap.Int("offset", offset),
			zap.Int("rows", len(page)),
			zap.Int("total", total),
		)

		offset += len(page)
		if len(page) < c.pageSize || (total > 0 && offset >= total) {
			break
		}
	}

	zap.L().Info("eia: snapshot fetched",
		zap.String("period", period),
		zap.Int("rows", len(rows)),
	)
	return rows, nil
}

func (c *Client) fetchPage(ctx context.Context, period string, offset int) ([]GenerationRow, int, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("frequency", "monthly")
	q.Set("data[0]", "gross-generation")
	q.Set("start", period)
	q.Set("end", period)
	q.Set("sort[0][column]", "period")
	q.Set("sort[0][direction]", "desc")
	q.Set("offset", strconv.Itoa(offset))
	q.Set("length", strconv.Itoa(c.pageSize))

	reqURL := c.baseURL + "/electricity/facility-fuel/data/?" + q.Encode()

	body, err := c.fetcher.Download(ctx, reqURL)
	if err != nil {
		return nil, 0, eris.Wrap(err, "eia: fetch facility-fuel page")
	}
	defer body.Close() //nolint:errcheck

	env, err := fetcher.DecodeJSONObject[envelope](body)
	if err != nil {
		return nil, 0, eris.Wrap(err, "eia: decode response")
	}

	rows := make([]GenerationRow, 0, len(env.Response.Data))
	for _, raw := range env.Response.Data {
		rows = append(rows, raw.toGenerationRow())
	}

	total, _ := strconv.Atoi(string(env.Response.Total))
	return rows, total, nil
}
