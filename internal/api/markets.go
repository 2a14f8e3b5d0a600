package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// defaultPageSize is the largest page the feed API serves.
const defaultPageSize = 200

// GetMarkets fetches a page of markets.
func (c *Client) GetMarkets(ctx context.Context, opts GetMarketsOptions) (*MarketsResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}
	query.Set("active", strconv.FormatBool(opts.Active))

	var resp MarketsResponse
	if err := c.get(ctx, "/markets", query, &resp); err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}

	return &resp, nil
}

// GetAllMarkets fetches every active market by paging through results.
func (c *Client) GetAllMarkets(ctx context.Context, pageSize int) ([]APIMarket, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var all []APIMarket
	offset := 0

	for {
		resp, err := c.GetMarkets(ctx, GetMarketsOptions{
			Limit:  pageSize,
			Offset: offset,
			Active: true,
		})
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Markets...)

		if len(resp.Markets) < pageSize {
			break
		}
		offset += len(resp.Markets)
	}

	return all, nil
}

// GetMarket fetches a single market by ID.
func (c *Client) GetMarket(ctx context.Context, marketID int64) (*APIMarket, error) {
	var resp APIMarket
	if err := c.get(ctx, "/markets/"+strconv.FormatInt(marketID, 10), nil, &resp); err != nil {
		return nil, fmt.Errorf("get market %d: %w", marketID, err)
	}
	return &resp, nil
}
