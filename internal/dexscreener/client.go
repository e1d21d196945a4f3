package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrPairNotFound means no candidate pair against the quote asset exists
	// for the token, or the search call failed.
	ErrPairNotFound = errors.New("no matching trading pair found")
	// ErrPriceUnavailable means the pairs endpoint returned no usable price.
	ErrPriceUnavailable = errors.New("price data unavailable")
)

const defaultTimeout = 10 * time.Second

// ClientConfig configuration of the dexscreener client
type ClientConfig struct {
	BaseURL     string
	ChainID     string
	QuoteSymbol string
	Timeout     time.Duration
}

// Client queries the dexscreener HTTP API. One attempt per call, no retries;
// a failed call is reported immediately and the caller decides what to do.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
}

func NewClient(c ClientConfig) *Client {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return &Client{
		config:     c,
		httpClient: &http.Client{Timeout: c.Timeout},
	}
}

type tokenInfo struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type pairInfo struct {
	PairAddress string      `json:"pairAddress"`
	BaseToken   tokenInfo   `json:"baseToken"`
	QuoteToken  tokenInfo   `json:"quoteToken"`
	PriceUSD    string      `json:"priceUsd"`
	FDV         json.Number `json:"fdv"`
}

type pairsResponse struct {
	Pairs []pairInfo `json:"pairs"`
}

// ResolvePair finds the trading pair for a token address by scanning search
// results for the first pair quoted against the configured settlement asset.
// Returns the pair address and the token's display name.
func (c *Client) ResolvePair(ctx context.Context, tokenAddress string) (string, string, error) {
	endpoint := fmt.Sprintf("%s/latest/dex/search?q=%s", c.config.BaseURL, url.QueryEscape(tokenAddress))

	var result pairsResponse
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		log.Debugf("pair search failed for %s: %v", tokenAddress, err)
		return "", "", ErrPairNotFound
	}

	for _, pair := range result.Pairs {
		if strings.Contains(pair.BaseToken.Symbol, c.config.QuoteSymbol) ||
			strings.Contains(pair.QuoteToken.Symbol, c.config.QuoteSymbol) {
			return pair.PairAddress, pair.BaseToken.Name, nil
		}
	}

	return "", "", ErrPairNotFound
}

// FetchPrice returns the current USD price and fully diluted valuation for a
// pair. Missing fields decode to zero; a non-positive price counts as
// unavailable.
func (c *Client) FetchPrice(ctx context.Context, pairAddress string) (float64, float64, error) {
	endpoint := fmt.Sprintf("%s/latest/dex/pairs/%s/%s", c.config.BaseURL, c.config.ChainID, pairAddress)

	var result pairsResponse
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		log.Debugf("price fetch failed for pair %s: %v", pairAddress, err)
		return 0, 0, ErrPriceUnavailable
	}

	if len(result.Pairs) == 0 {
		return 0, 0, ErrPriceUnavailable
	}

	pair := result.Pairs[0]
	price, _ := strconv.ParseFloat(pair.PriceUSD, 64)
	if price <= 0 {
		return 0, 0, ErrPriceUnavailable
	}

	marketCap, _ := pair.FDV.Float64()
	return price, marketCap, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "could not build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "could not decode response")
}
