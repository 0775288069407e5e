package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/xptrack-lab/backend/config"
	"github.com/xptrack-lab/backend/internal/entity"
)

// ErrPlayerNotFound means the source confirms the player does not exist
// (or is banned). It is terminal: callers must not retry.
var ErrPlayerNotFound = errors.New("player not found on hiscores")

// TransientError wraps transport and upstream failures that are safe to
// retry with backoff.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient hiscores failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// DataInvalidError wraps a malformed response body. Not retried until the
// next scheduled attempt.
type DataInvalidError struct {
	Reason string
}

func (e *DataInvalidError) Error() string {
	return fmt.Sprintf("invalid hiscores payload: %s", e.Reason)
}

// HiscoresCaller fetches the current per-metric (rank, value) pairs of a
// player from the external source.
type HiscoresCaller interface {
	Fetch(ctx context.Context, username string) (entity.MetricValues, error)
}

type hiscoresCaller struct {
	baseURL    string
	httpClient *http.Client
}

// NewHiscoresCaller builds a caller bound to one egress identity. An empty
// proxy address means direct requests.
func NewHiscoresCaller(cfg config.HiscoresConfigs, proxyAddr string) (*hiscoresCaller, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyAddr != "" {
		proxyURL, err := url.Parse(proxyAddr)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy address %s: %w", proxyAddr, err)
		}

		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &hiscoresCaller{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}, nil
}

func (c *hiscoresCaller) Fetch(ctx context.Context, username string) (entity.MetricValues, error) {
	endpoint := fmt.Sprintf("%s/index_lite.ws?player=%s", c.baseURL, url.QueryEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrPlayerNotFound
	case resp.StatusCode >= 500:
		return nil, &TransientError{Err: fmt.Errorf("upstream status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, &DataInvalidError{Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	return parseHiscores(bufio.NewScanner(resp.Body))
}

// parseHiscores reads the source's line protocol: one CSV line per metric
// in catalog order, "rank,level,experience" for skills and "rank,value"
// for everything else. Lines past the known catalog belong to newer
// content and are ignored; missing trailing lines are treated unranked.
func parseHiscores(scanner *bufio.Scanner) (entity.MetricValues, error) {
	values := entity.MetricValues{}

	for _, metric := range entity.AllMetrics() {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, &TransientError{Err: err}
			}

			values[metric] = entity.MetricValue{
				Rank:  int(entity.UnrankedValue),
				Value: entity.UnrankedValue,
			}
			continue
		}

		value, err := parseLine(metric, strings.TrimSpace(scanner.Text()))
		if err != nil {
			return nil, err
		}

		values[metric] = value
	}

	return values, nil
}

func parseLine(metric entity.Metric, line string) (entity.MetricValue, error) {
	fields := strings.Split(line, ",")

	wantFields := 2
	valueField := 1
	if entity.IsSkill(metric) {
		// rank,level,experience
		wantFields = 3
		valueField = 2
	}

	if len(fields) != wantFields {
		return entity.MetricValue{}, &DataInvalidError{
			Reason: fmt.Sprintf("metric %s has %d fields, want %d", metric, len(fields), wantFields),
		}
	}

	rank, err := strconv.Atoi(fields[0])
	if err != nil {
		return entity.MetricValue{}, &DataInvalidError{
			Reason: fmt.Sprintf("metric %s has invalid rank %q", metric, fields[0]),
		}
	}

	value, err := strconv.ParseInt(fields[valueField], 10, 64)
	if err != nil {
		return entity.MetricValue{}, &DataInvalidError{
			Reason: fmt.Sprintf("metric %s has invalid value %q", metric, fields[valueField]),
		}
	}

	if value < entity.UnrankedValue {
		return entity.MetricValue{}, &DataInvalidError{
			Reason: fmt.Sprintf("metric %s value %d is below the unranked sentinel", metric, value),
		}
	}

	return entity.MetricValue{Rank: rank, Value: value}, nil
}
