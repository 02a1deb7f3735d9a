package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"arcade-backend/internal/config"
)

// ProxiedResponse carries an upstream reply back to the handler unchanged
type ProxiedResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// ReportProxyService forwards read-only report queries to the game-play and
// revenue vendor APIs, attaching the venue's API key server side so it never
// reaches the browser.
type ReportProxyService struct {
	Cfg    *config.Config
	Client *http.Client
}

func NewReportProxyService(cfg *config.Config) *ReportProxyService {
	return &ReportProxyService{
		Cfg:    cfg,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchGameReport proxies a path under the game reports API
func (s *ReportProxyService) FetchGameReport(ctx context.Context, path string, query url.Values) (*ProxiedResponse, error) {
	if s.Cfg.Reports.GameReportsBaseURL == "" {
		return nil, errors.New("game reports API is not configured")
	}
	return s.fetch(ctx, s.Cfg.Reports.GameReportsBaseURL, path, query)
}

// FetchRevenueReport proxies a path under the revenue API
func (s *ReportProxyService) FetchRevenueReport(ctx context.Context, path string, query url.Values) (*ProxiedResponse, error) {
	if s.Cfg.Reports.RevenueBaseURL == "" {
		return nil, errors.New("revenue API is not configured")
	}
	return s.fetch(ctx, s.Cfg.Reports.RevenueBaseURL, path, query)
}

func (s *ReportProxyService) fetch(ctx context.Context, baseURL, path string, query url.Values) (*ProxiedResponse, error) {
	target, err := buildProxyURL(baseURL, path, query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if s.Cfg.Reports.APIKey != "" {
		req.Header.Set("X-API-Key", s.Cfg.Reports.APIKey)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		log.Printf("[ReportProxy] Upstream request failed: %v", err)
		return nil, fmt.Errorf("upstream report API unreachable: %w", err)
	}
	defer resp.Body.Close()

	// Reports are small JSON payloads; cap reads to keep a misbehaving
	// upstream from exhausting memory.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, err
	}

	return &ProxiedResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// buildProxyURL joins the configured base with the requested sub-path,
// rejecting anything that escapes it
func buildProxyURL(baseURL, path string, query url.Values) (string, error) {
	if strings.Contains(path, "..") {
		return "", errors.New("invalid report path")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	joined, err := url.JoinPath(base.String(), path)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		joined = joined + "?" + query.Encode()
	}
	return joined, nil
}
