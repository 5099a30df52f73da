package services

import (
	"context"
	"net/http"

	"github.com/almatuck/levee-go/transport"
)

type SiteStats struct {
	Visitors    int     `json:"visitors"`
	PageViews   int     `json:"pageViews"`
	Conversions int     `json:"conversions"`
	RevenueUsd  float64 `json:"revenueUsd"`
	Period      string  `json:"period,omitempty"`
}

type EmailStats struct {
	Sent      int `json:"sent"`
	Delivered int `json:"delivered"`
	Opened    int `json:"opened"`
	Clicked   int `json:"clicked"`
	Bounced   int `json:"bounced"`
}

// StatsService exposes the read-only counters endpoints.
type StatsService struct {
	t *transport.Transport
}

func NewStatsService(t *transport.Transport) *StatsService {
	return &StatsService{t: t}
}

func (s *StatsService) Site(ctx context.Context, period string) (*SiteStats, error) {
	var out SiteStats
	if err := s.t.Do(ctx, http.MethodGet, "/stats/site?period="+period, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *StatsService) Emails(ctx context.Context, campaignId string) (*EmailStats, error) {
	var out EmailStats
	if err := s.t.Do(ctx, http.MethodGet, "/stats/emails/"+campaignId, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
