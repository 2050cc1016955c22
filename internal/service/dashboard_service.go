package service

import (
	"context"

	"alcyxob/gym-membership/internal/clock"
	"alcyxob/gym-membership/internal/directory"
	"alcyxob/gym-membership/internal/roster"
)

type DashboardService interface {
	Summary(ctx context.Context) (roster.Summary, error)
}

type dashboardService struct {
	roster directory.Directory
	clock  clock.Clock
}

func NewDashboardService(dir directory.Directory, clk clock.Clock) DashboardService {
	return &dashboardService{roster: dir, clock: clk}
}

func (s *dashboardService) Summary(ctx context.Context) (roster.Summary, error) {
	members, err := s.roster.ListMembers(ctx)
	if err != nil {
		return roster.Summary{}, err
	}
	return roster.Summarize(members, s.clock.Now()), nil
}
