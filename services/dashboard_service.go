package services

import (
	"context"
	"time"

	"case_flow_app_go/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	dashboardListSize    = 3
	recentCommunications = 7 * 24 * time.Hour
)

// DashboardStats are the headline counters of the dashboard
type DashboardStats struct {
	TotalCases           int64 `json:"totalCases"`
	ActiveCases          int64 `json:"activeCases"`
	PendingActions       int64 `json:"pendingActions"`
	RecentCommunications int64 `json:"recentCommunications"`
}

// ReasonChainWithCase is a ReasonChain with its case summary
type ReasonChainWithCase struct {
	models.ReasonChain
	Case models.CaseSummary `json:"case"`
}

// DashboardService computes dashboard aggregates
type DashboardService struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{DB: db, now: time.Now}
}

// Stats runs the dashboard counters concurrently
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	since := s.now().Add(-recentCommunications)

	g, gctx := errgroup.WithContext(ctx)
	count := func(dest *int64, model interface{}, query string, args ...interface{}) {
		g.Go(func() error {
			q := s.DB.WithContext(gctx).Model(model)
			if query != "" {
				q = q.Where(query, args...)
			}
			if err := q.Count(dest).Error; err != nil {
				return persistenceError("count dashboard stats", err)
			}
			return nil
		})
	}

	count(&stats.TotalCases, &models.Case{}, "")
	count(&stats.ActiveCases, &models.Case{}, "status = ?", models.CaseStatusActive)
	count(&stats.PendingActions, &models.ReasonChain{}, "status = ?", models.ReasonChainStatusPending)
	count(&stats.RecentCommunications, &models.Email{}, "created_at >= ?", since)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// RecentCases returns the active cases with the latest activity
func (s *DashboardService) RecentCases(ctx context.Context) ([]models.Case, error) {
	cases := []models.Case{}
	err := s.DB.WithContext(ctx).
		Where("status = ?", models.CaseStatusActive).
		Order("last_activity DESC").
		Limit(dashboardListSize).
		Find(&cases).Error
	if err != nil {
		return nil, persistenceError("fetch recent cases", err)
	}
	return cases, nil
}

// PendingActions returns the newest reason chains with their case summary
func (s *DashboardService) PendingActions(ctx context.Context) ([]ReasonChainWithCase, error) {
	chains, err := NewActionService(s.DB).recentChains(ctx, dashboardListSize)
	if err != nil {
		return nil, err
	}

	out := make([]ReasonChainWithCase, 0, len(chains))
	for _, chain := range chains {
		item := ReasonChainWithCase{ReasonChain: chain}
		if chain.Case != nil {
			item.Case = chain.Case.Summary()
		}
		item.ReasonChain.Case = nil
		out = append(out, item)
	}
	return out, nil
}
