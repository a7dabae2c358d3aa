package statistic

import (
	"context"

	"github.com/cardcon-lab/backend/internal/domain/catalog"
	"github.com/cardcon-lab/backend/internal/entity"
	"github.com/cardcon-lab/backend/internal/repository"
	"github.com/cardcon-lab/backend/pkg/errorx"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
)

type FactionStats struct {
	FactionID              string
	TotalPoints            int64
	MemberCount            int64
	AveragePointsPerMember float64
	Rank                   int
	PurchasePoints         int64
	BonusPoints            int64
	TopMembers             []MemberPoints
}

// Aggregator computes faction statistics from the transaction log and the membership ledger on
// every call.
type Aggregator interface {
	FactionStats(ctx context.Context, factionID string) (*FactionStats, error)
	AllFactionStats(ctx context.Context) ([]FactionStats, error)
}

type aggregator struct {
	catalog              *catalog.Catalog
	factionRepo          repository.FactionRepository
	factionMemberRepo    repository.FactionMemberRepository
	pointTransactionRepo repository.PointTransactionRepository
}

func NewAggregator(
	cat *catalog.Catalog,
	factionRepo repository.FactionRepository,
	factionMemberRepo repository.FactionMemberRepository,
	pointTransactionRepo repository.PointTransactionRepository,
) *aggregator {
	return &aggregator{
		catalog:              cat,
		factionRepo:          factionRepo,
		factionMemberRepo:    factionMemberRepo,
		pointTransactionRepo: pointTransactionRepo,
	}
}

func (a *aggregator) FactionStats(ctx context.Context, factionID string) (*FactionStats, error) {
	if _, err := a.catalog.GetByID(factionID); err != nil {
		return nil, err
	}

	all, err := a.compute(ctx)
	if err != nil {
		return nil, err
	}

	for i := range all {
		if all[i].FactionID == factionID {
			return &all[i], nil
		}
	}

	xcontext.Logger(ctx).Errorf("Faction %s is missing from computed stats", factionID)
	return nil, errorx.Unknown
}

// AllFactionStats returns the stats of every faction, sorted by total points descending. It also
// refreshes the informational counters of the faction snapshot.
func (a *aggregator) AllFactionStats(ctx context.Context) ([]FactionStats, error) {
	all, err := a.compute(ctx)
	if err != nil {
		return nil, err
	}

	for _, s := range all {
		if err := a.factionRepo.UpdateCounters(ctx, s.FactionID, s.TotalPoints, s.MemberCount); err != nil {
			// The counters are informational only.
			xcontext.Logger(ctx).Warnf("Cannot refresh counters of faction %s: %v", s.FactionID, err)
		}
	}

	return all, nil
}

func (a *aggregator) compute(ctx context.Context) ([]FactionStats, error) {
	totals, err := a.pointTransactionRepo.SumByFaction(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot sum points by faction: %v", err)
		return nil, errorx.Unknown
	}

	purchases, err := a.pointTransactionRepo.SumByFaction(ctx, entity.PointPurchase)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot sum purchase points by faction: %v", err)
		return nil, errorx.Unknown
	}

	bonuses, err := a.pointTransactionRepo.SumByFaction(ctx, entity.PointBonus)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot sum bonus points by faction: %v", err)
		return nil, errorx.Unknown
	}

	counts, err := a.factionMemberRepo.CountActiveByFaction(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count active members: %v", err)
		return nil, errorx.Unknown
	}

	result := []FactionStats{}
	for _, f := range a.catalog.GetAll() {
		topMembers, err := a.topMembers(ctx, f.ID)
		if err != nil {
			return nil, err
		}

		stats := FactionStats{
			FactionID:      f.ID,
			TotalPoints:    totals[f.ID],
			MemberCount:    counts[f.ID],
			PurchasePoints: purchases[f.ID],
			BonusPoints:    bonuses[f.ID],
			TopMembers:     topMembers,
		}

		if stats.MemberCount > 0 {
			stats.AveragePointsPerMember = float64(stats.TotalPoints) / float64(stats.MemberCount)
		}

		result = append(result, stats)
	}

	// Ties keep the catalog order.
	slices.SortStableFunc(result, func(a, b FactionStats) bool {
		return a.TotalPoints > b.TotalPoints
	})

	for i := range result {
		result[i].Rank = i + 1
	}

	return result, nil
}

// topMembers returns the active members of the faction with the most points. Members with equal
// points keep their join order.
func (a *aggregator) topMembers(ctx context.Context, factionID string) ([]MemberPoints, error) {
	members, err := a.factionMemberRepo.GetActiveByFaction(ctx, factionID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active members: %v", err)
		return nil, errorx.Unknown
	}

	userIDs := []string{}
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}

	points, err := a.pointTransactionRepo.SumByUsers(ctx, userIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot sum points of members: %v", err)
		return nil, errorx.Unknown
	}

	result := []MemberPoints{}
	for _, id := range userIDs {
		result = append(result, MemberPoints{UserID: id, Points: points[id]})
	}

	slices.SortStableFunc(result, func(a, b MemberPoints) bool {
		return a.Points > b.Points
	})

	limit := xcontext.Configs(ctx).Faction.TopMembers
	if limit <= 0 {
		limit = 10
	}

	result = page(result, 0, limit)
	for i := range result {
		result[i].Rank = i + 1
	}

	return result, nil
}
