package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finexus/tradedesk/internal/ledger"
	"github.com/finexus/tradedesk/internal/models"
	"github.com/finexus/tradedesk/internal/repository"
)

// RecommendationConfig tunes the allocation analysis.
type RecommendationConfig struct {
	// SectorTargets maps sector name to target allocation percent.
	SectorTargets map[string]float64
	// OverweightSlack and UnderweightGap are the percent-point deviations
	// that trigger a trim or buy suggestion.
	OverweightSlack float64
	UnderweightGap  float64
	// CashFloor is kept in reserve; MinCashToBuy gates buy suggestions;
	// MaxTicket caps a single suggested purchase.
	CashFloor         decimal.Decimal
	MinCashToBuy      decimal.Decimal
	MaxTicket         decimal.Decimal
	TermThresholdDays int
}

// DefaultRecommendationConfig returns the strategic allocation targets.
func DefaultRecommendationConfig(termThresholdDays int) RecommendationConfig {
	return RecommendationConfig{
		SectorTargets: map[string]float64{
			"Technology":   25,
			"Finance":      25,
			"Healthcare":   15,
			"Energy":       15,
			"Consumer":     10,
			"Unclassified": 10,
		},
		OverweightSlack:   15,
		UnderweightGap:    10,
		CashFloor:         decimal.NewFromInt(10000),
		MinCashToBuy:      decimal.NewFromInt(25000),
		MaxTicket:         decimal.NewFromInt(50000),
		TermThresholdDays: termThresholdDays,
	}
}

// RecommendationService analyzes a portfolio's sector allocation against
// target weights and suggests a rebalancing action.
type RecommendationService struct {
	store  repository.Store
	cfg    RecommendationConfig
	now    func() time.Time
	logger *logrus.Entry
}

func NewRecommendationService(store repository.Store, cfg RecommendationConfig, logger *logrus.Logger) *RecommendationService {
	return &RecommendationService{
		store:  store,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.WithField("component", "recommendation-service"),
	}
}

func (s *RecommendationService) Analyze(ctx context.Context, userID int64) (*models.Recommendation, error) {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	txns, err := s.store.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	positions, err := ledger.Aggregate(txns)
	if err != nil {
		return nil, err
	}
	stocks, err := s.store.ListStocks(ctx)
	if err != nil {
		return nil, err
	}
	bySymbol := make(map[string]models.Stock, len(stocks))
	for _, stk := range stocks {
		bySymbol[stk.Symbol] = stk
	}

	totalValue := 0.0
	sectorValues := map[string]float64{}
	held := map[string]bool{}
	for _, h := range positions.Holdings() {
		if h.TotalQuantity <= 0 {
			continue
		}
		stk, ok := bySymbol[h.Symbol]
		if !ok {
			continue
		}
		held[h.Symbol] = true
		value := float64(h.TotalQuantity) * stk.CurrentPrice.InexactFloat64()
		sector := stk.Sector
		if sector == "" {
			sector = "Unclassified"
		}
		totalValue += value
		sectorValues[sector] += value
	}

	if totalValue == 0 {
		return &models.Recommendation{
			Status: "empty",
			Action: "HOLD",
			Amount: decimal.Zero,
			Reason: "Portfolio is empty. Begin with a foundation in Technology or Finance using your cash reserves.",
		}, nil
	}

	rec := &models.Recommendation{Status: "success", Action: "HOLD", Amount: decimal.Zero}
	messages := []string{}

	if sector, divergence := s.overweightSector(sectorValues, totalValue); sector != "" {
		if symbol, longTerm, ok := s.oldestLotInSector(positions, bySymbol, sector); ok {
			taxNote := ""
			if longTerm {
				taxNote = " (LTCG Eligible - Tax Efficient)"
			}
			messages = append(messages,
				fmt.Sprintf("Strategic Trim: Portfolio is %.1f%% overweight in %s.", divergence, sector),
				fmt.Sprintf("Consider scaling back %s%s to rebalance.", symbol, taxNote))
		}
	}

	underweight, gap := s.underweightSector(sectorValues, totalValue)
	switch {
	case underweight != "" && user.CashBalance.GreaterThan(s.cfg.MinCashToBuy):
		if pick, ok := s.topMomentumPick(stocks, held, underweight); ok {
			rec.Action = "BUY"
			rec.Sector = underweight
			rec.SuggestedStock = fmt.Sprintf("%s (%s)", pick.Name, pick.Symbol)
			rec.Amount = decimal.Min(user.CashBalance.Sub(s.cfg.CashFloor), s.cfg.MaxTicket)
			messages = append(messages,
				fmt.Sprintf("Strategic Entry: %s is underweight by %.1f%%.", underweight, gap),
				fmt.Sprintf("With %s cash available, %s is a top momentum candidate.", user.CashBalance.StringFixed(0), rec.SuggestedStock))
		}
	case underweight != "":
		messages = append(messages,
			fmt.Sprintf("Allocation for %s is low, but maintaining cash reserves (%s) is prioritized.", underweight, user.CashBalance.StringFixed(0)))
	}

	rec.Reason = "Portfolio is optimally aligned with strategic targets."
	if len(messages) > 0 {
		rec.Reason = strings.Join(messages, " ")
	}
	return rec, nil
}

func (s *RecommendationService) overweightSector(sectorValues map[string]float64, totalValue float64) (string, float64) {
	sector, highest := "", 0.0
	for name, target := range s.cfg.SectorTargets {
		currentPct := sectorValues[name] / totalValue * 100
		if currentPct > target+s.cfg.OverweightSlack {
			if div := currentPct - target; div > highest {
				highest = div
				sector = name
			}
		}
	}
	return sector, highest
}

func (s *RecommendationService) underweightSector(sectorValues map[string]float64, totalValue float64) (string, float64) {
	sector, maxGap := "", 0.0
	for name, target := range s.cfg.SectorTargets {
		currentPct := sectorValues[name] / totalValue * 100
		if gap := target - currentPct; gap > s.cfg.UnderweightGap && gap > maxGap {
			maxGap = gap
			sector = name
		}
	}
	return sector, maxGap
}

// oldestLotInSector finds the earliest open buy lot among held symbols in
// the sector and whether it already qualifies for long-term treatment.
func (s *RecommendationService) oldestLotInSector(positions *ledger.Positions, bySymbol map[string]models.Stock, sector string) (symbol string, longTerm, ok bool) {
	var oldest *models.Lot
	for _, symbol := range positions.Symbols() {
		stk, ok := bySymbol[symbol]
		if !ok || stk.Sector != sector {
			continue
		}
		for _, lot := range positions.OpenLots(symbol) {
			if oldest == nil || lot.BuyDate.Before(oldest.BuyDate) {
				oldest = &lot
			}
		}
	}
	if oldest == nil {
		return "", false, false
	}
	days := int(s.now().Sub(oldest.BuyDate).Hours() / 24)
	return oldest.Symbol, days >= s.cfg.TermThresholdDays, true
}

func (s *RecommendationService) topMomentumPick(stocks []models.Stock, held map[string]bool, sector string) (models.Stock, bool) {
	var best models.Stock
	found := false
	for _, stk := range stocks {
		if stk.Sector != sector || held[stk.Symbol] {
			continue
		}
		if !found || stk.MomentumScore.GreaterThan(best.MomentumScore) {
			best = stk
			found = true
		}
	}
	return best, found
}
