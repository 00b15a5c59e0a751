package service

import "github.com/finexus/tradedesk/internal/models"

// NewsService serves the dashboard's market-news feed. The feed is a
// curated static set; live aggregation sits outside this service.
type NewsService struct {
	items []models.NewsItem
}

func NewNewsService() *NewsService {
	return &NewsService{items: []models.NewsItem{
		{
			ID:       1,
			Title:    "Tech Stocks Rally on AI Optimism",
			Summary:  "Major technology companies saw significant gains today as investor sentiment around artificial intelligence continues to drive market momentum.",
			Source:   "MarketWatch",
			Time:     "2 hours ago",
			Category: "Technology",
		},
		{
			ID:       2,
			Title:    "Fed Signals Potential Rate Cut",
			Summary:  "Federal Reserve officials hinted at a possible interest rate cut later this year if inflation data continues to show improvement.",
			Source:   "Bloomberg",
			Time:     "4 hours ago",
			Category: "Economy",
		},
		{
			ID:       3,
			Title:    "Oil Prices Stabilize After Volatile Week",
			Summary:  "Crude oil prices found a floor today after a week of volatility driven by geopolitical tensions and supply concerns.",
			Source:   "Reuters",
			Time:     "5 hours ago",
			Category: "Commodities",
		},
		{
			ID:       4,
			Title:    "EV Sales Projected to Record Highs",
			Summary:  "New industry reports suggest that electric vehicle sales are on track to hit record highs this quarter, defying earlier skepticism.",
			Source:   "CNBC",
			Time:     "8 hours ago",
			Category: "Automotive",
		},
		{
			ID:       5,
			Title:    "Crypto Markets Flash Green",
			Summary:  "Bitcoin and Ethereum surged overnight as institutional interest in digital assets appears to be renewing.",
			Source:   "CoinDesk",
			Time:     "12 hours ago",
			Category: "Crypto",
		},
	}}
}

func (s *NewsService) Latest() []models.NewsItem {
	return s.items
}
