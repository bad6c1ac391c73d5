package discount

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// nearingLimitRatio is the share of the usage limit past which a discount
// is reported as nearing its limit.
const nearingLimitRatio = 0.8

// OverviewSummary counts catalog entries by state.
type OverviewSummary struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	Expired      int `json:"expired"`
	LimitReached int `json:"limitReached"`
	Unlimited    int `json:"unlimited"`
	NearingLimit int `json:"nearingLimit"`
}

// OverviewEntry is a display row for one catalog discount.
type OverviewEntry struct {
	Index              int          `json:"index"`
	ID                 string       `json:"id"`
	Title              string       `json:"title"`
	Code               string       `json:"code"`
	Type               Kind         `json:"type"`
	Value              string       `json:"value"`
	Status             string       `json:"status"`
	UsageCount         int          `json:"usageCount"`
	UsageLimit         *int         `json:"usageLimit"`
	UsagePercentage    int          `json:"usagePercentage"`
	CreatedAt          *time.Time   `json:"createdAt"`
	EndsAt             *time.Time   `json:"endsAt"`
	MinimumRequirement string       `json:"minimumRequirement"`
	CombinesWith       CombinesWith `json:"combinesWith"`
	StatusMessages     []string     `json:"statusMessages"`
	IsExpired          bool         `json:"isExpired"`
	IsLimitReached     bool         `json:"isLimitReached"`
	IsNearingLimit     bool         `json:"isNearingLimit"`
}

// Overview is the formatted view of the whole catalog.
type Overview struct {
	Summary   OverviewSummary `json:"summary"`
	Discounts []OverviewEntry `json:"discounts"`
	Timestamp time.Time       `json:"timestamp"`
}

// Summarize formats the catalog for display. Total counts every record;
// records without codes get no entry and no status counts. Entries are ordered non-expired first, then by usage percentage
// descending, then newest first.
func Summarize(catalog []Record, now time.Time) Overview {
	entries := make([]OverviewEntry, 0, len(catalog))
	summary := OverviewSummary{Total: len(catalog)}

	for i, record := range catalog {
		primary, ok := record.PrimaryCode()
		if !ok {
			continue
		}

		usageCount := primary.UsageCount
		isExpired := record.EndsAt != nil && record.EndsAt.Before(now)
		isLimitReached := record.UsageLimit != nil && usageCount >= *record.UsageLimit
		isNearingLimit := false
		usagePercentage := 0
		if record.UsageLimit != nil && *record.UsageLimit > 0 {
			ratio := float64(usageCount) / float64(*record.UsageLimit)
			isNearingLimit = ratio >= nearingLimitRatio && !isLimitReached
			usagePercentage = int(math.Round(ratio * 100))
		}

		if isExpired {
			summary.Expired++
		} else {
			summary.Active++
		}
		if isLimitReached {
			summary.LimitReached++
		}
		if record.UsageLimit == nil {
			summary.Unlimited++
		}
		if isNearingLimit {
			summary.NearingLimit++
		}

		messages := make([]string, 0, 2)
		switch {
		case isExpired:
			messages = append(messages, "EXPIRED")
		case isLimitReached:
			messages = append(messages, "USAGE LIMIT REACHED")
		case isNearingLimit:
			messages = append(messages, "NEARING USAGE LIMIT")
		default:
			messages = append(messages, "AVAILABLE")
		}
		if record.UsageLimit != nil {
			messages = append(messages, fmt.Sprintf("%d uses remaining", *record.UsageLimit-usageCount))
		} else {
			messages = append(messages, "Unlimited uses")
		}

		minimum := "None"
		if record.MinimumSubtotal != nil {
			minimum = "Minimum order: " + record.MinimumSubtotal.String()
		}

		status := record.Status
		if status == "" {
			status = "active"
		}

		entries = append(entries, OverviewEntry{
			Index:              i + 1,
			ID:                 record.ID,
			Title:              record.DisplayTitle(),
			Code:               primary.Code,
			Type:               record.Kind,
			Value:              record.RenderValue(),
			Status:             status,
			UsageCount:         usageCount,
			UsageLimit:         record.UsageLimit,
			UsagePercentage:    usagePercentage,
			CreatedAt:          record.CreatedAt,
			EndsAt:             record.EndsAt,
			MinimumRequirement: minimum,
			CombinesWith:       record.CombinesWith,
			StatusMessages:     messages,
			IsExpired:          isExpired,
			IsLimitReached:     isLimitReached,
			IsNearingLimit:     isNearingLimit,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsExpired != b.IsExpired {
			return !a.IsExpired
		}
		if a.UsagePercentage != b.UsagePercentage {
			return a.UsagePercentage > b.UsagePercentage
		}
		return createdAfter(a.CreatedAt, b.CreatedAt)
	})

	return Overview{
		Summary:   summary,
		Discounts: entries,
		Timestamp: now.UTC(),
	}
}

func createdAfter(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	}
	return a.After(*b)
}
