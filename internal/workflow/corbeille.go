package workflow

import (
	"sort"
	"time"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

// ClassifiedItem pairs a work item with its classifier verdict.
type ClassifiedItem struct {
	Item     domain.WorkItem
	Late     bool
	Critical bool
}

// Stats carries the corbeille counters shown on every dashboard.
type Stats struct {
	UnassignedCount int `json:"nonAffectes"`
	InProgressCount int `json:"enCours"`
	CompletedCount  int `json:"traites"`
	LateCount       int `json:"enRetard"`
	CriticalCount   int `json:"critiques"`
}

// Corbeille is the role-scoped basket view over a work item snapshot.
type Corbeille struct {
	Unassigned []ClassifiedItem
	InProgress []ClassifiedItem
	Completed  []ClassifiedItem
	Stats      Stats
}

// Build classifies every item for the profile and buckets the results.
// Lists come back newest-first by reception date; ties keep snapshot order.
// Given the same snapshot and the same now, output is deterministic.
func Build(items []domain.WorkItem, profile RoleProfile, now time.Time, opts Options) Corbeille {
	corbeille := Corbeille{
		Unassigned: []ClassifiedItem{},
		InProgress: []ClassifiedItem{},
		Completed:  []ClassifiedItem{},
	}

	for _, item := range items {
		c := Classify(item, profile, now, opts)
		entry := ClassifiedItem{Item: item, Late: c.Late, Critical: c.Critical}
		switch c.Bucket {
		case BucketUnassigned:
			corbeille.Unassigned = append(corbeille.Unassigned, entry)
		case BucketInProgress:
			corbeille.InProgress = append(corbeille.InProgress, entry)
		case BucketCompleted:
			corbeille.Completed = append(corbeille.Completed, entry)
		default:
			continue
		}
		if c.Late {
			corbeille.Stats.LateCount++
		}
		if c.Critical {
			corbeille.Stats.CriticalCount++
		}
	}

	sortNewestFirst(corbeille.Unassigned)
	sortNewestFirst(corbeille.InProgress)
	sortNewestFirst(corbeille.Completed)

	corbeille.Stats.UnassignedCount = len(corbeille.Unassigned)
	corbeille.Stats.InProgressCount = len(corbeille.InProgress)
	corbeille.Stats.CompletedCount = len(corbeille.Completed)
	return corbeille
}

func sortNewestFirst(entries []ClassifiedItem) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Item.ReceivedAt.After(entries[j].Item.ReceivedAt)
	})
}
