package workflow

import (
	"time"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

// Bucket labels the corbeille a work item falls into for a given role.
type Bucket string

const (
	BucketExcluded   Bucket = "excluded"
	BucketUnassigned Bucket = "unassigned"
	BucketInProgress Bucket = "in_progress"
	BucketCompleted  Bucket = "completed"
)

// Classification is the classifier verdict for one item. Late and Critical
// are orthogonal flags; they are never set on excluded or completed items.
type Classification struct {
	Bucket   Bucket
	Late     bool
	Critical bool
}

// Options tunes lateness derivation. CriticalMultiplier scales the SLA
// window for the severity escalation: an item is critical once its age
// exceeds CriticalMultiplier times the reception-to-deadline window.
type Options struct {
	CriticalMultiplier float64
}

// DefaultOptions mirror the shipped configuration defaults.
func DefaultOptions() Options {
	return Options{CriticalMultiplier: 2.0}
}

// Classify maps a work item to exactly one bucket from the perspective of
// the given role profile. Pure; safe for concurrent use.
//
// Order matters: archived wins over everything, an unrecognized status hides
// the item from the role entirely, and a missing assignee forces unassigned
// before the terminal set is consulted.
func Classify(item domain.WorkItem, profile RoleProfile, now time.Time, opts Options) Classification {
	if item.Archived {
		return Classification{Bucket: BucketExcluded}
	}
	if !profile.Visible(item.Status) {
		return Classification{Bucket: BucketExcluded}
	}

	terminal := profile.Terminal(item.Status)
	late := !terminal && !item.DueAt.IsZero() && now.After(item.DueAt)
	critical := false
	if late {
		window := item.DueAt.Sub(item.ReceivedAt)
		if window > 0 && opts.CriticalMultiplier > 0 {
			criticalAt := item.ReceivedAt.Add(time.Duration(float64(window) * opts.CriticalMultiplier))
			critical = now.After(criticalAt)
		}
	}

	if item.AssignedUserID == nil {
		return Classification{Bucket: BucketUnassigned, Late: late, Critical: critical}
	}
	if terminal {
		return Classification{Bucket: BucketCompleted}
	}
	return Classification{Bucket: BucketInProgress, Late: late, Critical: critical}
}
