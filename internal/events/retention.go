package events

import (
	"sort"

	"github.com/ternarybob/pretium/internal/models"
)

// minorEventCap bounds how many minor events survive. Major structural
// signals are never dropped; short-term noise is.
const minorEventCap = 20

// applyRetention keeps all major events, truncates minors to the most
// recent cap by date, and re-sorts the merged set ascending.
func applyRetention(all []models.TechnicalEvent) []models.TechnicalEvent {
	if len(all) == 0 {
		return []models.TechnicalEvent{}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Date < all[j].Date })

	var majors, minors []models.TechnicalEvent
	for _, e := range all {
		if e.Type.IsMajor() {
			majors = append(majors, e)
		} else {
			minors = append(minors, e)
		}
	}

	if len(minors) > minorEventCap {
		minors = minors[len(minors)-minorEventCap:]
	}

	merged := make([]models.TechnicalEvent, 0, len(majors)+len(minors))
	merged = append(merged, majors...)
	merged = append(merged, minors...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Date < merged[j].Date })

	return merged
}
