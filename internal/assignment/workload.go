package assignment

import (
	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
)

// WorkloadIndex maps officer id to the number of open complaints assigned to them.
// It is a per-batch snapshot; the batch increments it as it assigns.
type WorkloadIndex map[string]int

// NewWorkloadIndex seeds every officer with the persisted open count, defaulting to zero.
func NewWorkloadIndex(officers []domain.User, openCounts map[string]int) WorkloadIndex {
	idx := make(WorkloadIndex, len(officers))
	for _, officer := range officers {
		idx[officer.ID] = openCounts[officer.ID]
	}
	return idx
}

// Load returns the current count for an officer.
func (w WorkloadIndex) Load(officerID string) int {
	return w[officerID]
}

// Increment records one more open complaint for the officer.
func (w WorkloadIndex) Increment(officerID string) {
	w[officerID]++
}
