package domain

// Presentation headlines.
const (
	HeadlineChecking = "Checking"
	HeadlineUpdated  = "Yes, there are new arrivals today."
	HeadlineNoUpdate = "No new arrivals today."
)

// Snapshot is the state handed to presentation layers.
// It is rebuilt by every reconcile cycle and never persisted.
type Snapshot struct {
	// Fetching is true while a cycle is running.
	Fetching bool `json:"fetching"`

	// UpdateToday is true when today's batch holds items.
	UpdateToday bool `json:"updateToday"`

	// Recents are the most recent items, newest first.
	Recents []RecentItem `json:"recents"`
}

// Headline returns the status line shown above the recents list.
func (s Snapshot) Headline() string {
	switch {
	case s.Fetching:
		return HeadlineChecking
	case s.UpdateToday:
		return HeadlineUpdated
	default:
		return HeadlineNoUpdate
	}
}

// Clone returns a copy that shares no slices with s.
func (s Snapshot) Clone() Snapshot {
	s.Recents = cloneItems(s.Recents)
	return s
}
