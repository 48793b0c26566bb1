package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RecentsQuota is the maximum number of items kept in History.Recents.
const RecentsQuota = 5

// DatedBatch holds every item first seen on one UTC calendar day.
// Items are in discovery order.
type DatedBatch struct {
	// Date is the UTC day in YYYYMMDD form.
	Date string `json:"date"`

	// Items are the items first seen on Date.
	Items []RecentItem `json:"plants"`
}

// History is the persisted record of discovered items.
//
// The JSON keys are shared with documents written by earlier releases
// and must not change.
type History struct {
	// Batches are ordered newest first.
	Batches []DatedBatch `json:"allPlants"`

	// Recents is the cached list of at most RecentsQuota recent items.
	Recents []RecentItem `json:"recents"`
}

// IDIndex is the set of item IDs already recorded in a history.
type IDIndex map[string]struct{}

// Has reports whether id is in the index.
func (idx IDIndex) Has(id string) bool {
	_, ok := idx[id]
	return ok
}

// Index returns every item ID recorded in the history's batches.
// An empty history yields an empty index.
func (h *History) Index() IDIndex {
	idx := make(IDIndex)
	for _, batch := range h.Batches {
		for _, item := range batch.Items {
			idx[item.ID] = struct{}{}
		}
	}
	return idx
}

// NewBatch returns the catalog items whose IDs are missing from idx,
// projected to RecentItem and dated date. Catalog order is preserved and
// an ID listed twice in the catalog is kept once.
func NewBatch(catalog []CatalogItem, idx IDIndex, date string) DatedBatch {
	batch := DatedBatch{Date: date, Items: []RecentItem{}}
	seen := make(map[string]struct{})
	for _, item := range catalog {
		if idx.Has(item.ID) {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		batch.Items = append(batch.Items, item.Recent())
	}
	return batch
}

// Flatten returns every item in every batch, in batch order and then
// item order. A batch without a date means the document is corrupt.
func (h *History) Flatten() ([]RecentItem, error) {
	var items []RecentItem
	for i, batch := range h.Batches {
		if batch.Date == "" {
			return nil, fmt.Errorf("%w: batch %d has no date", ErrMalformedHistory, i)
		}
		items = append(items, batch.Items...)
	}
	return items, nil
}

// SelectRecents picks up to RecentsQuota items, newest first, by draining
// three sources in order: the new batch, the stored recents, then the
// flattened history. An item whose ID was already picked is skipped and
// does not count toward the quota.
//
// h is only read. The flattened history is built the first time the
// third source is reached.
func SelectRecents(h *History, batch DatedBatch) ([]RecentItem, error) {
	out := make([]RecentItem, 0, RecentsQuota)
	seen := make(map[string]struct{}, RecentsQuota)
	take := func(item RecentItem) {
		if _, dup := seen[item.ID]; dup {
			return
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}

	var (
		flat      []RecentItem
		flattened bool
		newPos    int
		recentPos int
		flatPos   int
	)
	for len(out) < RecentsQuota {
		switch {
		case newPos < len(batch.Items):
			take(batch.Items[newPos])
			newPos++
		case recentPos < len(h.Recents):
			take(h.Recents[recentPos])
			recentPos++
		default:
			if !flattened {
				var err error
				if flat, err = h.Flatten(); err != nil {
					return nil, err
				}
				flattened = true
			}
			if flatPos >= len(flat) {
				return out, nil
			}
			take(flat[flatPos])
			flatPos++
		}
	}
	return out, nil
}

// Merge folds batch into the history and reports whether there was an
// update today.
//
// If a batch with the same date already exists the new items are put in
// front of its items. Otherwise a non-empty batch becomes the newest
// batch. In both cases Recents is recomputed first. An empty batch on a
// new day leaves the history untouched.
//
// Merge modifies the receiver; the caller hands over ownership of the
// history and must not keep aliases to its slices.
func (h *History) Merge(batch DatedBatch) (bool, error) {
	today := h.batchIndex(batch.Date)
	if today < 0 && len(batch.Items) == 0 {
		return false, nil
	}

	recents, err := SelectRecents(h, batch)
	if err != nil {
		return false, err
	}
	h.Recents = recents

	if today >= 0 {
		existing := h.Batches[today].Items
		items := make([]RecentItem, 0, len(batch.Items)+len(existing))
		items = append(items, batch.Items...)
		h.Batches[today].Items = append(items, existing...)
		return true, nil
	}

	batches := make([]DatedBatch, 0, len(h.Batches)+1)
	batches = append(batches, DatedBatch{Date: batch.Date, Items: cloneItems(batch.Items)})
	h.Batches = append(batches, h.Batches...)
	return true, nil
}

// Latest returns the newest batch, or nil for an empty history.
func (h *History) Latest() *DatedBatch {
	if len(h.Batches) == 0 {
		return nil
	}
	return &h.Batches[0]
}

// UpdatedOn reports whether the newest batch is dated date.
func (h *History) UpdatedOn(date string) bool {
	latest := h.Latest()
	return latest != nil && latest.Date == date
}

// ItemCount returns the number of items across all batches.
func (h *History) ItemCount() int {
	n := 0
	for _, batch := range h.Batches {
		n += len(batch.Items)
	}
	return n
}

// Clone returns a deep copy of the history.
func (h *History) Clone() History {
	out := History{Recents: cloneItems(h.Recents)}
	if h.Batches != nil {
		out.Batches = make([]DatedBatch, len(h.Batches))
		for i, batch := range h.Batches {
			out.Batches[i] = DatedBatch{Date: batch.Date, Items: cloneItems(batch.Items)}
		}
	}
	return out
}

// Encode renders the history in its stored JSON form.
// Empty collections are written as [] and HTML characters are not
// escaped, so an unchanged history always encodes to the same bytes.
func (h *History) Encode() ([]byte, error) {
	wire := History{
		Batches: make([]DatedBatch, len(h.Batches)),
		Recents: h.Recents,
	}
	if wire.Recents == nil {
		wire.Recents = []RecentItem{}
	}
	for i, batch := range h.Batches {
		if batch.Items == nil {
			batch.Items = []RecentItem{}
		}
		wire.Batches[i] = batch
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(wire); err != nil {
		return nil, fmt.Errorf("encoding history: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// DecodeHistory parses a stored history document.
// Blank input decodes to an empty history.
func DecodeHistory(data []byte) (*History, error) {
	h := &History{}
	if len(bytes.TrimSpace(data)) == 0 {
		return h, nil
	}
	if err := json.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedHistory, err)
	}
	return h, nil
}

func (h *History) batchIndex(date string) int {
	for i := range h.Batches {
		if h.Batches[i].Date == date {
			return i
		}
	}
	return -1
}
