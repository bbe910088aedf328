package sessions

import "github.com/bryanwahyu/complaint-analyst/internal/domain/complaints"

// History is an append-only list of completed analyses, newest first.
// There is no eviction; it lives as long as the session.
type History struct {
	items []complaints.HistoryItem // oldest first, iterated in reverse
	index map[complaints.HistoryID]int
}

func NewHistory() *History {
	return &History{index: make(map[complaints.HistoryID]int)}
}

// Prepend adds item as the newest entry. Duplicate ids are rejected.
func (h *History) Prepend(item complaints.HistoryItem) bool {
	if _, exists := h.index[item.ID]; exists {
		return false
	}
	h.index[item.ID] = len(h.items)
	h.items = append(h.items, item)
	return true
}

func (h *History) Get(id complaints.HistoryID) (complaints.HistoryItem, bool) {
	i, ok := h.index[id]
	if !ok {
		return complaints.HistoryItem{}, false
	}
	return h.items[i], true
}

func (h *History) Contains(id complaints.HistoryID) bool {
	_, ok := h.index[id]
	return ok
}

// Items returns a copy, most recent first.
func (h *History) Items() []complaints.HistoryItem {
	out := make([]complaints.HistoryItem, 0, len(h.items))
	for i := len(h.items) - 1; i >= 0; i-- {
		out = append(out, h.items[i])
	}
	return out
}

func (h *History) Len() int { return len(h.items) }
