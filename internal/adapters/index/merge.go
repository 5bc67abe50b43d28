package index

import (
	"container/heap"
	"context"

	"github.com/okian/plaudit/internal/domain/model"
	"github.com/okian/plaudit/internal/domain/tags"
)

// Cursor is the resume point echoed between successive sample requests:
// the last returned entry's sort value and entity key.
type Cursor struct {
	SortValue int64  `json:"sort_value"`
	Website   string `json:"website"`
	Item      string `json:"item"`
}

// Filter selects which featured entries a sample draws from. Required
// tags use AND semantics.
type Filter struct {
	Criteria model.CriteriaType
	Websites []string
	Tags     []string
	Resume   *Cursor // nil means start from the top
}

// Page is one ranked sample. EndOfData marks an exhausted traversal; Next
// is the cursor for the following request while more data remains.
type Page struct {
	Entries   []*FeaturedEntry `json:"entries"`
	EndOfData bool             `json:"end_of_data"`
	Next      *Cursor          `json:"next,omitempty"`
}

// searchList is one sorted source being merged, with its scan cursor and
// the residual tag predicate its candidates must pass.
type searchList struct {
	entries   []*FeaturedEntry
	pos       int
	otherTags []string
}

func (l *searchList) head() *FeaturedEntry {
	return l.entries[l.pos]
}

// settle advances pos to the next candidate passing the residual tag
// filter. Returns false when the list is exhausted.
func (l *searchList) settle() bool {
	for ; l.pos < len(l.entries); l.pos++ {
		if l.matches(l.entries[l.pos]) {
			return true
		}
	}
	return false
}

func (l *searchList) matches(e *FeaturedEntry) bool {
	for _, t := range l.otherTags {
		if !e.HasTag(t) {
			return false
		}
	}
	return true
}

// listHeap orders non-exhausted search lists by their current head, the
// globally earliest-ranked head on top.
type listHeap []*searchList

func (h listHeap) Len() int { return len(h) }
func (h listHeap) Less(i, j int) bool {
	a, b := h[i].head(), h[j].head()
	return rankBefore(a.SortValue, a.Key.Website, a.Key.Item, b)
}
func (h listHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *listHeap) Push(x any) { *h = append(*h, x.(*searchList)) }
func (h *listHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// FeaturedSample merges the filter's sorted source lists into one ranked
// page of at most size entries. The read lock of the criteria family is
// held only for the duration of the merge.
func (x *Index) FeaturedSample(ctx context.Context, f Filter, size int) Page {
	ci := x.byCriteria[f.Criteria]
	ci.mu.RLock()
	defer ci.mu.RUnlock()

	lists := x.searchLists(ci, f)

	h := make(listHeap, 0, len(lists))
	for _, l := range lists {
		if f.Resume != nil {
			l.pos = resumeIndex(l.entries, f.Resume.SortValue, f.Resume.Website, f.Resume.Item)
		}
		if l.settle() {
			h = append(h, l)
		}
	}
	heap.Init(&h)

	page := Page{}
	for len(h) > 0 && len(page.Entries) < size {
		top := h[0]
		page.Entries = append(page.Entries, top.head())
		top.pos++
		if top.settle() {
			heap.Fix(&h, 0)
		} else {
			heap.Pop(&h)
		}
	}

	if len(h) == 0 {
		page.EndOfData = true
	} else if n := len(page.Entries); n > 0 {
		last := page.Entries[n-1]
		page.Next = &Cursor{SortValue: last.SortValue, Website: last.Key.Website, Item: last.Key.Item}
	}
	return page
}

// searchLists builds one sorted source per relevant origin. Without a tag
// filter that is each requested website's full list; with tags, the
// single cheapest tag's sub-lists are scanned and candidates are
// post-filtered against the remaining tags. Caller holds the read lock.
func (x *Index) searchLists(ci *criteriaIndex, f Filter) []*searchList {
	websites := dedupe(f.Websites)

	if len(f.Tags) == 0 {
		out := make([]*searchList, 0, len(websites))
		for _, w := range websites {
			if wi, ok := ci.byWebsite[w]; ok && len(wi.entries) > 0 {
				out = append(out, &searchList{entries: wi.entries})
			}
		}
		return out
	}

	required := make([]string, 0, len(f.Tags))
	for _, t := range f.Tags {
		if normalized := tags.Normalize(t); normalized != "" {
			required = append(required, normalized)
		}
	}
	if len(required) == 0 {
		return nil
	}

	// Scan the tag with the fewest entries across the filter's websites;
	// the rest are cheap membership checks per candidate.
	cheapest := required[0]
	best := -1
	for _, t := range required {
		total := 0
		for _, w := range websites {
			if wi, ok := ci.byWebsite[w]; ok {
				total += len(wi.byTag[t])
			}
		}
		if best == -1 || total < best {
			best = total
			cheapest = t
		}
	}

	var other []string
	for _, t := range required {
		if t != cheapest {
			other = append(other, t)
		}
	}

	out := make([]*searchList, 0, len(websites))
	for _, w := range websites {
		wi, ok := ci.byWebsite[w]
		if !ok {
			continue
		}
		if list := wi.byTag[cheapest]; len(list) > 0 {
			out = append(out, &searchList{entries: list, otherTags: other})
		}
	}
	return out
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
