package orchestrator

import (
	"fmt"

	"fortio.org/safecast"

	"lpcfmt/internal/format"
	"lpcfmt/internal/source"
	"lpcfmt/internal/tree"
)

// selection formats the top-level items overlapping a byte range and copies
// the others verbatim.
type selection struct {
	start, end uint32
	file       *source.File
}

func newSelection(req *format.Request) (*selection, error) {
	sel := req.Selection
	if sel == nil || sel.Start < 0 || sel.End < sel.Start || sel.End > len(req.Text) {
		return nil, fmt.Errorf("%w: selection %v outside text of %d bytes", ErrInvalidRequest, sel, len(req.Text))
	}
	start, err := safecast.Conv[uint32](sel.Start)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	end, err := safecast.Conv[uint32](sel.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return &selection{start: start, end: end, file: req.File}, nil
}

func (s *selection) Before(item *tree.Node) (string, bool) {
	// An empty range is a caret and selects the item it sits in.
	if item.Span().Overlaps(s.start, s.end) {
		return "", false
	}
	return format.VerbatimText(item, s.file), true
}

func (s *selection) After(*tree.Node, string) {}

// itemMemo serves unchanged top-level items of an incremental request from
// the result cache.
type itemMemo struct {
	o    *Orchestrator
	c    *call
	pref string
}

func (m *itemMemo) key(item *tree.Node) string {
	if m.pref == "" {
		oh, err := optionsHash(m.c.req.Options)
		if err != nil {
			oh = "noopts"
		}
		m.pref = "item:" + oh + "-" + m.c.fctx.StrategyID + "-"
	}
	return m.pref + hash([]byte(format.VerbatimText(item, m.c.req.File)))
}

func (m *itemMemo) Before(item *tree.Node) (string, bool) {
	text, ok := m.o.cache.Get(m.key(item))
	if ok {
		m.o.monitor.RecordCacheHit(itemCacheType)
		m.c.stats.CacheHits++
		return text, true
	}
	m.o.monitor.RecordCacheMiss(itemCacheType)
	m.c.stats.CacheMisses++
	return "", false
}

func (m *itemMemo) After(item *tree.Node, text string) {
	m.o.cache.Set(m.key(item), text)
}
