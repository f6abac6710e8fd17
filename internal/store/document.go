package store

import (
	"errors"
	"sort"
	"strings"
	"time"

	"cardwrite/internal/model"
)

// Document is the in-memory card tree. It is not safe for concurrent use; the
// TUI owns it on its event loop and the CLI uses it for one command.
type Document struct {
	Title string

	blocks map[string]*model.Block
	now    func() time.Time
}

func NewDocument(title string, blocks []model.Block) *Document {
	d := &Document{
		Title:  title,
		blocks: make(map[string]*model.Block, len(blocks)),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for i := range blocks {
		b := blocks[i]
		b.Content = model.NormalizeContent(b.Content)
		d.blocks[b.ID] = &b
	}
	d.repairRanks()
	return d
}

// repairRanks renumbers every sibling group holding an empty or duplicate
// rank, keeping the group's current order.
func (d *Document) repairRanks() {
	parents := map[string]bool{}
	for _, b := range d.blocks {
		parents[b.Parent()] = true
	}
	for p := range parents {
		seen := map[string]bool{}
		for _, b := range d.children(p) {
			r := normalizeRank(b.Rank)
			if r == "" || seen[r] {
				d.rebalance(p)
				break
			}
			seen[r] = true
		}
	}
}

func (d *Document) Len() int { return len(d.blocks) }

func (d *Document) FindBlock(id string) (model.Block, bool) {
	b, ok := d.blocks[id]
	if !ok {
		return model.Block{}, false
	}
	return *b, true
}

// children returns the children of parentID ("" for roots) in rank order.
func (d *Document) children(parentID string) []model.Block {
	var out []model.Block
	for _, b := range d.blocks {
		if b.Parent() == parentID {
			out = append(out, *b)
		}
	}
	sortSiblings(out)
	return out
}

func sortSiblings(bs []model.Block) {
	sort.SliceStable(bs, func(i, j int) bool {
		ri, rj := normalizeRank(bs[i].Rank), normalizeRank(bs[j].Rank)
		if ri != rj {
			return ri < rj
		}
		return bs[i].ID < bs[j].ID
	})
}

func (d *Document) RootBlocks() []model.Block { return d.children("") }

// Children returns the children of id in rank order.
func (d *Document) Children(id string) []model.Block { return d.children(id) }

// ColumnsWithParents lays the tree out in columns: column 0 holds the roots,
// column N the children of column N-1's cards, grouped by parent in the
// parent column's display order. Orphans (missing parent) are not shown.
func (d *Document) ColumnsWithParents() []model.Column {
	roots := d.RootBlocks()
	if len(roots) == 0 {
		return nil
	}
	cols := []model.Column{{Index: 0, Groups: []model.ParentGroup{{Blocks: roots}}}}
	prev := roots
	for idx := 1; ; idx++ {
		var groups []model.ParentGroup
		var next []model.Block
		for _, p := range prev {
			kids := d.children(p.ID)
			if len(kids) == 0 {
				continue
			}
			groups = append(groups, model.ParentGroup{ParentID: p.ID, Blocks: kids})
			next = append(next, kids...)
		}
		if len(groups) == 0 {
			return cols
		}
		cols = append(cols, model.Column{Index: idx, Groups: groups})
		prev = next
	}
}

// Blocks returns every card in column display order.
func (d *Document) Blocks() []model.Block {
	var out []model.Block
	for _, c := range d.ColumnsWithParents() {
		out = append(out, c.Blocks()...)
	}
	return out
}

// UpdateContent replaces the text of a card. It reports whether the card
// exists.
func (d *Document) UpdateContent(id, content string) bool {
	b, ok := d.blocks[id]
	if !ok {
		return false
	}
	content = model.NormalizeContent(content)
	if b.Content != content {
		b.Content = content
		b.UpdatedAt = d.now()
	}
	return true
}

func (d *Document) SetCategory(id, category string) error {
	b, ok := d.blocks[id]
	if !ok {
		return errNotFound("card", id)
	}
	b.Category = strings.TrimSpace(category)
	b.UpdatedAt = d.now()
	return nil
}

// AddBlock appends a card as the last child of parentID ("" for a root card).
func (d *Document) AddBlock(parentID, content string) (model.Block, error) {
	parentID = strings.TrimSpace(parentID)
	if parentID != "" {
		if _, ok := d.blocks[parentID]; !ok {
			return model.Block{}, errNotFound("card", parentID)
		}
	}
	last := ""
	if sibs := d.children(parentID); len(sibs) > 0 {
		last = sibs[len(sibs)-1].Rank
	}
	return d.insert(parentID, content, last, "")
}

// InsertSibling creates an empty card directly above or below id.
func (d *Document) InsertSibling(id string, above bool) (model.Block, error) {
	b, ok := d.blocks[id]
	if !ok {
		return model.Block{}, errNotFound("card", id)
	}
	parent := b.Parent()
	sibs := d.children(parent)
	at := -1
	for i := range sibs {
		if sibs[i].ID == id {
			at = i
			break
		}
	}
	lo, hi := b.Rank, ""
	if above {
		lo, hi = "", b.Rank
		if at > 0 {
			lo = sibs[at-1].Rank
		}
	} else if at+1 < len(sibs) {
		hi = sibs[at+1].Rank
	}
	nb, err := d.insert(parent, "", lo, hi)
	if errors.Is(err, ErrNoSpace) {
		d.rebalance(parent)
		return d.InsertSibling(id, above)
	}
	return nb, err
}

func (d *Document) insert(parentID, content, lo, hi string) (model.Block, error) {
	rank, err := RankBetween(lo, hi)
	if err != nil {
		if errors.Is(err, ErrNoSpace) || normalizeRank(lo) >= normalizeRank(hi) {
			return model.Block{}, ErrNoSpace
		}
		return model.Block{}, err
	}
	id, err := newUniqueID(cardIDPrefix, func(id string) bool {
		_, taken := d.blocks[id]
		return taken
	})
	if err != nil {
		return model.Block{}, err
	}
	b := model.Block{ID: id, Rank: rank, Content: model.NormalizeContent(content), UpdatedAt: d.now()}
	if parentID != "" {
		p := parentID
		b.ParentID = &p
	}
	d.blocks[id] = &b
	return b, nil
}

// rebalance renumbers the children of parentID with evenly spaced ranks.
func (d *Document) rebalance(parentID string) {
	sibs := d.children(parentID)
	for i, r := range spreadRanks(len(sibs)) {
		d.blocks[sibs[i].ID].Rank = r
	}
}

// Delete removes id and its whole subtree.
func (d *Document) Delete(id string) error {
	if _, ok := d.blocks[id]; !ok {
		return errNotFound("card", id)
	}
	for _, k := range d.children(id) {
		if err := d.Delete(k.ID); err != nil {
			return err
		}
	}
	delete(d.blocks, id)
	return nil
}

// Resolve finds a card by exact id or unique id prefix.
func (d *Document) Resolve(ref string) (model.Block, error) {
	ref = strings.TrimSpace(ref)
	if b, ok := d.FindBlock(ref); ok {
		return b, nil
	}
	var match *model.Block
	for _, b := range d.blocks {
		if strings.HasPrefix(b.ID, ref) || strings.HasPrefix(b.ID, cardIDPrefix+"-"+ref) {
			if match != nil {
				return model.Block{}, errors.New("ambiguous card id: " + ref)
			}
			match = b
		}
	}
	if match == nil || ref == "" {
		return model.Block{}, errNotFound("card", ref)
	}
	return *match, nil
}

// Contents returns id -> content for every card.
func (d *Document) Contents() map[string]string {
	out := make(map[string]string, len(d.blocks))
	for id, b := range d.blocks {
		out[id] = b.Content
	}
	return out
}

// Restore applies a snapshot's contents to the cards that still exist. It
// reports how many cards changed.
func (d *Document) Restore(s model.Snapshot) int {
	n := 0
	for id, c := range s.Blocks {
		if b, ok := d.blocks[id]; ok && b.Content != c {
			b.Content = c
			b.UpdatedAt = d.now()
			n++
		}
	}
	return n
}
