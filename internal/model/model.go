package model

import "time"

// Block is one card of the document tree. Parent is referenced by id only; the
// tree owns blocks, nothing else does.
type Block struct {
	ID       string  `json:"id"`
	ParentID *string `json:"parentId,omitempty"`
	Rank     string  `json:"rank,omitempty"`
	Category string  `json:"category,omitempty"`
	Content  string  `json:"content"`

	UpdatedAt time.Time `json:"updatedAt"`
}

func (b Block) Parent() string {
	if b.ParentID == nil {
		return ""
	}
	return *b.ParentID
}

// ParentGroup is a run of siblings inside a column that share one parent.
type ParentGroup struct {
	ParentID string  `json:"parentId,omitempty"`
	Blocks   []Block `json:"blocks"`
}

// Column is one depth level of the tree: column 0 holds the root cards, column N
// the children of column N-1, grouped by parent in parent order.
type Column struct {
	Index  int           `json:"index"`
	Groups []ParentGroup `json:"groups"`
}

// Blocks returns the column's blocks flattened in display order.
func (c Column) Blocks() []Block {
	n := 0
	for _, g := range c.Groups {
		n += len(g.Blocks)
	}
	out := make([]Block, 0, n)
	for _, g := range c.Groups {
		out = append(out, g.Blocks...)
	}
	return out
}

// IndexOf returns the display index of id within the column.
func (c Column) IndexOf(id string) int {
	i := 0
	for _, g := range c.Groups {
		for _, b := range g.Blocks {
			if b.ID == id {
				return i
			}
			i++
		}
	}
	return -1
}

// Snapshot is a full capture of document content keyed by block id.
type Snapshot struct {
	ID      string            `json:"id,omitempty"`
	TakenAt time.Time         `json:"takenAt"`
	Reason  string            `json:"reason,omitempty"`
	Blocks  map[string]string `json:"blocks"`
}

// Content returns the captured content for id.
func (s Snapshot) Content(id string) (string, bool) {
	if s.Blocks == nil {
		return "", false
	}
	c, ok := s.Blocks[id]
	return c, ok
}
