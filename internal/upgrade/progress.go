package upgrade

import (
	"maps"

	"SantaClicker/internal/model"
)

// Progress maps upgrade ids to purchased level. Unset ids are level 0.
// Progress is not synchronized; the economy engine guards it.
type Progress struct {
	levels map[model.UpgradeID]int
}

func NewProgress() *Progress {
	return &Progress{levels: make(map[model.UpgradeID]int)}
}

// Level returns the purchased level of id.
func (p *Progress) Level(id model.UpgradeID) int {
	return p.levels[id]
}

// Increment raises the level of id by one and returns the new level.
func (p *Progress) Increment(id model.UpgradeID) int {
	p.levels[id]++
	return p.levels[id]
}

// Levels returns a copy of all non-zero levels.
func (p *Progress) Levels() map[model.UpgradeID]int {
	return maps.Clone(p.levels)
}

// Set overwrites the level of id. Used only when restoring a saved session.
func (p *Progress) Set(id model.UpgradeID, level int) {
	if level <= 0 {
		delete(p.levels, id)
		return
	}
	p.levels[id] = level
}
