// Package shape matches tag trees against known historical data shapes and
// strips the matched parts.
package shape

import "datafixer.ai/internal/nbt"

const (
	eioKey      = "eiocap"
	eioLevelKey = "level"
	displayKey  = "display"
	nameKey     = "Name"
	loreKey     = "Lore"
)

// Capacitor is the tag data old custom capacitors were written with: a
// capacitor level, a display name and lore lines.
type Capacitor struct {
	Level float32
	Name  string
	Lore  []string
}

func NewCapacitor(level float32, name string, lore ...string) Capacitor {
	return Capacitor{Level: level, Name: name, Lore: append([]string(nil), lore...)}
}

// NeedsChange reports whether tag carries any part of the shape: the level,
// the exact name, or exactly the lore lines.
func (c Capacitor) NeedsChange(tag *nbt.Compound) bool {
	if tag.Empty() {
		return false
	}
	return c.testLevel(tag) || c.testName(tag) || c.testLore(tag)
}

// Remove strips the matching parts from tag in place, dropping compounds that
// become empty. It returns nil when nothing is left. Calling it on a tag that
// does not match leaves the tag unchanged.
func (c Capacitor) Remove(tag *nbt.Compound) *nbt.Compound {
	if tag.Empty() {
		return nil
	}
	c.removeLevel(tag)
	c.removeDisplay(tag)
	if tag.Empty() {
		return nil
	}
	return tag
}

func (c Capacitor) testLevel(tag *nbt.Compound) bool {
	if !tag.HasKey(eioKey, nbt.TypeCompound) {
		return false
	}
	eio := tag.GetCompound(eioKey)
	if !eio.HasKey(eioLevelKey, nbt.TypeFloat) {
		return false
	}
	return eio.GetFloat(eioLevelKey) == c.Level
}

func (c Capacitor) removeLevel(tag *nbt.Compound) {
	if !c.testLevel(tag) {
		return
	}
	eio := tag.GetCompound(eioKey)
	eio.Remove(eioLevelKey)
	if eio.Empty() {
		tag.Remove(eioKey)
	}
}

func (c Capacitor) testName(tag *nbt.Compound) bool {
	if !tag.HasKey(displayKey, nbt.TypeCompound) {
		return false
	}
	display := tag.GetCompound(displayKey)
	if !display.HasKey(nameKey, nbt.TypeString) {
		return false
	}
	return display.GetString(nameKey) == c.Name
}

// testLore is exact: same length, same line at every index.
func (c Capacitor) testLore(tag *nbt.Compound) bool {
	if !tag.HasKey(displayKey, nbt.TypeCompound) {
		return false
	}
	display := tag.GetCompound(displayKey)
	if !display.HasKey(loreKey, nbt.TypeList) {
		return false
	}
	raw, _ := display.Get(loreKey)
	list, _ := raw.(nbt.List)
	lines, ok := list.Strings()
	if !ok || len(lines) != len(c.Lore) {
		return false
	}
	for i := range lines {
		if lines[i] != c.Lore[i] {
			return false
		}
	}
	return true
}

func (c Capacitor) removeDisplay(tag *nbt.Compound) {
	if !tag.HasKey(displayKey, nbt.TypeCompound) {
		return
	}
	nameMatch, loreMatch := c.testName(tag), c.testLore(tag)
	display := tag.GetCompound(displayKey)
	if nameMatch {
		display.Remove(nameKey)
	}
	if loreMatch {
		display.Remove(loreKey)
	}
	if display.Empty() {
		tag.Remove(displayKey)
	}
}
