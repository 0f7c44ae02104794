package playback

import (
	"slices"

	"github.com/milk9111/animengine/clip"
)

// ClipIndex groups clips by layer, by name and by the targets they animate.
// It is a projection of the engine's clip list and is only ever rebuilt
// wholesale from it.
type ClipIndex struct {
	clips    []*clip.Clip
	layers   []string
	byLayer  map[string][]*clip.Clip
	byName   map[string][]*clip.Clip
	byTarget map[clip.Ref][]*clip.Clip

	bulk     int
	stale    bool
	rebuilds int
}

func NewClipIndex() *ClipIndex {
	return &ClipIndex{
		byLayer:  map[string][]*clip.Clip{},
		byName:   map[string][]*clip.Clip{},
		byTarget: map[clip.Ref][]*clip.Clip{},
	}
}

// Rebuild replaces the projection with one built from clips. During a bulk
// update the work is deferred to EndBulkUpdate.
func (x *ClipIndex) Rebuild(clips []*clip.Clip) {
	x.clips = slices.Clone(clips)
	if x.bulk > 0 {
		x.stale = true
		return
	}
	x.build()
}

func (x *ClipIndex) build() {
	x.stale = false
	x.rebuilds++
	x.layers = x.layers[:0]
	clear(x.byLayer)
	clear(x.byName)
	clear(x.byTarget)
	for _, c := range x.clips {
		if _, ok := x.byLayer[c.Layer()]; !ok {
			x.layers = append(x.layers, c.Layer())
		}
		x.byLayer[c.Layer()] = append(x.byLayer[c.Layer()], c)
		x.byName[c.Name()] = append(x.byName[c.Name()], c)
		for _, t := range c.Targets() {
			x.byTarget[t.Ref()] = append(x.byTarget[t.Ref()], c)
		}
	}
}

// BeginBulkUpdate suspends rebuilds until the matching EndBulkUpdate.
// Calls nest.
func (x *ClipIndex) BeginBulkUpdate() {
	x.bulk++
}

// EndBulkUpdate closes a bulk update and rebuilds once if anything changed.
func (x *ClipIndex) EndBulkUpdate() {
	if x.bulk == 0 {
		return
	}
	x.bulk--
	if x.bulk == 0 && x.stale {
		x.build()
	}
}

// Rebuilds returns how many times the projection was built.
func (x *ClipIndex) Rebuilds() int {
	return x.rebuilds
}

// Layers returns layer names in first-seen order.
func (x *ClipIndex) Layers() []string {
	return slices.Clone(x.layers)
}

func (x *ClipIndex) ByLayer(layer string) []*clip.Clip {
	return slices.Clone(x.byLayer[layer])
}

// ByName returns every clip with the name, across layers.
func (x *ClipIndex) ByName(name string) []*clip.Clip {
	return slices.Clone(x.byName[name])
}

// ByTarget returns the clips animating ref.
func (x *ClipIndex) ByTarget(ref clip.Ref) []*clip.Clip {
	return slices.Clone(x.byTarget[ref])
}

// Names returns the qualified names of every indexed clip.
func (x *ClipIndex) Names() []string {
	names := make([]string, 0, len(x.clips))
	for _, c := range x.clips {
		names = append(names, c.QualifiedName())
	}
	return names
}
