package tile

import "iter"

// Memory is a tile held in memory.
type Memory struct {
	layers []*MemoryLayer
}

// NewMemory creates a tile from layers.
func NewMemory(layers ...*MemoryLayer) *Memory {
	return &Memory{layers: layers}
}

// Add appends a layer.
func (m *Memory) Add(l *MemoryLayer) *Memory {
	m.layers = append(m.layers, l)
	return m
}

// Layers iterates over the layers in order. It never yields an error.
func (m *Memory) Layers() iter.Seq2[Layer, error] {
	return func(yield func(Layer, error) bool) {
		for _, l := range m.layers {
			if !yield(l, nil) {
				return
			}
		}
	}
}

// MemoryLayer is a layer held in memory.
type MemoryLayer struct {
	LayerName string
	Size      int // extent, DefaultExtent if 0
	Items     []*Feature
}

// NewMemoryLayer creates a layer with the default extent.
func NewMemoryLayer(name string, features ...*Feature) *MemoryLayer {
	return &MemoryLayer{LayerName: name, Items: features}
}

// Name of the layer.
func (ml *MemoryLayer) Name() string {
	return ml.LayerName
}

// Extent of the layer.
func (ml *MemoryLayer) Extent() int {
	if ml.Size <= 0 {
		return DefaultExtent
	}
	return ml.Size
}

// Features iterates over the features in order.
func (ml *MemoryLayer) Features() iter.Seq2[*Feature, error] {
	return func(yield func(*Feature, error) bool) {
		for _, f := range ml.Items {
			if !yield(f, nil) {
				return
			}
		}
	}
}
