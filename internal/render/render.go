// Package render declares the rendering collaborators the game drives and a
// headless recorder that stands in for a GPU backend.
package render

import (
	"sync"

	"cogentcore.org/core/math32"

	"github.com/cory-johannsen/periphery/internal/game/object"
)

// InstanceBuilder rebuilds per-mesh instance buffers from the active objects.
//
// Precondition: objs is ordered by mesh key.
type InstanceBuilder interface {
	BuildInstancedBuffer(objs []*object.GameObject)
}

// PostProcessor owns full-screen effects.
type PostProcessor interface {
	SetBlurColor(c math32.Vector4)
	AddBlur()
	RemoveBlur()
}

// Instance is one drawn copy of a mesh.
type Instance struct {
	Material string
	World    math32.Matrix4
}

// Batch groups the instances of one mesh.
type Batch struct {
	Mesh      string
	Instances []Instance
}

// Recorder implements InstanceBuilder and PostProcessor in memory.
type Recorder struct {
	mu        sync.Mutex
	batches   []Batch
	builds    int
	blur      bool
	blurColor math32.Vector4
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// BuildInstancedBuffer groups consecutive objects sharing a mesh key into batches.
//
// Postcondition: Batches are in first-seen order; an unsorted input yields
// more than one batch per mesh, as a real instance buffer would.
func (r *Recorder) BuildInstancedBuffer(objs []*object.GameObject) {
	var batches []Batch
	for _, o := range objs {
		if n := len(batches); n == 0 || batches[n-1].Mesh != o.MeshKey {
			batches = append(batches, Batch{Mesh: o.MeshKey})
		}
		b := &batches[len(batches)-1]
		b.Instances = append(b.Instances, Instance{Material: o.MaterialKey, World: *o.WorldMatrix()})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = batches
	r.builds++
}

// Batches returns the most recent build.
func (r *Recorder) Batches() []Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches
}

// Builds returns how many times the buffer was rebuilt.
func (r *Recorder) Builds() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.builds
}

// SetBlurColor sets the blur tint.
func (r *Recorder) SetBlurColor(c math32.Vector4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blurColor = c
}

// AddBlur enables the blur pass.
func (r *Recorder) AddBlur() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blur = true
}

// RemoveBlur disables the blur pass.
func (r *Recorder) RemoveBlur() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blur = false
}

// Blur reports whether blur is on and its colour.
func (r *Recorder) Blur() (bool, math32.Vector4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blur, r.blurColor
}
