//go:build windows

package webgpu

import (
	"math/bits"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// maxPooledPerClass bounds the idle buffers kept for one (usage, size) class.
const maxPooledPerClass = 8

// minPooledSize is the smallest size class; requests below it round up.
const minPooledSize = 256

type poolKey struct {
	usage wgpu.BufferUsage
	size  uint64
}

// bufferPool recycles the result and staging buffers of the sampling shader.
// Sizes are rounded up to a power of two so that repeated calls on the same
// image size hit the same class.
type bufferPool struct {
	device *wgpu.Device

	mu   sync.Mutex
	idle map[poolKey][]*wgpu.Buffer

	hits, misses uint64
}

func newBufferPool(device *wgpu.Device) *bufferPool {
	return &bufferPool{device: device, idle: make(map[poolKey][]*wgpu.Buffer)}
}

// sizeClass returns the allocation size for a request of n bytes.
func sizeClass(n uint64) uint64 {
	if n <= minPooledSize {
		return minPooledSize
	}
	return 1 << bits.Len64(n-1)
}

// acquire returns a buffer of at least size bytes. The caller hands it back
// with release, passing the same size and usage.
func (p *bufferPool) acquire(size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
	key := poolKey{usage: usage, size: sizeClass(size)}

	p.mu.Lock()
	if list := p.idle[key]; len(list) > 0 {
		buf := list[len(list)-1]
		p.idle[key] = list[:len(list)-1]
		p.hits++
		p.mu.Unlock()
		return buf
	}
	p.misses++
	p.mu.Unlock()

	return p.device.CreateBuffer(&wgpu.BufferDescriptor{Usage: usage, Size: key.size})
}

func (p *bufferPool) release(buf *wgpu.Buffer, size uint64, usage wgpu.BufferUsage) {
	key := poolKey{usage: usage, size: sizeClass(size)}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.idle[key]) >= maxPooledPerClass {
		buf.Release()
		return
	}
	p.idle[key] = append(p.idle[key], buf)
}

// clear releases every idle buffer.
func (p *bufferPool) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, list := range p.idle {
		for _, buf := range list {
			buf.Release()
		}
		delete(p.idle, key)
	}
}

// stats reports pool hits and misses.
func (p *bufferPool) stats() (hits, misses uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits, p.misses
}
