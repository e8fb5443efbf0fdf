package renderer

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"sync"

	"Caustics/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// TextureStats provides debugging and profiling information
type TextureStats struct {
	TotalTextures  int
	CacheHits      int
	CacheMisses    int
	ActiveTextures int
	TotalMemoryMB  float64
}

// TextureManager loads image files into textures and shares them by path.
type TextureManager struct {
	textureCache    map[string]*Texture // path -> texture
	textureRefCount map[string]int      // path -> reference count
	mu              sync.RWMutex
	stats           TextureStats
}

// NewTextureManager creates a new texture manager instance
func NewTextureManager() *TextureManager {
	return &TextureManager{
		textureCache:    make(map[string]*Texture),
		textureRefCount: make(map[string]int),
	}
}

// LoadTexture loads a png or jpeg file or returns the cached texture.
// Automatically increments reference count
func (tm *TextureManager) LoadTexture(filePath string) (*Texture, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tex, exists := tm.textureCache[filePath]; exists {
		tm.textureRefCount[filePath]++
		tm.stats.CacheHits++

		logger.Log.Debug("Texture cache hit",
			zap.String("path", filePath),
			zap.Int("refCount", tm.textureRefCount[filePath]))

		return tex, nil
	}

	tm.stats.CacheMisses++

	imgFile, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening texture %s: %w", filePath, err)
	}
	defer imgFile.Close()

	tex, err := DecodeTexture(imgFile)
	if err != nil {
		return nil, fmt.Errorf("decoding texture %s: %w", filePath, err)
	}

	tm.textureCache[filePath] = tex
	tm.textureRefCount[filePath] = 1
	tm.stats.TotalTextures++
	tm.stats.TotalMemoryMB += float64(len(tex.Pixels)*16) / (1024 * 1024)

	logger.Log.Info("Texture loaded and cached",
		zap.String("path", filePath),
		zap.Int("width", tex.Width),
		zap.Int("height", tex.Height))

	return tex, nil
}

// ReleaseTexture decrements the reference count and drops the texture once
// nothing uses it.
func (tm *TextureManager) ReleaseTexture(filePath string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	refCount, exists := tm.textureRefCount[filePath]
	if !exists {
		logger.Log.Warn("Attempted to release unknown texture", zap.String("path", filePath))
		return
	}
	refCount--
	tm.textureRefCount[filePath] = refCount
	if refCount <= 0 {
		if tex := tm.textureCache[filePath]; tex != nil {
			tm.stats.TotalMemoryMB -= float64(len(tex.Pixels)*16) / (1024 * 1024)
		}
		delete(tm.textureCache, filePath)
		delete(tm.textureRefCount, filePath)
		logger.Log.Debug("Texture freed", zap.String("path", filePath))
	}
}

// GetStats returns current texture manager statistics
func (tm *TextureManager) GetStats() TextureStats {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	stats := tm.stats
	stats.ActiveTextures = len(tm.textureRefCount)
	return stats
}

// DecodeTexture decodes a png or jpeg stream into a texture.
func DecodeTexture(r io.Reader) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return ImageToTexture(img), nil
}

// ImageToTexture converts an image to a texture, flipping rows so that the
// image's bottom line becomes row 0.
func ImageToTexture(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())
	for y := 0; y < tex.Height; y++ {
		srcY := bounds.Min.Y + y
		row := tex.Height - 1 - y
		for x := 0; x < tex.Width; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, srcY).RGBA()
			tex.Pixels[row*tex.Width+x] = mgl32.Vec4{
				float32(r) / 0xffff,
				float32(g) / 0xffff,
				float32(b) / 0xffff,
				float32(a) / 0xffff,
			}
		}
	}
	return tex
}
