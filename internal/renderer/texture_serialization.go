package renderer

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
)

const textureMagic = 0x54455846 // "TEXF"

// TextureInfo describes a raw texture dump for tools that read it back.
type TextureInfo struct {
	Name     string     `json:"name"`
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	Channels []string   `json:"channels"`
	Min      [4]float32 `json:"min"`
	Max      [4]float32 `json:"max"`
}

// DescribeTexture summarises the value range of each channel.
func DescribeTexture(name string, tex *Texture, channels []string) TextureInfo {
	info := TextureInfo{Name: name, Width: tex.Width, Height: tex.Height, Channels: channels}
	for i, p := range tex.Pixels {
		for c := 0; c < 4; c++ {
			if i == 0 || p[c] < info.Min[c] {
				info.Min[c] = p[c]
			}
			if i == 0 || p[c] > info.Max[c] {
				info.Max[c] = p[c]
			}
		}
	}
	return info
}

// MarshalTextureInfo encodes the description as indented JSON.
func MarshalTextureInfo(info TextureInfo) ([]byte, error) {
	return json.MarshalIndent(info, "", "  ")
}

// EncodeTextureBinary writes a float texture as gzip compressed little endian
// data: magic, version, width, height, then width*height RGBA float32 texels.
func EncodeTextureBinary(tex *Texture) ([]byte, error) {
	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)

	header := []uint32{textureMagic, 1, uint32(tex.Width), uint32(tex.Height)}
	if err := binary.Write(gzWriter, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	if err := writeTexels(gzWriter, tex.Pixels); err != nil {
		return nil, err
	}
	if err := gzWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeTextureBinary reads data produced by EncodeTextureBinary.
func DecodeTextureBinary(data []byte) (*Texture, error) {
	gzReader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzReader.Close()

	var header [4]uint32
	if err := binary.Read(gzReader, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("reading texture header: %w", err)
	}
	if header[0] != textureMagic {
		return nil, fmt.Errorf("invalid texture file magic: %x", header[0])
	}
	if header[1] != 1 {
		return nil, fmt.Errorf("unsupported texture version: %d", header[1])
	}
	width, height := int(header[2]), int(header[3])
	if width <= 0 || height <= 0 || width*height > 1<<26 {
		return nil, fmt.Errorf("invalid texture size %dx%d", width, height)
	}

	tex := NewTexture(width, height)
	if err := readTexels(gzReader, tex.Pixels); err != nil {
		return nil, fmt.Errorf("reading texels: %w", err)
	}
	return tex, nil
}

func writeTexels(w io.Writer, texels []mgl32.Vec4) error {
	flat := make([]float32, 0, len(texels)*4)
	for _, p := range texels {
		flat = append(flat, p[0], p[1], p[2], p[3])
	}
	return binary.Write(w, binary.LittleEndian, flat)
}

func readTexels(r io.Reader, texels []mgl32.Vec4) error {
	flat := make([]float32, len(texels)*4)
	if err := binary.Read(r, binary.LittleEndian, flat); err != nil {
		return err
	}
	for i := range texels {
		texels[i] = mgl32.Vec4{flat[i*4], flat[i*4+1], flat[i*4+2], flat[i*4+3]}
	}
	return nil
}
