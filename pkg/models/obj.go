package models

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/softgl/pkg/math3d"
	"github.com/taigrr/softgl/pkg/render"
)

// ErrInvalidOBJ is wrapped by every OBJ parse error.
var ErrInvalidOBJ = errors.New("invalid obj")

// LoadOBJ reads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	render.Logger().Info("model loaded",
		"path", path,
		"format", "obj",
		"vertices", mesh.VertexCount(),
		"faces", mesh.TriangleCount(),
	)
	return mesh, nil
}

// objCorner is one v/vt/vn triple of a face, as zero-based indices or -1.
type objCorner [3]int

// ParseOBJ reads v, vt, vn, f and usemtl statements. Faces with more than
// three corners are fan-triangulated. Every other statement is ignored.
// Corners without a normal get a smooth one computed from the faces
// around them.
func ParseOBJ(r io.Reader, name string) (*Mesh, error) {
	var (
		positions []math3d.Vec3
		uvs       []math3d.Vec2
		normals   []math3d.Vec3
	)

	mesh := NewMesh(name)
	material := -1
	seen := make(map[objCorner]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: vertex: %v", ErrInvalidOBJ, line, err)
			}
			positions = append(positions, math3d.V3(v[0], v[1], v[2]))
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: texture coordinate: %v", ErrInvalidOBJ, line, err)
			}
			uvs = append(uvs, math3d.V2(v[0], v[1]))
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: normal: %v", ErrInvalidOBJ, line, err)
			}
			normals = append(normals, math3d.V3(v[0], v[1], v[2]).Normalize())
		case "usemtl":
			if len(fields) > 1 {
				material = mesh.materialIndex(fields[1])
			}
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs at least 3 corners", ErrInvalidOBJ, line)
			}
			idx := make([]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				c, err := parseCorner(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
				}
				vi, ok := seen[c]
				if !ok {
					vi = len(mesh.Vertices)
					v := MeshVertex{Position: positions[c[0]]}
					if c[1] >= 0 {
						v.UV = uvs[c[1]]
					}
					if c[2] >= 0 {
						v.Normal = normals[c[2]]
					}
					mesh.Vertices = append(mesh.Vertices, v)
					seen[c] = vi
				}
				idx = append(idx, vi)
			}
			for i := 1; i+1 < len(idx); i++ {
				mesh.Faces = append(mesh.Faces, Face{
					V:        [3]int{idx[0], idx[i], idx[i+1]},
					Material: material,
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	mesh.CalculateMissingNormals()
	return mesh, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d components, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// parseCorner parses v, v/vt, v//vn or v/vt/vn.
func parseCorner(tok string, nv, nt, nn int) (objCorner, error) {
	c := objCorner{-1, -1, -1}
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return c, fmt.Errorf("bad face corner %q", tok)
	}
	counts := [3]int{nv, nt, nn}
	for i, p := range parts {
		if p == "" {
			if i == 0 {
				return c, fmt.Errorf("face corner %q has no vertex", tok)
			}
			continue
		}
		ref, err := strconv.Atoi(p)
		if err != nil {
			return c, fmt.Errorf("bad face corner %q: %w", tok, err)
		}
		idx, err := resolveIndex(ref, counts[i])
		if err != nil {
			return c, fmt.Errorf("face corner %q: %w", tok, err)
		}
		c[i] = idx
	}
	return c, nil
}

// resolveIndex turns a 1-based or negative (relative) OBJ reference into a
// zero-based index.
func resolveIndex(ref, count int) (int, error) {
	idx := ref - 1
	if ref < 0 {
		idx = count + ref
	}
	if ref == 0 || idx < 0 || idx >= count {
		return 0, fmt.Errorf("index %d out of range (have %d)", ref, count)
	}
	return idx, nil
}

// CompanionTextures returns the diffuse, normal and specular maps stored
// next to a model as <name>_diffuse.tga, <name>_nm.tga and <name>_spec.tga.
// Missing files come back as empty strings.
func CompanionTextures(modelPath string) (diffuse, normal, specular string) {
	base := strings.TrimSuffix(modelPath, filepath.Ext(modelPath))
	find := func(suffix string) string {
		p := base + suffix
		if _, err := os.Stat(p); err == nil {
			return p
		}
		return ""
	}
	return find("_diffuse.tga"), find("_nm.tga"), find("_spec.tga")
}
