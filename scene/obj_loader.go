package scene

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// objFace is an already-triangulated face (three vertex references).
type objFace struct {
	vIdx, vtIdx, vnIdx [3]int // 0-based position / UV / normal indices (-1 = absent)
}

type objObject struct {
	name    string
	matName string
	faces   []objFace
}

// LoadOBJ parses a Wavefront .obj file and returns one Mesh per object/group.
// A companion .mtl file is loaded automatically if referenced via "mtllib".
func LoadOBJ(path string) ([]*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	meshes, err := ParseOBJ(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("obj %q: %w", path, err)
	}
	return meshes, nil
}

// ParseOBJ reads OBJ text from r. dir resolves mtllib and texture paths.
func ParseOBJ(r io.Reader, dir string) ([]*Mesh, error) {
	var (
		positions []mgl32.Vec3
		normals   []mgl32.Vec3
		uvs       []mgl32.Vec2
		objects   []objObject
	)
	materials := map[string]*Material{}
	cur := &objObject{name: "default"}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			if len(fields) >= 4 {
				positions = append(positions, parseVec3(fields[1:4]))
			}

		case "vn":
			if len(fields) >= 4 {
				normals = append(normals, parseVec3(fields[1:4]))
			}

		case "vt":
			if len(fields) >= 3 {
				u, _ := strconv.ParseFloat(fields[1], 32)
				v, _ := strconv.ParseFloat(fields[2], 32)
				uvs = append(uvs, mgl32.Vec2{float32(u), float32(v)})
			}

		case "o", "g":
			if len(cur.faces) > 0 {
				objects = append(objects, *cur)
			}
			name := "default"
			if len(fields) > 1 {
				name = fields[1]
			}
			cur = &objObject{name: name, matName: cur.matName}

		case "usemtl":
			if len(fields) > 1 {
				if len(cur.faces) > 0 && cur.matName != fields[1] {
					objects = append(objects, *cur)
					cur = &objObject{name: cur.name}
				}
				cur.matName = fields[1]
			}

		case "mtllib":
			if len(fields) > 1 {
				if loaded, err := loadMTL(filepath.Join(dir, fields[1]), dir); err == nil {
					for k, v := range loaded {
						materials[k] = v
					}
				}
			}

		case "f":
			if len(fields) < 4 {
				continue
			}
			fverts := make([]faceVertex, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				fverts = append(fverts, parseFaceVertex(tok, len(positions), len(uvs), len(normals)))
			}
			// Fan triangulation: 0-1-2, 0-2-3, 0-3-4, ...
			for i := 1; i+1 < len(fverts); i++ {
				f0, f1, f2 := fverts[0], fverts[i], fverts[i+1]
				cur.faces = append(cur.faces, objFace{
					vIdx:  [3]int{f0.v, f1.v, f2.v},
					vtIdx: [3]int{f0.vt, f1.vt, f2.vt},
					vnIdx: [3]int{f0.vn, f1.vn, f2.vn},
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj: %w", err)
	}

	if len(cur.faces) > 0 {
		objects = append(objects, *cur)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("no geometry found")
	}

	meshes := make([]*Mesh, 0, len(objects))
	for _, obj := range objects {
		mesh := buildMeshFromOBJ(obj.name, obj.faces, positions, normals, uvs)
		if mat, ok := materials[obj.matName]; ok {
			mesh.Material = mat
		} else {
			mesh.Material = DefaultMaterial()
		}
		mesh.MaterialName = obj.matName
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

func parseVec3(f []string) mgl32.Vec3 {
	x, _ := strconv.ParseFloat(f[0], 32)
	y, _ := strconv.ParseFloat(f[1], 32)
	z, _ := strconv.ParseFloat(f[2], 32)
	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}

type faceVertex struct{ v, vt, vn int }

// parseFaceVertex parses one face vertex token: "v", "v/vt", "v//vn", "v/vt/vn".
// Returns 0-based indices (-1 if absent). Negative OBJ indices count back
// from the end of the pool read so far.
func parseFaceVertex(tok string, nv, nvt, nvn int) faceVertex {
	parseIdx := func(s string, n int) int {
		if s == "" {
			return -1
		}
		i, err := strconv.Atoi(s)
		switch {
		case err != nil:
			return -1
		case i > 0:
			return i - 1
		case i < 0:
			return n + i
		}
		return -1
	}
	parts := strings.Split(tok, "/")
	res := faceVertex{v: -1, vt: -1, vn: -1}
	res.v = parseIdx(parts[0], nv)
	if len(parts) > 1 {
		res.vt = parseIdx(parts[1], nvt)
	}
	if len(parts) > 2 {
		res.vn = parseIdx(parts[2], nvn)
	}
	return res
}

// buildMeshFromOBJ converts parsed face data into a deduplicated Mesh.
func buildMeshFromOBJ(name string, faces []objFace, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) *Mesh {
	vertMap := map[faceVertex]uint32{}
	var (
		vertices []Vertex
		indices  []uint32
	)

	at3 := func(pool []mgl32.Vec3, i int, def mgl32.Vec3) mgl32.Vec3 {
		if i >= 0 && i < len(pool) {
			return pool[i]
		}
		return def
	}

	for _, face := range faces {
		for c := 0; c < 3; c++ {
			k := faceVertex{face.vIdx[c], face.vtIdx[c], face.vnIdx[c]}
			idx, ok := vertMap[k]
			if !ok {
				v := Vertex{
					Position: at3(positions, k.v, mgl32.Vec3{}),
					Normal:   at3(normals, k.vn, mgl32.Vec3{0, 1, 0}),
				}
				if k.vt >= 0 && k.vt < len(uvs) {
					v.UV = uvs[k.vt]
				}
				idx = uint32(len(vertices))
				vertices = append(vertices, v)
				vertMap[k] = idx
			}
			indices = append(indices, idx)
		}
	}

	if len(normals) == 0 {
		generateNormals(vertices, indices)
	}
	return NewMeshFromData(name, vertices, indices)
}

// generateNormals computes area-weighted vertex normals.
func generateNormals(vertices []Vertex, indices []uint32) {
	accum := make([]mgl32.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		v0 := vertices[i0].Position
		n := vertices[i1].Position.Sub(v0).Cross(vertices[i2].Position.Sub(v0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i := range vertices {
		if accum[i].Len() > 0 {
			vertices[i].Normal = accum[i].Normalize()
		}
	}
}

// ── MTL loader ───────────────────────────────────────────────────────────────

func loadMTL(path, dir string) (map[string]*Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mats := map[string]*Material{}
	var cur *Material

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "newmtl":
			if len(fields) > 1 {
				cur = DefaultMaterial()
				cur.Name = fields[1]
				mats[fields[1]] = cur
			}
		case "Kd":
			if cur != nil && len(fields) >= 4 {
				cur.Diffuse = parseVec3(fields[1:4])
			}
		case "Ks":
			if cur != nil && len(fields) >= 4 {
				cur.Specular = parseVec3(fields[1:4])
			}
		case "Ns":
			if cur != nil && len(fields) >= 2 {
				ns, _ := strconv.ParseFloat(fields[1], 32)
				cur.Shininess = float32(math.Max(1, ns))
			}
		case "map_Kd":
			if cur != nil && len(fields) >= 2 {
				// The file name is the last token; options may precede it.
				tex, err := LoadTexture(filepath.Join(dir, fields[len(fields)-1]))
				if err == nil {
					cur.DiffuseTexture = tex
				}
			}
		}
	}
	return mats, scanner.Err()
}
