package scene

import (
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// LoadGLTF opens a .glb or .gltf file and returns its meshes with every node
// transform baked into the vertices, so the result can be placed like an OBJ
// model. Textures referenced by materials are returned for GPU upload.
// PBR metallic-roughness is approximated to Phong.
func LoadGLTF(path string) ([]*Mesh, []*Texture, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	dir := filepath.Dir(path)

	// ── 1. Textures ───────────────────────────────────────────────────────────
	var textures []*Texture
	texCache := make([]*Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil || *gt.Source >= len(doc.Images) {
			continue
		}
		img := doc.Images[*gt.Source]

		var tex *Texture
		switch {
		case img.BufferView != nil:
			raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			if err != nil {
				continue
			}
			name := img.Name
			if name == "" {
				name = fmt.Sprintf("gltf_img_%d", *gt.Source)
			}
			tex, err = DecodeTexture(name, raw)
			if err != nil {
				continue
			}
		case img.URI != "" && !img.IsEmbeddedResource():
			tex, err = LoadTexture(filepath.Join(dir, img.URI))
			if err != nil {
				continue
			}
		}
		if tex != nil {
			texCache[i] = tex
			textures = append(textures, tex)
		}
	}

	// ── 2. Materials ─────────────────────────────────────────────────────────
	matCache := make([]*Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		mat := DefaultMaterial()
		mat.Name = gm.Name
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			mat.Diffuse = mgl32.Vec3{float32(cf[0]), float32(cf[1]), float32(cf[2])}
			if pbr.BaseColorTexture != nil {
				if idx := pbr.BaseColorTexture.Index; idx < len(texCache) {
					mat.DiffuseTexture = texCache[idx]
				}
			}
			// Smooth surfaces get a tight highlight; metals a bright one.
			roughness := float32(pbr.RoughnessFactorOrDefault())
			metallic := float32(pbr.MetallicFactorOrDefault())
			mat.Shininess = (1-roughness)*(1-roughness)*128 + 1
			s := metallic * 0.7
			mat.Specular = mgl32.Vec3{s, s, s}
		}
		matCache[i] = mat
	}

	// ── 3. Mesh primitives ────────────────────────────────────────────────────
	meshPrims := make([][]*Mesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadGLTFPrimitive(doc, gm.Name, pi, prim)
			if err != nil {
				return nil, nil, fmt.Errorf("gltf %q mesh %d prim %d: %w", path, mi, pi, err)
			}
			if prim.Material != nil && *prim.Material < len(matCache) {
				m.Material = matCache[*prim.Material]
			} else {
				m.Material = DefaultMaterial()
			}
			meshPrims[mi] = append(meshPrims[mi], m)
		}
	}

	// ── 4. Flatten the node tree ─────────────────────────────────────────────
	var meshes []*Mesh
	var visit func(idx int, parent mgl32.Mat4, depth int)
	visit = func(idx int, parent mgl32.Mat4, depth int) {
		if idx >= len(doc.Nodes) || depth > len(doc.Nodes) {
			return
		}
		gn := doc.Nodes[idx]
		world := parent.Mul4(nodeMatrix(gn))
		if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
			for _, p := range meshPrims[*gn.Mesh] {
				meshes = append(meshes, TransformMesh(p, world))
			}
		}
		for _, c := range gn.Children {
			visit(c, world, depth+1)
		}
	}
	for _, root := range gltfRoots(doc) {
		visit(root, mgl32.Ident4(), 0)
	}

	if len(meshes) == 0 {
		return nil, nil, fmt.Errorf("no geometry found in %q", path)
	}
	return meshes, textures, nil
}

// nodeMatrix returns the node's local transform: its explicit matrix when
// present, otherwise T * R * S.
func nodeMatrix(gn *gltf.Node) mgl32.Mat4 {
	if gn.Matrix != gltf.DefaultMatrix && gn.Matrix != [16]float64{} {
		var m mgl32.Mat4
		for i, v := range gn.Matrix {
			m[i] = float32(v)
		}
		return m
	}
	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault() // [x, y, z, w]
	s := gn.ScaleOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

// gltfRoots returns the default scene's root nodes, or every parentless node
// when the document names no scene.
func gltfRoots(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// loadGLTFPrimitive converts one glTF mesh primitive into a scene.Mesh.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var (
		normals [][3]float32
		uvs     [][2]float32
	)
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]Vertex, len(positions))
	for i, p := range positions {
		v := Vertex{Position: mgl32.Vec3(p), Normal: mgl32.Vec3{0, 1, 0}}
		if i < len(normals) {
			v.Normal = mgl32.Vec3(normals[i])
		}
		if i < len(uvs) {
			v.UV = mgl32.Vec2(uvs[i])
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	mesh := NewMeshFromData(name, verts, indices)
	if len(normals) == 0 {
		generateNormals(mesh.Vertices, mesh.Indices)
	}
	return mesh, nil
}
