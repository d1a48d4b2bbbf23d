package meshgradient

// MeshSource supplies the control mesh for each render.
type MeshSource interface {
	// Mesh returns the mesh to render. The renderer does not modify it.
	Mesh() *ControlMesh
}

type staticSource struct {
	mesh *ControlMesh
}

func (s staticSource) Mesh() *ControlMesh { return s.mesh }

// StaticSource returns a MeshSource that always yields mesh.
func StaticSource(mesh *ControlMesh) MeshSource {
	return staticSource{mesh: mesh}
}

// MeshFunc adapts a function to MeshSource.
type MeshFunc func() *ControlMesh

// Mesh calls f.
func (f MeshFunc) Mesh() *ControlMesh { return f() }
