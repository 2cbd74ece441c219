package main

import (
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/akmonengine/contact/config"
	"github.com/akmonengine/contact/mesh"
)

var errRaggedVertices = errors.New("vertex rows must all have the same length")

// sceneFile is the on-disk layout of a scene.
type sceneFile struct {
	VerticesT0 [][]float64   `yaml:"vertices_t0"`
	VerticesT1 [][]float64   `yaml:"vertices_t1"`
	Edges      [][]int       `yaml:"edges"`
	Faces      [][]int       `yaml:"faces"`
	Groups     []int         `yaml:"groups"`
	Config     config.Config `yaml:"config"`
}

// scene is a validated sceneFile. V1 is nil when the file has no end
// positions.
type scene struct {
	Mesh   *mesh.Mesh
	V0, V1 *mat.Dense
	Config config.Config
}

func toMatrix(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return &mat.Dense{}, nil
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("row %d has %d values, want %d: %w", i, len(r), cols, errRaggedVertices)
		}
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

// edgesFromFaces derives the edges of well-formed faces. Malformed faces
// yield no edges and are reported by mesh.New.
func edgesFromFaces(faces [][]int) [][]int {
	typed := make([][3]int, len(faces))
	for i, f := range faces {
		if len(f) != 3 {
			return nil
		}
		typed[i] = [3]int{f[0], f[1], f[2]}
	}
	var edges [][]int
	for _, e := range mesh.EdgesFromFaces(typed) {
		edges = append(edges, []int{e[0], e[1]})
	}
	return edges
}

func parseScene(data []byte) (*scene, error) {
	f := sceneFile{Config: config.Default()}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding scene: %w", err)
	}
	if err := f.Config.Validate(); err != nil {
		return nil, err
	}

	v0, err := toMatrix(f.VerticesT0)
	if err != nil {
		return nil, fmt.Errorf("vertices_t0: %w", err)
	}
	var opts []mesh.Option
	if len(f.Groups) > 0 {
		opts = append(opts, mesh.WithVertexGroups(f.Groups))
	}
	edges := f.Edges
	if len(edges) == 0 {
		edges = edgesFromFaces(f.Faces)
	}
	m, err := mesh.New(v0, edges, f.Faces, opts...)
	if err != nil {
		return nil, err
	}

	s := &scene{Mesh: m, V0: v0, Config: f.Config}
	if f.VerticesT1 != nil {
		if s.V1, err = toMatrix(f.VerticesT1); err != nil {
			return nil, fmt.Errorf("vertices_t1: %w", err)
		}
		if err := m.CheckPositions(s.V1); err != nil {
			return nil, fmt.Errorf("vertices_t1: %w", err)
		}
	}
	return s, nil
}

func loadScene(path string) (*scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseScene(data)
}
