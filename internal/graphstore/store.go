// Package graphstore provides a graph.Store whose vertex attributes can be
// edited after the vertex is added.
package graphstore

import (
	"sync"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
)

// Store is a graph.Store that can also label vertices in place.
type Store[K comparable, T any] interface {
	graph.Store[K, T]
	SetVertexAttribute(k K, key, value string) error
}

// Memory keeps the pipeline graph in memory.
type Memory[K comparable, T any] struct {
	lock       sync.RWMutex
	vertices   map[K]T
	properties map[K]*graph.VertexProperties

	// source -> target and target -> source, both keyed by vertex hash.
	outEdges map[K]map[K]graph.Edge[K]
	inEdges  map[K]map[K]graph.Edge[K]
}

var _ Store[string, string] = (*Memory[string, string])(nil)

// NewMemory returns an empty store.
func NewMemory[K comparable, T any]() *Memory[K, T] {
	return &Memory[K, T]{
		vertices:   make(map[K]T),
		properties: make(map[K]*graph.VertexProperties),
		outEdges:   make(map[K]map[K]graph.Edge[K]),
		inEdges:    make(map[K]map[K]graph.Edge[K]),
	}
}

func (s *Memory[K, T]) AddVertex(k K, t T, p graph.VertexProperties) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[k]; ok {
		return graph.ErrVertexAlreadyExists
	}

	if p.Attributes == nil {
		p.Attributes = make(map[string]string)
	}

	s.vertices[k] = t
	s.properties[k] = &p

	return nil
}

// SetVertexAttribute sets a single attribute of vertex k.
func (s *Memory[K, T]) SetVertexAttribute(k K, key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	p, ok := s.properties[k]
	if !ok {
		return errors.Wrapf(graph.ErrVertexNotFound, "%v", k)
	}

	p.Attributes[key] = value

	return nil
}

func (s *Memory[K, T]) ListVertices() ([]K, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	hashes := make([]K, 0, len(s.vertices))
	for k := range s.vertices {
		hashes = append(hashes, k)
	}

	return hashes, nil
}

func (s *Memory[K, T]) VertexCount() (int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.vertices), nil
}

// Vertex returns a copy of the properties so callers cannot edit the stored attributes.
func (s *Memory[K, T]) Vertex(k K) (T, graph.VertexProperties, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.vertices[k]
	if !ok {
		return v, graph.VertexProperties{}, graph.ErrVertexNotFound
	}

	p := *s.properties[k]
	attributes := make(map[string]string, len(p.Attributes))
	for key, value := range p.Attributes {
		attributes[key] = value
	}

	p.Attributes = attributes

	return v, p, nil
}

func (s *Memory[K, T]) RemoveVertex(k K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[k]; !ok {
		return graph.ErrVertexNotFound
	}

	if len(s.inEdges[k]) > 0 || len(s.outEdges[k]) > 0 {
		return graph.ErrVertexHasEdges
	}

	delete(s.inEdges, k)
	delete(s.outEdges, k)
	delete(s.vertices, k)
	delete(s.properties, k)

	return nil
}

func (s *Memory[K, T]) AddEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.outEdges[sourceHash]; !ok {
		s.outEdges[sourceHash] = make(map[K]graph.Edge[K])
	}

	if _, ok := s.inEdges[targetHash]; !ok {
		s.inEdges[targetHash] = make(map[K]graph.Edge[K])
	}

	s.outEdges[sourceHash][targetHash] = edge
	s.inEdges[targetHash][sourceHash] = edge

	return nil
}

func (s *Memory[K, T]) UpdateEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.outEdges[sourceHash][targetHash]; !ok {
		return graph.ErrEdgeNotFound
	}

	s.outEdges[sourceHash][targetHash] = edge
	s.inEdges[targetHash][sourceHash] = edge

	return nil
}

func (s *Memory[K, T]) RemoveEdge(sourceHash, targetHash K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.inEdges[targetHash], sourceHash)
	delete(s.outEdges[sourceHash], targetHash)

	return nil
}

func (s *Memory[K, T]) Edge(sourceHash, targetHash K) (graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	edge, ok := s.outEdges[sourceHash][targetHash]
	if !ok {
		return graph.Edge[K]{}, graph.ErrEdgeNotFound
	}

	return edge, nil
}

func (s *Memory[K, T]) ListEdges() ([]graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	res := make([]graph.Edge[K], 0)
	for _, edges := range s.outEdges {
		for _, edge := range edges {
			res = append(res, edge)
		}
	}

	return res, nil
}

// CreatesCycle reports whether an edge from source to target would close a
// cycle, walking the incoming edges of source.
func (s *Memory[K, T]) CreatesCycle(source, target K) (bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if _, ok := s.vertices[source]; !ok {
		return false, errors.Wrapf(graph.ErrVertexNotFound, "%v", source)
	}

	if _, ok := s.vertices[target]; !ok {
		return false, errors.Wrapf(graph.ErrVertexNotFound, "%v", target)
	}

	stack := []K{source}
	visited := make(map[K]struct{})

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == target {
			return true, nil
		}

		if _, ok := visited[current]; ok {
			continue
		}

		visited[current] = struct{}{}

		for parent := range s.inEdges[current] {
			stack = append(stack, parent)
		}
	}

	return false, nil
}
