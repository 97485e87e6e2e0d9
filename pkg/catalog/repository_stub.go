package catalog

import (
	"context"
	"sort"

	"github.com/orcaposte/orcaposte/internal/apperrors"
)

type RepositoryStub struct {
	nextId    int
	materials map[int]Material
	postTypes map[int]PostType
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		nextId:    0,
		materials: map[int]Material{},
		postTypes: map[int]PostType{},
	}
}

func (s *RepositoryStub) GetMaterial(ctx context.Context, id int) (Material, error) {
	if material, exists := s.materials[id]; exists {
		return material, nil
	}
	return Material{}, apperrors.NewNotFound("material", id)
}

func (s *RepositoryStub) FindMaterials(ctx context.Context, ids []int) ([]Material, error) {
	var materials []Material
	for _, id := range ids {
		if material, exists := s.materials[id]; exists {
			materials = append(materials, material)
		}
	}
	return materials, nil
}

func (s *RepositoryStub) ListMaterials(ctx context.Context) ([]Material, error) {
	materials := make([]Material, 0, len(s.materials))
	for _, material := range s.materials {
		materials = append(materials, material)
	}
	sort.Slice(materials, func(i, j int) bool {
		return materials[i].Id < materials[j].Id
	})
	return materials, nil
}

func (s *RepositoryStub) StoreMaterial(ctx context.Context, material Material) (int, error) {
	s.nextId++
	material.Id = s.nextId
	s.materials[material.Id] = material
	return material.Id, nil
}

func (s *RepositoryStub) UpdateMaterial(ctx context.Context, material Material) (bool, error) {
	if _, exists := s.materials[material.Id]; !exists {
		return false, nil
	}
	s.materials[material.Id] = material
	return true, nil
}

func (s *RepositoryStub) DeleteMaterial(ctx context.Context, id int) (bool, error) {
	if _, exists := s.materials[id]; !exists {
		return false, nil
	}
	delete(s.materials, id)
	return true, nil
}

func (s *RepositoryStub) ListPostTypes(ctx context.Context) ([]PostType, error) {
	postTypes := make([]PostType, 0, len(s.postTypes))
	for _, postType := range s.postTypes {
		postTypes = append(postTypes, postType)
	}
	sort.Slice(postTypes, func(i, j int) bool {
		return postTypes[i].Id < postTypes[j].Id
	})
	return postTypes, nil
}

func (s *RepositoryStub) GetPostType(ctx context.Context, id int) (PostType, error) {
	if postType, exists := s.postTypes[id]; exists {
		return postType, nil
	}
	return PostType{}, apperrors.NewNotFound("post type", id)
}

// AddPostType seeds a post type; post types are managed outside the API.
func (s *RepositoryStub) AddPostType(postType PostType) {
	s.postTypes[postType.Id] = postType
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.materials = map[int]Material{}
	s.postTypes = map[int]PostType{}
}
