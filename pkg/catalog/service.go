package catalog

import (
	"context"
	"fmt"

	"github.com/orcaposte/orcaposte/internal/apperrors"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	GetMaterial(ctx context.Context, id int) (Material, error)
	// GetMaterials returns the requested materials keyed by id. Unknown ids are absent from the map.
	GetMaterials(ctx context.Context, ids []int) (map[int]Material, error)
	ListMaterials(ctx context.Context) ([]Material, error)
	CreateMaterial(ctx context.Context, material Material) (Material, error)
	UpdateMaterial(ctx context.Context, material Material) (Material, error)
	DeleteMaterial(ctx context.Context, id int) error
	ListPostTypes(ctx context.Context) ([]PostType, error)
	GetPostType(ctx context.Context, id int) (PostType, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) GetMaterial(ctx context.Context, id int) (Material, error) {
	return s.repo.GetMaterial(ctx, id)
}

func (s *ServiceImpl) GetMaterials(ctx context.Context, ids []int) (map[int]Material, error) {
	materials, err := s.repo.FindMaterials(ctx, uniqueIds(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to find materials: %w", err)
	}
	byId := make(map[int]Material, len(materials))
	for _, material := range materials {
		byId[material.Id] = material
	}
	return byId, nil
}

func (s *ServiceImpl) ListMaterials(ctx context.Context) ([]Material, error) {
	return s.repo.ListMaterials(ctx)
}

func (s *ServiceImpl) CreateMaterial(ctx context.Context, material Material) (Material, error) {
	material = normalize(material)
	if err := material.Validate(); err != nil {
		return Material{}, err
	}
	id, err := s.repo.StoreMaterial(ctx, material)
	if err != nil {
		return Material{}, err
	}
	material.Id = id
	return material, nil
}

// UpdateMaterial changes the catalog entry only. Prices already captured on posts stay as they were.
func (s *ServiceImpl) UpdateMaterial(ctx context.Context, material Material) (Material, error) {
	material = normalize(material)
	if err := material.Validate(); err != nil {
		return Material{}, err
	}
	updated, err := s.repo.UpdateMaterial(ctx, material)
	if err != nil {
		return Material{}, err
	}
	if !updated {
		return Material{}, apperrors.NewNotFound("material", material.Id)
	}
	return material, nil
}

func (s *ServiceImpl) DeleteMaterial(ctx context.Context, id int) error {
	deleted, err := s.repo.DeleteMaterial(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		log.Warnf("material not deleted, probably because it does not exist (%d)", id)
		return apperrors.NewNotFound("material", id)
	}
	return nil
}

func (s *ServiceImpl) ListPostTypes(ctx context.Context) ([]PostType, error) {
	return s.repo.ListPostTypes(ctx)
}

func (s *ServiceImpl) GetPostType(ctx context.Context, id int) (PostType, error) {
	return s.repo.GetPostType(ctx, id)
}

func uniqueIds(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	unique := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
