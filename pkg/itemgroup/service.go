package itemgroup

import (
	"context"
	"fmt"
	"strings"

	"github.com/orcaposte/orcaposte/internal/apperrors"
	"github.com/orcaposte/orcaposte/pkg/catalog"
	log "github.com/sirupsen/logrus"
)

// MaterialReader resolves catalog materials by id. Unknown ids are absent from the result.
type MaterialReader interface {
	GetMaterials(ctx context.Context, ids []int) (map[int]catalog.Material, error)
}

type Service interface {
	GetTemplate(ctx context.Context, id int) (Template, error)
	ListTemplates(ctx context.Context, companyId *int) ([]Template, error)
	CreateTemplate(ctx context.Context, template Template) (Template, error)
	UpdateTemplate(ctx context.Context, template Template) (Template, error)
	DeleteTemplate(ctx context.Context, id int) error
}

type ServiceImpl struct {
	repo      Repository
	materials MaterialReader
}

func NewService(repo Repository, materials MaterialReader) *ServiceImpl {
	return &ServiceImpl{repo: repo, materials: materials}
}

func (s *ServiceImpl) GetTemplate(ctx context.Context, id int) (Template, error) {
	return s.repo.GetTemplate(ctx, id)
}

func (s *ServiceImpl) ListTemplates(ctx context.Context, companyId *int) ([]Template, error) {
	return s.repo.ListTemplates(ctx, companyId)
}

func (s *ServiceImpl) CreateTemplate(ctx context.Context, template Template) (Template, error) {
	template, err := s.validate(ctx, template)
	if err != nil {
		return Template{}, err
	}
	id, err := s.repo.StoreTemplate(ctx, template)
	if err != nil {
		return Template{}, err
	}
	template.Id = id
	return template, nil
}

// UpdateTemplate replaces the material list. Groups already attached to posts are copies
// and are not affected.
func (s *ServiceImpl) UpdateTemplate(ctx context.Context, template Template) (Template, error) {
	template, err := s.validate(ctx, template)
	if err != nil {
		return Template{}, err
	}
	updated, err := s.repo.UpdateTemplate(ctx, template)
	if err != nil {
		return Template{}, err
	}
	if !updated {
		return Template{}, apperrors.NewNotFound("item group template", template.Id)
	}
	return template, nil
}

func (s *ServiceImpl) DeleteTemplate(ctx context.Context, id int) error {
	deleted, err := s.repo.DeleteTemplate(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		log.Warnf("item group template not deleted, probably because it does not exist (%d)", id)
		return apperrors.NewNotFound("item group template", id)
	}
	return nil
}

func (s *ServiceImpl) validate(ctx context.Context, template Template) (Template, error) {
	template.Name = strings.TrimSpace(template.Name)
	template.Description = strings.TrimSpace(template.Description)
	if err := template.Validate(); err != nil {
		return Template{}, err
	}

	known, err := s.materials.GetMaterials(ctx, template.MaterialIds())
	if err != nil {
		return Template{}, fmt.Errorf("failed to resolve template materials: %w", err)
	}
	for _, m := range template.Materials {
		if _, ok := known[m.MaterialId]; !ok {
			return Template{}, fmt.Errorf("%w (material %d)", ErrUnknownMaterial, m.MaterialId)
		}
	}
	return template, nil
}
