package itemgroup

import (
	"context"
	"sort"

	"github.com/orcaposte/orcaposte/internal/apperrors"
)

type RepositoryStub struct {
	nextId    int
	templates map[int]Template
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		nextId:    0,
		templates: map[int]Template{},
	}
}

func (s *RepositoryStub) GetTemplate(ctx context.Context, id int) (Template, error) {
	if template, exists := s.templates[id]; exists {
		return copyTemplate(template), nil
	}
	return Template{}, apperrors.NewNotFound("item group template", id)
}

func (s *RepositoryStub) ListTemplates(ctx context.Context, companyId *int) ([]Template, error) {
	var templates []Template
	for _, template := range s.templates {
		if companyId != nil && template.CompanyId != *companyId {
			continue
		}
		templates = append(templates, copyTemplate(template))
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Id < templates[j].Id
	})
	return templates, nil
}

func (s *RepositoryStub) StoreTemplate(ctx context.Context, template Template) (int, error) {
	s.nextId++
	template.Id = s.nextId
	s.templates[template.Id] = copyTemplate(template)
	return template.Id, nil
}

func (s *RepositoryStub) UpdateTemplate(ctx context.Context, template Template) (bool, error) {
	if _, exists := s.templates[template.Id]; !exists {
		return false, nil
	}
	s.templates[template.Id] = copyTemplate(template)
	return true, nil
}

func (s *RepositoryStub) DeleteTemplate(ctx context.Context, id int) (bool, error) {
	if _, exists := s.templates[id]; !exists {
		return false, nil
	}
	delete(s.templates, id)
	return true, nil
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.templates = map[int]Template{}
}

func copyTemplate(template Template) Template {
	template.Materials = append([]TemplateMaterial(nil), template.Materials...)
	return template
}
