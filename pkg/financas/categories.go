package financas

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const (
	defaultIncomeColor  = "#10B981"
	defaultExpenseColor = "#EF4444"
	defaultCategoryIcon = "tag"
)

// categoryService implements the CategoryService interface
type categoryService struct {
	client *Client
}

// List retrieves all categories
func (s *categoryService) List(ctx context.Context) ([]*Category, error) {
	var categories []*Category
	if err := s.client.execute(ctx, http.MethodGet, "/categories", nil, nil, &categories); err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}
	return categories, nil
}

// Create creates a new category. Colour defaults by type.
func (s *categoryService) Create(ctx context.Context, params *CreateCategoryParams) (*Category, error) {
	if params == nil {
		return nil, &ValidationError{Field: "params", Message: "required"}
	}

	verrs := &ValidationErrors{}
	if strings.TrimSpace(params.Name) == "" {
		verrs.add("name", "required", params.Name)
	}
	if !params.Type.Valid() {
		verrs.add("type", "must be INCOME or EXPENSE", string(params.Type))
	}
	if err := verrs.orNil(); err != nil {
		return nil, err
	}

	color := defaultExpenseColor
	if params.Type == Income {
		color = defaultIncomeColor
	}

	body := map[string]interface{}{
		"name":  params.Name,
		"type":  params.Type,
		"color": orDefault(params.Color, color),
		"icon":  orDefault(params.Icon, defaultCategoryIcon),
	}
	if params.Description != "" {
		body["description"] = params.Description
	}

	var category Category
	if err := s.client.execute(ctx, http.MethodPost, "/categories", nil, body, &category); err != nil {
		return nil, errors.Wrap(err, "failed to create category")
	}
	return &category, nil
}

// Update updates an existing category. The type cannot change.
func (s *categoryService) Update(ctx context.Context, categoryID string, params *UpdateCategoryParams) (*Category, error) {
	body := map[string]interface{}{}
	if params != nil {
		if params.Name != nil {
			body["name"] = *params.Name
		}
		if params.Description != nil {
			body["description"] = *params.Description
		}
		if params.Color != nil {
			body["color"] = *params.Color
		}
		if params.Icon != nil {
			body["icon"] = *params.Icon
		}
		if params.IsActive != nil {
			body["isActive"] = *params.IsActive
		}
	}

	var category Category
	if err := s.client.execute(ctx, http.MethodPut, categoryPath(categoryID), nil, body, &category); err != nil {
		return nil, errors.Wrap(err, "failed to update category")
	}
	return &category, nil
}

// Delete deletes a category
func (s *categoryService) Delete(ctx context.Context, categoryID string) error {
	if err := s.client.execute(ctx, http.MethodDelete, categoryPath(categoryID), nil, nil, nil); err != nil {
		return errors.Wrap(err, "failed to delete category")
	}
	return nil
}

// FilterByType returns the categories a transaction of type t may use
func FilterByType(categories []*Category, t TransactionType) []*Category {
	var out []*Category
	for _, c := range categories {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

func categoryPath(id string) string {
	return "/categories/" + url.PathEscape(id)
}
