package schedrepo

import (
	"github.com/AlonLivne007/smart-scheduling-sub000/internal/models"
)

// The scheduling backend grew several spellings for the role-requirement
// concept across endpoints. Everything is folded into the canonical
// models.RoleRequirement here, once, so no call site ever branches on
// payload shape.

type rawRequirement struct {
	RoleID        string `json:"role_id"`
	Role          string `json:"role"`
	RequiredCount *int   `json:"required_count"`
	Required      *int   `json:"required"`
	Count         *int   `json:"count"`
}

type rawTemplate struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	RoleRequirements []rawRequirement `json:"role_requirements"`
	Requirements     []rawRequirement `json:"requirements"`
}

type rawShift struct {
	ID          string                   `json:"id"`
	TemplateID  string                   `json:"shift_template_id"`
	Date        string                   `json:"date"`
	Template    *rawTemplate             `json:"template"`
	Assignments []models.ShiftAssignment `json:"assignments"`
}

func (r rawRequirement) normalize() models.RoleRequirement {
	req := models.RoleRequirement{RoleID: r.RoleID}
	if req.RoleID == "" {
		req.RoleID = r.Role
	}
	switch {
	case r.RequiredCount != nil:
		req.RequiredCount = *r.RequiredCount
	case r.Required != nil:
		req.RequiredCount = *r.Required
	case r.Count != nil:
		req.RequiredCount = *r.Count
	}
	return req
}

func (t *rawTemplate) normalize() *models.ShiftTemplate {
	if t == nil {
		return nil
	}
	src := t.RoleRequirements
	if src == nil {
		src = t.Requirements
	}
	out := &models.ShiftTemplate{ID: t.ID, Name: t.Name}
	if src != nil {
		out.Requirements = make([]models.RoleRequirement, 0, len(src))
		for _, r := range src {
			out.Requirements = append(out.Requirements, r.normalize())
		}
	}
	return out
}
