package catalog

import "suryawash/internal/domain"

// ServiceInput is the body of a service save. Omitted fields are left as stored.
type ServiceInput struct {
	Name        *string   `json:"name"`
	Price       *float64  `json:"price" validate:"omitempty,gte=0"`
	Description *string   `json:"description"`
	Features    *[]string `json:"features"`
	Icon        *string   `json:"icon"`
	Gradient    *string   `json:"gradient"`
}

func (in ServiceInput) patch() domain.ServicePatch {
	return domain.ServicePatch{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Features:    in.Features,
		Icon:        in.Icon,
		Gradient:    in.Gradient,
	}
}

type PlanInput struct {
	Name        *string   `json:"name"`
	Price       *float64  `json:"price" validate:"omitempty,gte=0"`
	Period      *string   `json:"period"`
	Features    *[]string `json:"features"`
	Recommended *bool     `json:"recommended"`
	Icon        *string   `json:"icon"`
}

func (in PlanInput) patch() domain.PlanPatch {
	return domain.PlanPatch{
		Name:        in.Name,
		Price:       in.Price,
		Period:      in.Period,
		Features:    in.Features,
		Recommended: in.Recommended,
		Icon:        in.Icon,
	}
}

type SaveResponse struct {
	ID string `json:"id"`
}
