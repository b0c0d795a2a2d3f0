package appointment

import (
	"context"

	"github.com/pawdesk/petshop-service/internal/appointment/dto"
	"github.com/pawdesk/petshop-service/internal/model"
)

type UseCase interface {
	Create(ctx context.Context, input *dto.CreateAppointmentInput) (*model.Appointment, error)
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	List(ctx context.Context, f *dto.AppointmentFilters) ([]model.Appointment, int, error)
	Confirm(ctx context.Context, id, performedBy string) (*model.Appointment, error)
	Complete(ctx context.Context, input *dto.CompleteAppointmentInput) (*dto.TransitionResult, error)
	Cancel(ctx context.Context, input *dto.CancelAppointmentInput) (*dto.TransitionResult, error)
}

// CatalogReader resolves bookable services and their consumable recipes.
type CatalogReader interface {
	GetService(ctx context.Context, id string) (*model.Service, error)
}

// CustomerReader resolves customers and their pets.
type CustomerReader interface {
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	GetPet(ctx context.Context, id string) (*model.Pet, error)
}

// StaffReader resolves staff members.
type StaffReader interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
}
