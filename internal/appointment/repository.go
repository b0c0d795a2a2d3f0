package appointment

import (
	"context"
	"time"

	"github.com/pawdesk/petshop-service/internal/appointment/dto"
	"github.com/pawdesk/petshop-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	FindAll(ctx context.Context, f *dto.AppointmentFilters) ([]model.Appointment, int, error)

	// HasOverlap reports whether any non-cancelled appointment for the staff
	// member intersects [startAt, endAt).
	HasOverlap(ctx context.Context, staffID string, startAt, endAt time.Time, excludeID string) (bool, error)

	// Guarded status flips; each returns false when the appointment was not in
	// the required source state.
	MarkConfirmed(ctx context.Context, id string) (bool, error)
	MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error)
	MarkCancelled(ctx context.Context, id string, reason *string, noShow bool, cancelledBy string, at time.Time) (bool, error)
}
