package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pawdesk/petshop-service/internal/apperrors"
	"github.com/pawdesk/petshop-service/internal/appointment"
	"github.com/pawdesk/petshop-service/internal/appointment/dto"
	"github.com/pawdesk/petshop-service/internal/inventory"
	invdto "github.com/pawdesk/petshop-service/internal/inventory/dto"
	"github.com/pawdesk/petshop-service/internal/model"
	"github.com/pawdesk/petshop-service/pkg/logger"
	"go.uber.org/zap"
)

type appointmentUseCase struct {
	repo      appointment.Repository
	inventory inventory.UseCase
	catalog   appointment.CatalogReader
	customers appointment.CustomerReader
	staff     appointment.StaffReader
	logger    logger.ZapLogger
}

func NewAppointmentUseCase(
	repo appointment.Repository,
	inv inventory.UseCase,
	catalog appointment.CatalogReader,
	customers appointment.CustomerReader,
	staff appointment.StaffReader,
	log logger.ZapLogger,
) appointment.UseCase {
	return &appointmentUseCase{
		repo:      repo,
		inventory: inv,
		catalog:   catalog,
		customers: customers,
		staff:     staff,
		logger:    log,
	}
}

func (uc *appointmentUseCase) Create(ctx context.Context, input *dto.CreateAppointmentInput) (*model.Appointment, error) {
	if input.CustomerID == "" || input.PetID == "" || input.StaffID == "" || input.StoreID == "" {
		return nil, apperrors.NewValidation("store, customer, pet and staff are required")
	}
	if !input.StartAt.Before(input.EndAt) {
		return nil, apperrors.NewValidation("appointment start must be before end")
	}
	if len(input.Lines) == 0 {
		return nil, apperrors.NewValidation("at least one service line is required")
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, apperrors.NewValidation("service line quantity must be positive")
		}
	}

	customer, err := uc.customers.GetCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperrors.NewNotFound("customer", input.CustomerID)
	}

	pet, err := uc.customers.GetPet(ctx, input.PetID)
	if err != nil {
		return nil, err
	}
	if pet == nil {
		return nil, apperrors.NewNotFound("pet", input.PetID)
	}
	if pet.CustomerID != input.CustomerID {
		return nil, apperrors.NewValidation("pet %s does not belong to customer %s", input.PetID, input.CustomerID)
	}

	staffMember, err := uc.staff.GetUser(ctx, input.StaffID)
	if err != nil {
		return nil, err
	}
	if staffMember == nil {
		return nil, apperrors.NewNotFound("staff member", input.StaffID)
	}

	overlap, err := uc.repo.HasOverlap(ctx, input.StaffID, input.StartAt, input.EndAt, "")
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, apperrors.NewConflict(
			"staff member %s already has an appointment overlapping %s - %s",
			input.StaffID, input.StartAt.Format(time.RFC3339), input.EndAt.Format(time.RFC3339))
	}

	// Aggregate the consumable recipe across all service lines so each
	// product gets a single reservation.
	consumables, err := uc.collectConsumables(ctx, input.Lines)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	appt := &model.Appointment{
		BaseModel:  model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		StoreID:    input.StoreID,
		CustomerID: input.CustomerID,
		PetID:      input.PetID,
		StaffID:    input.StaffID,
		StartAt:    input.StartAt,
		EndAt:      input.EndAt,
		Status:     model.AppointmentBooked,
		Notes:      input.Notes,
	}
	for _, line := range input.Lines {
		appt.ServiceLines = append(appt.ServiceLines, model.AppointmentLine{
			ID:            uuid.New().String(),
			AppointmentID: appt.ID,
			ServiceID:     line.ServiceID,
			Quantity:      line.Quantity,
			PriceOverride: line.PriceOverride,
		})
	}

	if err := uc.repo.Create(ctx, appt); err != nil {
		return nil, err
	}

	owner := model.OwnerRef{Type: model.OwnerAppointment, ID: appt.ID}
	created := []string{}
	for _, c := range consumables {
		res, err := uc.inventory.CreateReservation(ctx, &invdto.CreateReservationInput{
			ProductID: c.productID,
			Quantity:  c.quantity,
			Owner:     owner,
			ExpiresAt: input.ReservationExpiresAt,
		})
		if err != nil {
			// All-or-nothing: free the holds already taken for earlier lines
			// and remove the booking before surfacing the error.
			uc.rollbackCreate(ctx, appt.ID, created)
			return nil, err
		}
		created = append(created, res.ID)
	}

	uc.logger.Info("appointment booked",
		zap.String("appointment_id", appt.ID),
		zap.String("staff_id", appt.StaffID),
		zap.Int("reservations", len(created)),
	)
	return appt, nil
}

type consumable struct {
	productID string
	quantity  float64
}

func (uc *appointmentUseCase) collectConsumables(ctx context.Context, lines []dto.ServiceLineInput) ([]consumable, error) {
	totals := map[string]float64{}
	for _, line := range lines {
		svc, err := uc.catalog.GetService(ctx, line.ServiceID)
		if err != nil {
			return nil, err
		}
		if svc == nil {
			return nil, apperrors.NewNotFound("service", line.ServiceID)
		}
		for _, c := range svc.Consumables {
			totals[c.ProductID] += c.Quantity * line.Quantity
		}
	}

	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]consumable, 0, len(ids))
	for _, id := range ids {
		out = append(out, consumable{productID: id, quantity: totals[id]})
	}
	return out, nil
}

func (uc *appointmentUseCase) rollbackCreate(ctx context.Context, apptID string, reservationIDs []string) {
	for _, id := range reservationIDs {
		if err := uc.inventory.ReleaseReservation(ctx, id, "system"); err != nil {
			uc.logger.Error("failed to release reservation during booking rollback",
				zap.String("reservation_id", id), zap.Error(err))
		}
	}
	if err := uc.repo.Delete(ctx, apptID); err != nil {
		uc.logger.Error("failed to delete appointment during booking rollback",
			zap.String("appointment_id", apptID), zap.Error(err))
	}
}

func (uc *appointmentUseCase) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	appt, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, apperrors.NewNotFound("appointment", id)
	}
	return appt, nil
}

func (uc *appointmentUseCase) List(ctx context.Context, f *dto.AppointmentFilters) ([]model.Appointment, int, error) {
	return uc.repo.FindAll(ctx, f)
}

func (uc *appointmentUseCase) Confirm(ctx context.Context, id, performedBy string) (*model.Appointment, error) {
	appt, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != model.AppointmentBooked {
		return nil, apperrors.NewBusinessRule("appointment %s cannot be confirmed from status %s", id, appt.Status)
	}

	ok, err := uc.repo.MarkConfirmed(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewConflict("appointment %s changed state concurrently", id)
	}

	appt.Status = model.AppointmentConfirmed
	uc.logger.Info("appointment confirmed", zap.String("appointment_id", id), zap.String("performed_by", performedBy))
	return appt, nil
}

// Complete consumes every active reservation owned by the appointment. Each
// consumption is independently transactional: if one fails, earlier ones stay
// consumed, the appointment stays confirmed and the result reports what is
// still pending so the caller can retry just the remainder.
func (uc *appointmentUseCase) Complete(ctx context.Context, input *dto.CompleteAppointmentInput) (*dto.TransitionResult, error) {
	appt, err := uc.GetByID(ctx, input.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Status != model.AppointmentConfirmed {
		return nil, apperrors.NewBusinessRule("appointment %s cannot be completed from status %s", appt.ID, appt.Status)
	}

	// Re-query rather than trusting any earlier snapshot, so a retried call
	// picks up exactly the reservations still pending.
	owner := model.OwnerRef{Type: model.OwnerAppointment, ID: appt.ID}
	active, err := uc.inventory.ListActiveForOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	result := &dto.TransitionResult{Appointment: appt}

	if len(input.ConsumedItems) > 0 {
		if ok := uc.completeWithOverride(ctx, appt, active, input, result); !ok {
			return result, nil
		}
	} else {
		for i, res := range active {
			if _, err := uc.inventory.ConsumeReservation(ctx, res.ID, input.PerformedBy); err != nil {
				result.Outcomes = append(result.Outcomes, failedOutcome(res, err))
				markPending(result, active[i+1:])
				uc.logger.Error("appointment completion halted",
					zap.String("appointment_id", appt.ID),
					zap.String("reservation_id", res.ID),
					zap.Error(err))
				return result, nil
			}
			result.Outcomes = append(result.Outcomes, reservationOutcome(res, dto.OutcomeConsumed))
		}
	}

	now := time.Now()
	ok, err := uc.repo.MarkCompleted(ctx, appt.ID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewConflict("appointment %s changed state concurrently", appt.ID)
	}

	appt.Status = model.AppointmentCompleted
	appt.CompletedAt = &now
	result.Done = true

	uc.logger.Info("appointment completed",
		zap.String("appointment_id", appt.ID),
		zap.Int("reservations", len(result.Outcomes)),
	)
	return result, nil
}

// completeWithOverride replaces the planned reservations with the actual
// consumption: every hold is released and the actual quantities are
// decremented as reconciliation movements.
func (uc *appointmentUseCase) completeWithOverride(
	ctx context.Context,
	appt *model.Appointment,
	active []model.InventoryReservation,
	input *dto.CompleteAppointmentInput,
	result *dto.TransitionResult,
) bool {
	for i, res := range active {
		if err := uc.inventory.ReleaseReservation(ctx, res.ID, input.PerformedBy); err != nil {
			result.Outcomes = append(result.Outcomes, failedOutcome(res, err))
			markPending(result, active[i+1:])
			return false
		}
		result.Outcomes = append(result.Outcomes, reservationOutcome(res, dto.OutcomeReleased))
	}

	for _, item := range input.ConsumedItems {
		if item.Quantity <= 0 {
			continue
		}
		_, err := uc.inventory.AdjustStock(ctx, &invdto.AdjustStockInput{
			ProductID:      item.ProductID,
			QuantityChange: -item.Quantity,
			Reason:         model.MovementReconciliation,
			Notes:          "actual consumption at appointment completion",
			ReferenceType:  string(model.OwnerAppointment),
			ReferenceID:    appt.ID,
			PerformedBy:    input.PerformedBy,
		})
		if err != nil {
			result.Outcomes = append(result.Outcomes, dto.ReservationOutcome{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Status:    dto.OutcomeFailed,
				Error:     err.Error(),
			})
			return false
		}
		result.Outcomes = append(result.Outcomes, dto.ReservationOutcome{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Status:    dto.OutcomeConsumed,
		})
	}
	return true
}

func (uc *appointmentUseCase) Cancel(ctx context.Context, input *dto.CancelAppointmentInput) (*dto.TransitionResult, error) {
	appt, err := uc.GetByID(ctx, input.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Terminal() {
		return nil, apperrors.NewBusinessRule("appointment %s is already %s", appt.ID, appt.Status)
	}
	if !input.NoShow && input.Reason == "" {
		return nil, apperrors.NewValidation("a cancellation reason is required unless the appointment is marked no-show")
	}

	owner := model.OwnerRef{Type: model.OwnerAppointment, ID: appt.ID}
	active, err := uc.inventory.ListActiveForOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	result := &dto.TransitionResult{Appointment: appt}
	for i, res := range active {
		if err := uc.inventory.ReleaseReservation(ctx, res.ID, input.PerformedBy); err != nil {
			result.Outcomes = append(result.Outcomes, failedOutcome(res, err))
			markPending(result, active[i+1:])
			uc.logger.Error("appointment cancellation halted",
				zap.String("appointment_id", appt.ID),
				zap.String("reservation_id", res.ID),
				zap.Error(err))
			return result, nil
		}
		result.Outcomes = append(result.Outcomes, reservationOutcome(res, dto.OutcomeReleased))
	}

	var reason *string
	if input.Reason != "" {
		reason = &input.Reason
	}
	now := time.Now()
	ok, err := uc.repo.MarkCancelled(ctx, appt.ID, reason, input.NoShow, input.PerformedBy, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewConflict("appointment %s changed state concurrently", appt.ID)
	}

	appt.Status = model.AppointmentCancelled
	appt.CancelReason = reason
	appt.NoShow = input.NoShow
	appt.CancelledAt = &now
	appt.CancelledBy = &input.PerformedBy
	result.Done = true

	uc.logger.Info("appointment cancelled",
		zap.String("appointment_id", appt.ID),
		zap.Bool("no_show", input.NoShow),
	)
	return result, nil
}

func reservationOutcome(res model.InventoryReservation, status string) dto.ReservationOutcome {
	return dto.ReservationOutcome{
		ReservationID: res.ID,
		ProductID:     res.ProductID,
		Quantity:      res.Quantity,
		Status:        status,
	}
}

func failedOutcome(res model.InventoryReservation, err error) dto.ReservationOutcome {
	out := reservationOutcome(res, dto.OutcomeFailed)
	out.Error = err.Error()
	return out
}

func markPending(result *dto.TransitionResult, remaining []model.InventoryReservation) {
	for _, res := range remaining {
		result.Outcomes = append(result.Outcomes, reservationOutcome(res, dto.OutcomePending))
	}
}
