package httpapi

import (
	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/go-playground/validator/v10"
)

type CreateReservationRequest struct {
	ReservationDate string `json:"reservation_date" validate:"required,civildate"`
	ReservationTime string `json:"reservation_time" validate:"required,civiltime"`
}

type RescheduleReservationRequest struct {
	ReservationID string `json:"reservation_id" validate:"required,uuid"`
	NewDate       string `json:"new_date" validate:"required,civildate"`
	NewTime       string `json:"new_time" validate:"required,civiltime"`
}

type ReservationIDRequest struct {
	ReservationID string `json:"reservation_id" validate:"required,uuid"`
}

type RenewPlanRequest struct {
	ClientPlanID string `json:"client_plan_id" validate:"required,uuid"`
}

type ChangePlanRequest struct {
	ClientPlanID string `json:"client_plan_id" validate:"required,uuid"`
	NewPlanID    int64  `json:"new_plan_id" validate:"required,gt=0"`
}

type LinkTelegramRequest struct {
	TelegramID int64 `json:"telegram_id" validate:"required,gt=0"`
}

// newValidator валидатор с правилами для дат и времени зала
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("civildate", func(fl validator.FieldLevel) bool {
		_, err := civil.ParseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("civiltime", func(fl validator.FieldLevel) bool {
		_, err := civil.ParseTime(fl.Field().String())
		return err == nil
	})

	return v
}
