package handlers

import (
	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

// Префиксы callback data
const (
	callbackDate          = "date:"      // date:2024-01-15
	callbackTime          = "time:"      // time:18:30
	callbackCancelReserve = "cancelres:" // cancelres:<uuid>
	callbackFinish        = "finish:"    // finish:<uuid>
)

const (
	bookingDaysAhead = 7
	buttonsPerRow    = 3
)

// keyboardBuilder упрощает создание inline клавиатур
type keyboardBuilder struct {
	rows [][]models.InlineKeyboardButton
}

func newKeyboard() *keyboardBuilder {
	return &keyboardBuilder{}
}

// row добавляет новый ряд кнопок
func (k *keyboardBuilder) row(buttons ...models.InlineKeyboardButton) *keyboardBuilder {
	if len(buttons) > 0 {
		k.rows = append(k.rows, buttons)
	}
	return k
}

// grid раскладывает кнопки по рядам фиксированной ширины
func (k *keyboardBuilder) grid(buttons []models.InlineKeyboardButton, perRow int) *keyboardBuilder {
	for start := 0; start < len(buttons); start += perRow {
		end := min(start+perRow, len(buttons))
		k.row(buttons[start:end]...)
	}
	return k
}

func (k *keyboardBuilder) build() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: k.rows}
}

func button(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: callbackData}
}

// datesKeyboard ближайшие дни для записи. weekdaysOnly для переноса брони
func datesKeyboard(today civil.Date, weekdaysOnly bool) *models.InlineKeyboardMarkup {
	var buttons []models.InlineKeyboardButton
	for i := 0; i < bookingDaysAhead; i++ {
		d := today.AddDays(i)
		if weekdaysOnly && d.IsWeekend() {
			continue
		}
		buttons = append(buttons, button(formatDateShort(d), callbackDate+d.String()))
	}
	return newKeyboard().grid(buttons, buttonsPerRow).build()
}

// timesKeyboard кнопки только для часов со свободными местами
func timesKeyboard(slots []service.SlotAvailability) *models.InlineKeyboardMarkup {
	var buttons []models.InlineKeyboardButton
	for _, s := range slots {
		if s.Full {
			continue
		}
		buttons = append(buttons, button(s.Time.String(), callbackTime+s.Time.String()))
	}
	return newKeyboard().grid(buttons, buttonsPerRow).build()
}

func cancelReservationKeyboard(id uuid.UUID) *models.InlineKeyboardMarkup {
	return newKeyboard().row(button("❌ Отменить бронь", callbackCancelReserve+id.String())).build()
}

func finishKeyboard(id uuid.UUID) *models.InlineKeyboardMarkup {
	return newKeyboard().row(button("✅ Провести", callbackFinish+id.String())).build()
}
