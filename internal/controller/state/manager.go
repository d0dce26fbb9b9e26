package state

import (
	"sync"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/google/uuid"
)

// Manager хранит диалоги пользователей бота в памяти процесса
type Manager struct {
	mu      sync.RWMutex
	dialogs map[int64]Dialog // telegramID -> диалог
}

// NewManager создаёт новый менеджер состояний
func NewManager() *Manager {
	return &Manager{
		dialogs: make(map[int64]Dialog),
	}
}

// Get текущий диалог пользователя, StateNone если его нет
func (sm *Manager) Get(telegramID int64) Dialog {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.dialogs[telegramID]
}

// GetState получает текущий шаг пользователя
func (sm *Manager) GetState(telegramID int64) UserState {
	return sm.Get(telegramID).State
}

// StartBooking начинает диалог записи
func (sm *Manager) StartBooking(telegramID int64) {
	sm.set(telegramID, Dialog{State: StateBookDate})
}

// StartReschedule начинает диалог переноса брони
func (sm *Manager) StartReschedule(telegramID int64, reservationID uuid.UUID) {
	sm.set(telegramID, Dialog{State: StateRescheduleDate, ReservationID: reservationID})
}

// ChooseDate запоминает дату и переводит диалог к выбору времени.
// Возвращает false, если диалог не ждёт дату.
func (sm *Manager) ChooseDate(telegramID int64, date civil.Date) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	dialog, exists := sm.dialogs[telegramID]
	if !exists {
		return false
	}

	switch dialog.State {
	case StateBookDate:
		dialog.State = StateBookTime
	case StateRescheduleDate:
		dialog.State = StateRescheduleTime
	default:
		return false
	}

	dialog.Date = date
	sm.dialogs[telegramID] = dialog
	return true
}

// ClearState очищает диалог пользователя
func (sm *Manager) ClearState(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.dialogs, telegramID)
}

func (sm *Manager) set(telegramID int64, dialog Dialog) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.dialogs[telegramID] = dialog
}
