package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/Freeeeeet/gym_scheduler/internal/model"
)

// DefaultSlotCapacity максимум активных броней на один слот
const DefaultSlotCapacity = 5

// SlotCapacityIndex считает занятость слотов
type SlotCapacityIndex struct {
	capacity int
}

func NewSlotCapacityIndex(capacity int) *SlotCapacityIndex {
	if capacity <= 0 {
		capacity = DefaultSlotCapacity
	}
	return &SlotCapacityIndex{capacity: capacity}
}

// Capacity потолок слота
func (c *SlotCapacityIndex) Capacity() int {
	return c.capacity
}

// CountActive количество активных броней на слот
func (c *SlotCapacityIndex) CountActive(ctx context.Context, store ReservationStore, slot model.Slot) (int, error) {
	count, err := store.CountActiveBySlot(ctx, slot)
	if err != nil {
		return 0, fmt.Errorf("count active reservations: %w", err)
	}
	return count, nil
}

// HasCapacity есть ли свободное место. Внутри движка вызывается только после LockSlot.
func (c *SlotCapacityIndex) HasCapacity(ctx context.Context, store ReservationStore, slot model.Slot) (bool, error) {
	count, err := c.CountActive(ctx, store, slot)
	if err != nil {
		return false, err
	}
	return count < c.capacity, nil
}

// SlotAvailability занятость одного часа для экрана записи
type SlotAvailability struct {
	Time      civil.Time `json:"time"`
	Active    int        `json:"active"`
	Available int        `json:"available"`
	Full      bool       `json:"full"`
}

// Availability занятость предложенных часов даты. Только для отображения:
// решение о записи принимает движок под блокировкой слота.
func (c *SlotCapacityIndex) Availability(ctx context.Context, store ReservationStore, date civil.Date, hours []civil.Time) ([]SlotAvailability, error) {
	counts, err := store.CountActiveByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("count active reservations by date: %w", err)
	}

	slots := make([]SlotAvailability, 0, len(hours))
	for _, h := range hours {
		active := counts[h]
		available := c.capacity - active
		if available < 0 {
			available = 0
		}
		slots = append(slots, SlotAvailability{
			Time:      h,
			Active:    active,
			Available: available,
			Full:      available == 0,
		})
	}
	return slots, nil
}
