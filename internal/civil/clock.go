package civil

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Clock источник текущих даты и времени в календаре зала
type Clock interface {
	Now() DateTime
	Today() Date
}

// ZoneClock читает системные часы и переводит их в зону зала
type ZoneClock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock создаёт часы для зоны loc независимо от TZ процесса
func NewClock(loc *time.Location) *ZoneClock {
	return &ZoneClock{loc: loc, now: time.Now}
}

func (c *ZoneClock) Now() DateTime {
	return DateTimeOf(c.now().In(c.loc))
}

func (c *ZoneClock) Today() Date {
	return c.Now().Date
}

// Location зона часов
func (c *ZoneClock) Location() *time.Location {
	return c.loc
}

// ParseOffset разбирает смещение вида "-03:00" или "+05:30" в фиксированную зону
func ParseOffset(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "Z") {
		return time.UTC, nil
	}
	t, err := time.Parse("-07:00", s)
	if err != nil {
		return nil, fmt.Errorf("parse utc offset %q: %w", s, err)
	}
	_, offset := t.Zone()
	return time.FixedZone("UTC"+s, offset), nil
}

// FixedClock часы с ручным управлением, для тестов
type FixedClock struct {
	mu  sync.RWMutex
	now DateTime
}

// NewFixedClock создаёт часы, остановленные на now
func NewFixedClock(now DateTime) *FixedClock {
	return &FixedClock{now: now}
}

func (c *FixedClock) Now() DateTime {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *FixedClock) Today() Date {
	return c.Now().Date
}

// Set переставляет часы
func (c *FixedClock) Set(now DateTime) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
