// Package memory implements the repository interfaces on in-process maps.
// It backs unit tests and keeps the same conditional-update semantics as the gorm repositories.
package memory

import (
	"sort"
	"sync"
	"time"

	"sajilo_backend/internal/models"
	"sajilo_backend/internal/repositories"

	"github.com/google/uuid"
)

// Store holds every collection behind one lock.
type Store struct {
	mu sync.Mutex

	users    map[string]*models.User
	admins   map[string]*models.Admin
	sessions map[string]*models.Session
	otps     map[string]*models.Otp
	invoices map[string]*models.Invoice
	tickets  map[string]*models.Ticket

	calls map[string]int
	now   func() time.Time
}

// New returns an empty store. now stamps CreatedAt/UpdatedAt; nil means time.Now.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		users:    map[string]*models.User{},
		admins:   map[string]*models.Admin{},
		sessions: map[string]*models.Session{},
		otps:     map[string]*models.Otp{},
		invoices: map[string]*models.Invoice{},
		tickets:  map[string]*models.Ticket{},
		calls:    map[string]int{},
		now:      now,
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users:    (*userRepo)(s),
		Admins:   (*adminRepo)(s),
		Sessions: (*sessionRepo)(s),
		Otps:     (*otpRepo)(s),
		Invoices: (*invoiceRepo)(s),
		Tickets:  (*ticketRepo)(s),
	}
}

// Calls returns how many times a method such as "sessions.ExpireIfActive" changed a row.
func (s *Store) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *Store) record(method string) {
	s.calls[method]++
}

func (s *Store) stamp(id *string, created, updated *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	now := s.now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func paginate[T any](items []T, page repositories.Pagination) []T {
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func newestFirst[T any](items []T, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]).After(created(items[j]))
	})
}
