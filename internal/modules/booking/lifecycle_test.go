package booking

import (
	"testing"

	"rentview/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestLifecycle_LegalTransitions(t *testing.T) {
	l := NewLifecycle(nil)

	legal := [][2]domain.BookingStatus{
		{domain.BookingPending, domain.BookingConfirmed},
		{domain.BookingPending, domain.BookingCancelled},
		{domain.BookingPending, domain.BookingExpired},
		{domain.BookingConfirmed, domain.BookingOnSite},
		{domain.BookingConfirmed, domain.BookingCancelled},
		{domain.BookingConfirmed, domain.BookingExpired},
		{domain.BookingOnSite, domain.BookingCompleted},
	}
	for _, pair := range legal {
		assert.NoError(t, l.Check(pair[0], pair[1]), "%s -> %s should be legal", pair[0], pair[1])
	}
}

func TestLifecycle_IllegalTransitions(t *testing.T) {
	l := NewLifecycle(nil)

	illegal := [][2]domain.BookingStatus{
		{domain.BookingPending, domain.BookingOnSite}, // must confirm first
		{domain.BookingPending, domain.BookingCompleted},
		{domain.BookingOnSite, domain.BookingCancelled},
		{domain.BookingCancelled, domain.BookingConfirmed},
		{domain.BookingCompleted, domain.BookingPending},
		{domain.BookingExpired, domain.BookingConfirmed},
	}
	for _, pair := range illegal {
		assert.ErrorIs(t, l.Check(pair[0], pair[1]), ErrIllegalTransition, "%s -> %s should be illegal", pair[0], pair[1])
	}
}

func TestBookingStatus_Parse(t *testing.T) {
	status, ok := domain.ParseBookingStatus("confirmed")
	assert.True(t, ok)
	assert.Equal(t, domain.BookingConfirmed, status)

	_, ok = domain.ParseBookingStatus("whatever")
	assert.False(t, ok)

	_, ok = domain.ParseBookingStatus("")
	assert.False(t, ok)
}

func TestBookingStatus_TerminalAndActive(t *testing.T) {
	assert.True(t, domain.BookingCancelled.IsTerminal())
	assert.True(t, domain.BookingCompleted.IsTerminal())
	assert.True(t, domain.BookingExpired.IsTerminal())
	assert.False(t, domain.BookingPending.IsTerminal())

	assert.True(t, domain.BookingPending.IsActive())
	assert.True(t, domain.BookingConfirmed.IsActive())
	assert.True(t, domain.BookingOnSite.IsActive())
	assert.False(t, domain.BookingCancelled.IsActive())
}
