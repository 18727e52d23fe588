package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFullNameSkipsMissingLastName(t *testing.T) {
	last := "Diaz"
	assert.Equal(t, "Ana Diaz", Student{FirstName: "Ana", LastName: &last}.FullName())
	assert.Equal(t, "Ana", Student{FirstName: "Ana"}.FullName())
	assert.Equal(t, "Maria", Parent{FirstName: "Maria"}.FullName())
}

func TestSessionActive(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	assert.True(t, Session{ExpiresAt: now.Add(time.Minute)}.Active(now))
	assert.False(t, Session{ExpiresAt: now}.Active(now))
	assert.False(t, Session{ExpiresAt: now.Add(time.Hour), Revoked: true}.Active(now))
}

func TestEnums(t *testing.T) {
	assert.True(t, PaymentStatusOverdue.Valid())
	assert.False(t, PaymentStatus("refunded").Valid())
	assert.Equal(t, 7, FrequencyWeekly.IntervalDays())
	assert.Equal(t, 14, FrequencyBiweekly.IntervalDays())
	assert.Equal(t, 0, Frequency("monthly").IntervalDays())
}

func TestPaymentPayer(t *testing.T) {
	parent := "p1"
	assert.Equal(t, Payer{Type: PayerParent, ID: "p1"}, Payment{ParentID: &parent}.Payer())
	assert.Equal(t, Payer{}, Payment{}.Payer())
}
