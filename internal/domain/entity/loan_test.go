package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		loan Loan
		want LoanStatus
	}{
		{
			name: "due in the future is active",
			loan: Loan{DueAt: now.AddDate(0, 0, 3)},
			want: LoanActive,
		},
		{
			name: "due earlier today is still active",
			loan: Loan{DueAt: time.Date(2026, 8, 28, 1, 0, 0, 0, time.UTC)},
			want: LoanActive,
		},
		{
			name: "due yesterday is overdue",
			loan: Loan{DueAt: now.AddDate(0, 0, -1)},
			want: LoanOverdue,
		},
		{
			name: "explicit overdue from the backend is trusted",
			loan: Loan{DueAt: now.AddDate(0, 0, 3), Status: LoanOverdue},
			want: LoanOverdue,
		},
		{
			name: "returned absorbs a passed due date",
			loan: Loan{DueAt: now.AddDate(0, 0, -30), Status: LoanReturned},
			want: LoanReturned,
		},
		{
			name: "zero due date never goes overdue",
			loan: Loan{},
			want: LoanActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loan.EffectiveStatus(now))
		})
	}
}

func TestEffectiveStatusDoesNotMutateLoan(t *testing.T) {
	loan := Loan{DueAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	_ = loan.EffectiveStatus(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))

	assert.Empty(t, loan.Status, "derived status must never be written back")
}

func TestProfileNamespace(t *testing.T) {
	var nilProfile *Profile
	assert.Equal(t, GuestNamespace, nilProfile.Namespace())
	assert.Equal(t, GuestNamespace, (&Profile{}).Namespace())
	assert.Equal(t, "7", (&Profile{ID: "7"}).Namespace())
}

func TestCartItemProvisional(t *testing.T) {
	assert.True(t, CartItem{ID: -1}.Provisional())
	assert.False(t, CartItem{ID: 1}.Provisional())
	assert.False(t, CartItem{}.Provisional())
}
