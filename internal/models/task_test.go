package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTask_Total(t *testing.T) {
	tests := []struct {
		name string
		task Task
		want float64
	}{
		{
			name: "non-billable task is always zero",
			task: Task{Billable: false, BillingType: BillingHourly, HoursWorked: 10, HourlyRate: 50},
			want: 0,
		},
		{
			name: "hourly billing multiplies hours by rate",
			task: Task{Billable: true, BillingType: BillingHourly, HoursWorked: 12.5, HourlyRate: 40},
			want: 500,
		},
		{
			name: "fixed billing returns fixed amount",
			task: Task{Billable: true, BillingType: BillingFixed, FixedAmount: 1500, HoursWorked: 3, HourlyRate: 99},
			want: 1500,
		},
		{
			name: "hourly with zero hours",
			task: Task{Billable: true, BillingType: BillingHourly, HoursWorked: 0, HourlyRate: 80},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.task.Total(), 1e-9)
		})
	}
}

func TestTask_RemainingDue(t *testing.T) {
	tests := []struct {
		name string
		task Task
		want float64
	}{
		{
			name: "non-billable owes nothing even with advance",
			task: Task{Billable: false, AdvancePayment: 100},
			want: 0,
		},
		{
			name: "hourly minus advance",
			task: Task{Billable: true, BillingType: BillingHourly, HoursWorked: 10, HourlyRate: 30, AdvancePayment: 120},
			want: 180,
		},
		{
			name: "fixed minus advance",
			task: Task{Billable: true, BillingType: BillingFixed, FixedAmount: 900, AdvancePayment: 900},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.task.RemainingDue(), 1e-9)
		})
	}
}

func TestSubscription_Active(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 1, 0)
	past := now.AddDate(0, -1, 0)

	tests := []struct {
		name string
		sub  *Subscription
		want bool
	}{
		{name: "nil subscription", sub: nil, want: false},
		{name: "flag unset", sub: &Subscription{IsPremium: false, ExpiresAt: &future}, want: false},
		{name: "premium without expiry", sub: &Subscription{IsPremium: true}, want: true},
		{name: "premium with future expiry", sub: &Subscription{IsPremium: true, ExpiresAt: &future}, want: true},
		{name: "premium expired", sub: &Subscription{IsPremium: true, ExpiresAt: &past}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.Active(now))
		})
	}
}
