package funnel

import (
	"math"
	"testing"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name     string
		inputs   Inputs
		expected Metrics
	}{
		{
			name: "reference projection",
			inputs: Inputs{
				Investment:     10000,
				CostPerLead:    50,
				SchedulingRate: 20,
				AttendanceRate: 80,
				ConversionRate: 25,
				AverageTicket:  500,
			},
			expected: Metrics{
				Leads:             200,
				Appointments:      40,
				Attendances:       32,
				Sales:             8,
				Revenue:           4000,
				Profit:            -6000,
				CAC:               1250,
				ROAS:              0.4,
				CostPerAttendance: 312.5,
				SchedulersNeeded:  1,
				ClosersNeeded:     1,
				FunnelConversion:  4,
				RevenuePerLead:    20,
			},
		},
		{
			name:   "all zero inputs",
			inputs: Inputs{},
			expected: Metrics{
				SchedulersNeeded: 1,
				ClosersNeeded:    1,
			},
		},
		{
			name: "zero cost per lead guards the whole chain",
			inputs: Inputs{
				Investment:     10000,
				CostPerLead:    0,
				SchedulingRate: 20,
				AttendanceRate: 80,
				ConversionRate: 25,
				AverageTicket:  500,
			},
			expected: Metrics{
				Profit:           -10000,
				SchedulersNeeded: 1,
				ClosersNeeded:    1,
			},
		},
		{
			name: "stage counts truncate toward zero",
			inputs: Inputs{
				Investment:     1000,
				CostPerLead:    30,
				SchedulingRate: 50,
				AttendanceRate: 50,
				ConversionRate: 50,
				AverageTicket:  250,
			},
			expected: Metrics{
				Leads:             33,
				Appointments:      16,
				Attendances:       8,
				Sales:             4,
				Revenue:           1000,
				Profit:            0,
				CAC:               250,
				ROAS:              1,
				CostPerAttendance: 125,
				SchedulersNeeded:  1,
				ClosersNeeded:     1,
				FunnelConversion:  12.12,
				RevenuePerLead:    30.3,
			},
		},
		{
			name: "staffing scales with volume",
			inputs: Inputs{
				Investment:     100000,
				CostPerLead:    10,
				SchedulingRate: 30,
				AttendanceRate: 60,
				ConversionRate: 10,
				AverageTicket:  100,
			},
			expected: Metrics{
				Leads:             10000,
				Appointments:      3000,
				Attendances:       1800,
				Sales:             180,
				Revenue:           18000,
				Profit:            -82000,
				CAC:               555.56,
				ROAS:              0.18,
				CostPerAttendance: 55.56,
				SchedulersNeeded:  10,
				ClosersNeeded:     2,
				FunnelConversion:  1.8,
				RevenuePerLead:    1.8,
			},
		},
		{
			name: "negative inputs clamp to zero",
			inputs: Inputs{
				Investment:     -5000,
				CostPerLead:    -50,
				SchedulingRate: -20,
				AttendanceRate: -80,
				ConversionRate: -25,
				AverageTicket:  -500,
			},
			expected: Metrics{
				SchedulersNeeded: 1,
				ClosersNeeded:    1,
			},
		},
		{
			name: "non-finite inputs clamp to zero",
			inputs: Inputs{
				Investment:     math.NaN(),
				CostPerLead:    math.Inf(1),
				SchedulingRate: 20,
				AttendanceRate: 80,
				ConversionRate: 25,
				AverageTicket:  500,
			},
			expected: Metrics{
				SchedulersNeeded: 1,
				ClosersNeeded:    1,
			},
		},
	}

	projector := NewProjector(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := projector.Project(tt.inputs)
			if result != tt.expected {
				t.Errorf("Project(%+v) = %+v, expected %+v", tt.inputs, result, tt.expected)
			}
		})
	}
}

func TestProjectStaffingFloor(t *testing.T) {
	projector := NewProjector(nil)
	inputs := []Inputs{
		{},
		{Investment: 10000, CostPerLead: 50},
		{Investment: 10000, CostPerLead: 50, SchedulingRate: 20, AttendanceRate: 80, ConversionRate: 25, AverageTicket: 500},
	}
	for _, in := range inputs {
		result := projector.Project(in)
		if result.SchedulersNeeded < 1 {
			t.Errorf("Project(%+v).SchedulersNeeded = %d, expected at least 1", in, result.SchedulersNeeded)
		}
		if result.ClosersNeeded < 1 {
			t.Errorf("Project(%+v).ClosersNeeded = %d, expected at least 1", in, result.ClosersNeeded)
		}
	}
}

func TestNewProjectorNilLogger(t *testing.T) {
	projector := NewProjector(nil)
	if projector == nil {
		t.Fatal("NewProjector(nil) returned nil")
	}
	// Must not panic when projecting with the fallback logger.
	projector.Project(Inputs{Investment: 100, CostPerLead: 10})
}
