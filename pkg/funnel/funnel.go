// Package funnel computes paid-traffic funnel projections: how an ad
// investment converts into leads, appointments, attendances, sales, and the
// derived cost, return, and staffing metrics.
package funnel

import (
	"math"

	"go.uber.org/zap"

	"github.com/captaleads/funnelcast/pkg/constants"
	"github.com/captaleads/funnelcast/pkg/mathutil"
)

// Inputs holds the six acquisition parameters of a projection. Rates are
// percentages, e.g. 25 means 25%.
type Inputs struct {
	Investment     float64 `json:"investment"`
	CostPerLead    float64 `json:"cost_per_lead"`
	SchedulingRate float64 `json:"scheduling_rate"`
	AttendanceRate float64 `json:"attendance_rate"`
	ConversionRate float64 `json:"conversion_rate"`
	AverageTicket  float64 `json:"average_ticket"`
}

// Metrics holds the projected funnel outcome. Stage counts are truncated
// integers; monetary and percentage values are rounded to two decimals.
type Metrics struct {
	Leads             int     `json:"leads"`
	Appointments      int     `json:"appointments"`
	Attendances       int     `json:"attendances"`
	Sales             int     `json:"sales"`
	Revenue           float64 `json:"revenue"`
	Profit            float64 `json:"profit"`
	CAC               float64 `json:"cac"`
	ROAS              float64 `json:"roas"`
	CostPerAttendance float64 `json:"cost_per_attendance"`
	SchedulersNeeded  int     `json:"schedulers_needed"`
	ClosersNeeded     int     `json:"closers_needed"`
	FunnelConversion  float64 `json:"funnel_conversion"`
	RevenuePerLead    float64 `json:"revenue_per_lead"`
}

// Projector computes funnel projections.
type Projector struct {
	logger *zap.Logger
}

// NewProjector creates a new projector with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewProjector(logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{logger: logger}
}

// Project derives the full metric set from the given inputs. Negative inputs
// are clamped to zero and every division is guarded, so Project never fails.
func (p *Projector) Project(in Inputs) Metrics {
	in = in.sanitize()

	var m Metrics
	if in.CostPerLead > 0 {
		m.Leads = int(in.Investment / in.CostPerLead)
	}
	m.Appointments = int(float64(m.Leads) * toDecimal(in.SchedulingRate))
	m.Attendances = int(float64(m.Appointments) * toDecimal(in.AttendanceRate))
	m.Sales = int(float64(m.Attendances) * toDecimal(in.ConversionRate))

	m.Revenue = mathutil.Round(float64(m.Sales) * in.AverageTicket)
	m.Profit = mathutil.Round(m.Revenue - in.Investment)
	if m.Sales > 0 {
		m.CAC = mathutil.Round(in.Investment / float64(m.Sales))
	}
	if in.Investment > 0 {
		m.ROAS = mathutil.Round(m.Revenue / in.Investment)
	}
	if m.Attendances > 0 {
		m.CostPerAttendance = mathutil.Round(in.Investment / float64(m.Attendances))
	}

	m.SchedulersNeeded = max(1, mathutil.CeilDiv(m.Attendances, constants.SchedulerCapacity))
	m.ClosersNeeded = max(1, mathutil.CeilDiv(m.Sales, constants.CloserCapacity))

	if m.Leads > 0 {
		m.FunnelConversion = mathutil.Round(float64(m.Sales) / float64(m.Leads) * constants.PercentageDivisor)
		m.RevenuePerLead = mathutil.Round(m.Revenue / float64(m.Leads))
	}

	p.logger.Debug("computed funnel projection",
		zap.String("op", "funnel.Project"),
		zap.Float64("investment", in.Investment),
		zap.Int("leads", m.Leads),
		zap.Int("sales", m.Sales),
		zap.Float64("revenue", m.Revenue),
	)
	return m
}

// sanitize clamps negative and non-finite inputs to zero so the derivation
// chain only ever sees non-negative finite values.
func (in Inputs) sanitize() Inputs {
	in.Investment = clampNonNegative(in.Investment)
	in.CostPerLead = clampNonNegative(in.CostPerLead)
	in.SchedulingRate = clampNonNegative(in.SchedulingRate)
	in.AttendanceRate = clampNonNegative(in.AttendanceRate)
	in.ConversionRate = clampNonNegative(in.ConversionRate)
	in.AverageTicket = clampNonNegative(in.AverageTicket)
	return in
}

func clampNonNegative(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}

func toDecimal(percentage float64) float64 {
	return percentage / constants.PercentageDivisor
}
