package domain

import "time"

// SimulationResult is produced by each feasibility evaluation; the
// optimizer returns the last one it computed. Sample arrays are populated
// always internally but omitted from serialisation unless IncludeSamples is
// requested by the caller (§6).
type SimulationResult struct {
	Bid         float64
	Sims        int
	ItemsInCore int

	RevenueBySim []float64
	Cash60dBySim []float64
	ROIBySim     []float64

	ROIP5, ROIP50, ROIP95    float64
	CashP5, CashP50, CashP95 float64

	ProbROIGeTarget *float64 // nil when core set is empty
	ExpectedCash60d float64

	MeetsConstraints bool

	// Echoed audit fields (§6).
	ROITarget     float64
	RiskThreshold float64
	MinCash60d    *float64
	MinCash60dP5  *float64

	ThroughputOK                bool
	TotalMinutesRequired        float64
	AvailableMinutes            float64

	Iterations int
	Timestamp  time.Time
}

// Payload is the wire-shape of SimulationResult, honoring the
// include_samples flag from §6. Use NewPayload to build one from a result.
type Payload struct {
	Bid         float64 `json:"bid"`
	Sims        int     `json:"sims"`
	ItemsInCore int     `json:"items_in_core"`

	RevenueBySim []float64 `json:"revenue_by_sim,omitempty"`
	Cash60dBySim []float64 `json:"cash_60d_by_sim,omitempty"`
	ROIBySim     []float64 `json:"roi_by_sim,omitempty"`

	ROIP5  float64 `json:"roi_p5"`
	ROIP50 float64 `json:"roi_p50"`
	ROIP95 float64 `json:"roi_p95"`

	CashP5  float64 `json:"cash_p5"`
	CashP50 float64 `json:"cash_p50"`
	CashP95 float64 `json:"cash_p95"`

	ProbROIGeTarget *float64 `json:"prob_roi_ge_target"`
	ExpectedCash60d float64  `json:"expected_cash_60d"`

	MeetsConstraints bool `json:"meets_constraints"`

	ROITarget     float64  `json:"roi_target"`
	RiskThreshold float64  `json:"risk_threshold"`
	MinCash60d    *float64 `json:"min_cash_60d"`
	MinCash60dP5  *float64 `json:"min_cash_60d_p5"`

	ThroughputOK          bool    `json:"throughput_ok"`
	TotalMinutesRequired  float64 `json:"total_minutes_required"`
	AvailableMinutes      float64 `json:"available_minutes"`

	Iterations int       `json:"iterations"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewPayload converts a SimulationResult to its wire form. includeSamples
// controls whether the three per-sim arrays are attached.
func NewPayload(r SimulationResult, includeSamples bool) Payload {
	p := Payload{
		Bid:                  r.Bid,
		Sims:                 r.Sims,
		ItemsInCore:          r.ItemsInCore,
		ROIP5:                r.ROIP5,
		ROIP50:               r.ROIP50,
		ROIP95:               r.ROIP95,
		CashP5:               r.CashP5,
		CashP50:              r.CashP50,
		CashP95:              r.CashP95,
		ProbROIGeTarget:      r.ProbROIGeTarget,
		ExpectedCash60d:      r.ExpectedCash60d,
		MeetsConstraints:     r.MeetsConstraints,
		ROITarget:            r.ROITarget,
		RiskThreshold:        r.RiskThreshold,
		MinCash60d:           r.MinCash60d,
		MinCash60dP5:         r.MinCash60dP5,
		ThroughputOK:         r.ThroughputOK,
		TotalMinutesRequired: r.TotalMinutesRequired,
		AvailableMinutes:     r.AvailableMinutes,
		Iterations:           r.Iterations,
		Timestamp:            r.Timestamp,
	}
	if includeSamples {
		p.RevenueBySim = r.RevenueBySim
		p.Cash60dBySim = r.Cash60dBySim
		p.ROIBySim = r.ROIBySim
	}
	return p
}
