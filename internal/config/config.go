// Package config loads process configuration from environment variables
// (plus an optional .env file via godotenv, mirroring the teacher's
// internal/config package) into one immutable Config value threaded
// explicitly through the pipeline — no package-level globals.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/lotgenius/core/internal/domain"
)

// Config holds ambient process configuration plus the pipeline's decision
// thresholds, fees, evidence policy, throughput, triangulation and sell
// model knobs (§3).
type Config struct {
	DataDir  string // base directory for the evidence ledger database
	LogLevel string // debug, info, warn, error
	DevMode  bool

	// Daemon mode (cmd/lotbid, §8).
	Mode          string // "run" or "daemon"
	ManifestPath  string // LOTBID_MODE=run
	ManifestDir   string // LOTBID_MODE=daemon
	SweepCron     string
	Port          int

	// Optional S3 mirror for the evidence ledger (§4.10).
	S3MirrorBucket string
	S3MirrorPrefix string

	Pipeline Pipeline
}

// Pipeline is the immutable configuration value threaded through
// EvidenceGate, PriceTriangulator, SellModel, RoiSimulator and BidOptimizer.
// Field names and defaults follow spec.md §3 exactly.
type Pipeline struct {
	// Decision thresholds.
	MinROITarget           float64
	RiskThreshold          float64
	SellthroughHorizonDays int
	CashFloor              float64
	VarAlpha               float64

	// Fees/costs.
	MarketplaceFeePct float64
	PaymentFeePct     float64
	PerOrderFeeFixed  float64
	ShippingPerOrder  float64
	PackagingPerOrder float64
	RefurbPerOrder    float64
	ReturnRate        float64
	SalvageFrac       float64
	SalvageFeePct     float64
	LotFixedCost      float64
	PayoutLagDays     int

	// Evidence.
	MinCompsBase          int
	AmbiguityBonusPerFlag int
	MinCompsMax           int
	RequireSecondary      bool
	LookbackDays          int
	GatedBrands           map[string]struct{}
	HazmatPolicy          domain.HazmatPolicy

	// Throughput.
	MinsPerUnit       float64
	CapacityMinsPerDay float64

	// Triangulation.
	CVFallback   float64
	SourcePriors map[string]float64

	// Sell model.
	SellModelKind          string // "proxy" or "loglogistic"
	RankPowerA             float64
	RankPowerB             float64
	MinRank                float64
	MaxRank                float64
	PriceElasticityBeta    float64
	HazardCap              float64
	SurvivalAlpha          float64
	SurvivalBeta           float64
	ConditionVelocityFactor map[domain.ConditionBucket]float64
	SeasonalityFactor      map[string]map[int]float64
	LadderElasticity       float64

	// Simulation mechanics.
	Sims int64
	Seed uint64

	// Bisection.
	BidLo     float64
	BidHi     float64
	BidTol    float64
	MaxIter   int
}

// Default returns the Pipeline configuration with spec.md §3's compiled-in
// defaults.
func Default() Pipeline {
	return Pipeline{
		MinROITarget:           1.25,
		RiskThreshold:          0.80,
		SellthroughHorizonDays: 60,
		CashFloor:              0.0,
		VarAlpha:               0.20,

		MarketplaceFeePct: 0.12,
		PaymentFeePct:     0.03,
		PerOrderFeeFixed:  0.40,
		ShippingPerOrder:  0.0,
		PackagingPerOrder: 0.0,
		RefurbPerOrder:    0.0,
		ReturnRate:        0.08,
		SalvageFrac:       0.50,
		SalvageFeePct:     0.0,
		LotFixedCost:      0.0,
		PayoutLagDays:     14,

		MinCompsBase:          3,
		AmbiguityBonusPerFlag: 1,
		MinCompsMax:           5,
		RequireSecondary:      true,
		LookbackDays:          180,
		GatedBrands:           map[string]struct{}{},
		HazmatPolicy:          domain.HazmatReview,

		MinsPerUnit:        5.0,
		CapacityMinsPerDay: 480.0,

		CVFallback: 0.20,
		SourcePriors: map[string]float64{
			"keepa": 0.50,
			"ebay":  0.35,
			"other": 0.15,
		},

		SellModelKind:       "proxy",
		RankPowerA:          500.0,
		RankPowerB:          -0.80,
		MinRank:             1.0,
		MaxRank:             2_000_000.0,
		PriceElasticityBeta: 0.8,
		HazardCap:           1.0,
		SurvivalAlpha:       45.0,
		SurvivalBeta:        1.5,
		ConditionVelocityFactor: map[domain.ConditionBucket]float64{
			domain.ConditionNew:      1.0,
			domain.ConditionLikeNew:  0.95,
			domain.ConditionOpenBox:  0.90,
			domain.ConditionUsedGood: 0.85,
			domain.ConditionUsedFair: 0.70,
			domain.ConditionForParts: 0.40,
			domain.ConditionUnknown:  0.80,
		},
		SeasonalityFactor: map[string]map[int]float64{},
		LadderElasticity:  -0.5,

		Sims: 2000,
		Seed: 1337,

		BidLo:   0,
		BidHi:   1000,
		BidTol:  10,
		MaxIter: 32,
	}
}

// Validate checks the invariants listed as ConfigInvalid in §7: non-finite
// thresholds, negative fees, an empty or inverted [lo, hi] bisection range.
func (p Pipeline) Validate() error {
	checks := []struct {
		name string
		bad  bool
	}{
		{"min_roi_target", !finite(p.MinROITarget)},
		{"risk_threshold", !finite(p.RiskThreshold) || p.RiskThreshold < 0 || p.RiskThreshold > 1},
		{"marketplace_fee_pct", p.MarketplaceFeePct < 0},
		{"payment_fee_pct", p.PaymentFeePct < 0},
		{"per_order_fee_fixed", p.PerOrderFeeFixed < 0},
		{"return_rate", p.ReturnRate < 0 || p.ReturnRate > 1},
		{"salvage_frac", p.SalvageFrac < 0},
		{"bid range", p.BidLo > p.BidHi},
		{"bid tol", p.BidTol <= 0},
		{"sims", p.Sims <= 0},
	}
	for _, c := range checks {
		if c.bad {
			return fmt.Errorf("%w: %s", domain.ErrConfigInvalid, c.name)
		}
	}
	return nil
}

func finite(f float64) bool {
	return f == f && f > -1e308 && f < 1e308
}

// Load reads ambient process configuration from environment variables (and
// an optional .env file), building the Pipeline defaults which env vars may
// override. dataDirOverride takes priority over LOTBID_DATA_DIR when set
// (mirroring the teacher's CLI-flag-over-env precedence).
func Load(dataDirOverride ...string) (*Config, error) {
	_ = godotenv.Load()

	dataDir := ""
	if len(dataDirOverride) > 0 && dataDirOverride[0] != "" {
		dataDir = dataDirOverride[0]
	} else {
		dataDir = getEnv("LOTBID_DATA_DIR", "")
		if dataDir == "" {
			dataDir = "./data"
		}
	}
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	pipeline := Default()
	applyPipelineEnvOverrides(&pipeline)

	cfg := &Config{
		DataDir:        absDataDir,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		Mode:           getEnv("LOTBID_MODE", "run"),
		ManifestPath:   getEnv("LOTBID_MANIFEST", ""),
		ManifestDir:    getEnv("LOTBID_MANIFEST_DIR", ""),
		SweepCron:      getEnv("LOTBID_SWEEP_CRON", "@every 5m"),
		Port:           getEnvAsInt("LOTBID_PORT", 8090),
		S3MirrorBucket: getEnv("LOTBID_LEDGER_S3_BUCKET", ""),
		S3MirrorPrefix: getEnv("LOTBID_LEDGER_S3_PREFIX", "ledger/"),
		Pipeline:       pipeline,
	}

	if err := cfg.Pipeline.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyPipelineEnvOverrides(p *Pipeline) {
	p.MinROITarget = getEnvAsFloat("LOTBID_MIN_ROI_TARGET", p.MinROITarget)
	p.RiskThreshold = getEnvAsFloat("LOTBID_RISK_THRESHOLD", p.RiskThreshold)
	p.SellthroughHorizonDays = getEnvAsInt("LOTBID_HORIZON_DAYS", p.SellthroughHorizonDays)
	p.CashFloor = getEnvAsFloat("LOTBID_CASHFLOOR", p.CashFloor)

	p.MarketplaceFeePct = getEnvAsFloat("LOTBID_MARKETPLACE_FEE_PCT", p.MarketplaceFeePct)
	p.PaymentFeePct = getEnvAsFloat("LOTBID_PAYMENT_FEE_PCT", p.PaymentFeePct)
	p.PerOrderFeeFixed = getEnvAsFloat("LOTBID_PER_ORDER_FEE_FIXED", p.PerOrderFeeFixed)
	p.ReturnRate = getEnvAsFloat("LOTBID_RETURN_RATE", p.ReturnRate)
	p.SalvageFrac = getEnvAsFloat("LOTBID_SALVAGE_FRAC", p.SalvageFrac)
	p.LotFixedCost = getEnvAsFloat("LOTBID_LOT_FIXED_COST", p.LotFixedCost)

	if brands := getEnv("LOTBID_GATED_BRANDS", ""); brands != "" {
		set := map[string]struct{}{}
		for _, b := range strings.Split(brands, ",") {
			b = strings.ToLower(strings.TrimSpace(b))
			if b != "" {
				set[b] = struct{}{}
			}
		}
		p.GatedBrands = set
	}
	if policy := getEnv("LOTBID_HAZMAT_POLICY", ""); policy != "" {
		p.HazmatPolicy = domain.HazmatPolicy(strings.ToLower(policy))
	}

	p.MinsPerUnit = getEnvAsFloat("LOTBID_MINS_PER_UNIT", p.MinsPerUnit)
	p.CapacityMinsPerDay = getEnvAsFloat("LOTBID_CAPACITY_MINS_PER_DAY", p.CapacityMinsPerDay)

	p.CVFallback = getEnvAsFloat("LOTBID_CV_FALLBACK", p.CVFallback)

	if kind := getEnv("LOTBID_SELL_MODEL", ""); kind != "" {
		p.SellModelKind = kind
	}
	p.PriceElasticityBeta = getEnvAsFloat("LOTBID_PRICE_ELASTICITY_BETA", p.PriceElasticityBeta)
	p.HazardCap = getEnvAsFloat("LOTBID_HAZARD_CAP", p.HazardCap)
	p.SurvivalAlpha = getEnvAsFloat("LOTBID_SURVIVAL_ALPHA", p.SurvivalAlpha)
	p.SurvivalBeta = getEnvAsFloat("LOTBID_SURVIVAL_BETA", p.SurvivalBeta)

	p.Sims = int64(getEnvAsInt("LOTBID_SIMS", int(p.Sims)))
	p.Seed = uint64(getEnvAsInt("LOTBID_SEED", int(p.Seed)))

	p.BidLo = getEnvAsFloat("LOTBID_BID_LO", p.BidLo)
	p.BidHi = getEnvAsFloat("LOTBID_BID_HI", p.BidHi)
	p.BidTol = getEnvAsFloat("LOTBID_BID_TOL", p.BidTol)
	p.MaxIter = getEnvAsInt("LOTBID_MAX_ITER", p.MaxIter)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
