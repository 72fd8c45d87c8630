package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string
	InputDir  string // raw trip GeoJSON files, one per trip
	OutputDir string // processed per-trip GeoJSON files
	Workers   int    // concurrent trip workers for batch import

	Pipeline PipelineConfig
}

// PipelineConfig carries every tunable of the per-trip processing pipeline
// and the cross-trip aggregator. It is passed explicitly into the pipeline
// entry points so tests can inject alternate values without touching
// process-wide state.
type PipelineConfig struct {
	// Speed estimation
	DefaultWheelDiameterMM float64 // fallback when no metadata resolves
	SampleRateHz           float64 // sample cadence of the device
	MaxSegmentDurationS    float64 // reject candidates above this
	MaxGPSJumpM            float64 // reject candidates above this
	SpeedCapKmh            float64 // clamp spikes down to this
	MaxSpeedKmh            float64 // discard anything still at or above this

	// Road quality scoring
	QualityWindowSize int       // samples per window
	QualityOverlap    float64   // 0 <= overlap < 1
	QualityMinSamples int       // below this, no quality data
	QualityThresholds []float64 // 4 ascending std-dev bounds for levels 1..4

	// Cross-trip aggregation
	RoundPrecision   int // decimal degrees for segment keys
	MinBucketSamples int // buckets below this are dropped

	// Trips to skip, sensor serial -> trip names
	SkipTrips map[string][]string
}

// DefaultPipeline returns the pipeline defaults used in production
func DefaultPipeline() PipelineConfig {
	return PipelineConfig{
		DefaultWheelDiameterMM: 711, // 26 inch wheel
		SampleRateHz:           50,
		MaxSegmentDurationS:    600,
		MaxGPSJumpM:            1000,
		SpeedCapKmh:            40,
		MaxSpeedKmh:            100,

		QualityWindowSize: 100,
		QualityOverlap:    0.5,
		QualityMinSamples: 200,
		QualityThresholds: []float64{0.05, 0.12, 0.25, 0.50},

		RoundPrecision:   4,
		MinBucketSamples: 2,

		SkipTrips: map[string][]string{
			"602CD": {"Trip1"},
			"604F0": {"Trip1"},
		},
	}
}

// SecondsPerSample returns the fixed-rate fallback interval between samples
func (p PipelineConfig) SecondsPerSample() float64 {
	if p.SampleRateHz <= 0 {
		return 0
	}
	return 1 / p.SampleRateHz
}

// ShouldSkip reports whether a sensor/trip combination is on the skip list
func (p PipelineConfig) ShouldSkip(serial, trip string) bool {
	for _, t := range p.SkipTrips[serial] {
		if t == trip {
			return true
		}
	}
	return false
}

// Load reads configuration from the environment (and .env if present)
func Load() *Config {
	// A missing .env is fine, the environment wins either way
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/velotrace.db"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-in-production"
	}

	inputDir := os.Getenv("INPUT_DIR")
	if inputDir == "" {
		inputDir = "./sensor_data"
	}

	outputDir := os.Getenv("OUTPUT_DIR")
	if outputDir == "" {
		outputDir = "./processed_sensor_data"
	}

	workers := 4
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			workers = n
		}
	}

	return &Config{
		Port:      port,
		DBPath:    dbPath,
		JWTSecret: jwtSecret,
		InputDir:  inputDir,
		OutputDir: outputDir,
		Workers:   workers,
		Pipeline:  DefaultPipeline(),
	}
}
