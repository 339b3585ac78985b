package helio

import (
	kitlog "github.com/go-kit/kit/log"
	"github.com/spf13/viper"
)

// Config holds the externally loaded physical constants and simulation
// parameters. The physics core only reads it, never persists it.
type Config struct {
	// Physics
	GravityConstant  float64
	AirDensity       float64 // sea level, kg/m³
	ScaleHeight      float64 // m
	DragCoefficient  float64
	CrossSectionArea float64 // m²
	Theta            float64 // Barnes-Hut opening angle
	Softening        float64 // m

	// Rocket
	RocketMass            float64 // wet mass, kg
	RocketFuelMass        float64 // kg
	RocketThrust          float64 // N
	RocketExhaustVelocity float64 // m/s

	// Prediction
	PredictionDuration  float64 // s
	PredictionStep      float64 // s
	PredictionMaxPoints int
	PredictionInterval  float64 // s of simulation time between refreshes

	FlightPlanPath string
}

// DefaultConfig returns the compiled-in defaults.
func DefaultConfig() Config {
	return Config{
		GravityConstant:  6.674e-11,
		AirDensity:       1.225,
		ScaleHeight:      8000,
		DragCoefficient:  0.1,
		CrossSectionArea: 0.5,
		Theta:            defaultTheta,
		Softening:        defaultSoftening,

		RocketMass:            501000,
		RocketFuelMass:        500000,
		RocketThrust:          20000000,
		RocketExhaustVelocity: 3000,

		PredictionDuration:  30,
		PredictionStep:      0.1,
		PredictionMaxPoints: 500,
		PredictionInterval:  2,

		FlightPlanPath: "flight_plan.json",
	}
}

// LoadConfig reads conf.toml from the provided directory. A missing or
// unreadable file falls back to the defaults with a warning; this is user
// configuration, not programmer error.
func LoadConfig(confPath string, logger kitlog.Logger) Config {
	if logger == nil {
		panic("config logger may not be nil")
	}
	def := DefaultConfig()
	viper.SetConfigName("conf")
	viper.AddConfigPath(confPath)

	viper.SetDefault("physics.gravity_constant", def.GravityConstant)
	viper.SetDefault("physics.air_density", def.AirDensity)
	viper.SetDefault("physics.scale_height", def.ScaleHeight)
	viper.SetDefault("physics.drag_coefficient", def.DragCoefficient)
	viper.SetDefault("physics.cross_section_area", def.CrossSectionArea)
	viper.SetDefault("physics.theta", def.Theta)
	viper.SetDefault("physics.softening", def.Softening)
	viper.SetDefault("rocket.mass", def.RocketMass)
	viper.SetDefault("rocket.fuel_mass", def.RocketFuelMass)
	viper.SetDefault("rocket.thrust", def.RocketThrust)
	viper.SetDefault("rocket.exhaust_velocity", def.RocketExhaustVelocity)
	viper.SetDefault("prediction.duration", def.PredictionDuration)
	viper.SetDefault("prediction.step", def.PredictionStep)
	viper.SetDefault("prediction.max_points", def.PredictionMaxPoints)
	viper.SetDefault("prediction.interval", def.PredictionInterval)
	viper.SetDefault("flight_plan.path", def.FlightPlanPath)

	if err := viper.ReadInConfig(); err != nil {
		logger.Log("level", "warning", "subsys", "conf", "message", "using default configuration", "err", err)
	}

	return Config{
		GravityConstant:  viper.GetFloat64("physics.gravity_constant"),
		AirDensity:       viper.GetFloat64("physics.air_density"),
		ScaleHeight:      viper.GetFloat64("physics.scale_height"),
		DragCoefficient:  viper.GetFloat64("physics.drag_coefficient"),
		CrossSectionArea: viper.GetFloat64("physics.cross_section_area"),
		Theta:            viper.GetFloat64("physics.theta"),
		Softening:        viper.GetFloat64("physics.softening"),

		RocketMass:            viper.GetFloat64("rocket.mass"),
		RocketFuelMass:        viper.GetFloat64("rocket.fuel_mass"),
		RocketThrust:          viper.GetFloat64("rocket.thrust"),
		RocketExhaustVelocity: viper.GetFloat64("rocket.exhaust_velocity"),

		PredictionDuration:  viper.GetFloat64("prediction.duration"),
		PredictionStep:      viper.GetFloat64("prediction.step"),
		PredictionMaxPoints: viper.GetInt("prediction.max_points"),
		PredictionInterval:  viper.GetFloat64("prediction.interval"),

		FlightPlanPath: viper.GetString("flight_plan.path"),
	}
}
