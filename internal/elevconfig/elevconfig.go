package elevconfig

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
	"github.com/dinaMadelen/elevdispatch/internal/elevworker"
	"github.com/dinaMadelen/elevdispatch/internal/logger"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var Log = logger.GetLogger()

const (
	ActuatorSimulator = "simulator"
	ActuatorUDP       = "udp"
	ActuatorNone      = "none"
)

type ActuatorConfig struct {
	Kind        string        `yaml:"kind"`
	LocalAddr   string        `yaml:"local_addr"`
	Addr        string        `yaml:"addr"`
	FloorTravel time.Duration `yaml:"floor_travel"`
	DoorOpen    time.Duration `yaml:"door_open"`
}

type Config struct {
	LogLevel      string         `yaml:"log_level"`
	Workers       int            `yaml:"workers"`
	MinFloor      int            `yaml:"min_floor"`
	MaxFloor      int            `yaml:"max_floor"`
	RequeueDelay  time.Duration  `yaml:"requeue_delay"`
	MaxAttempts   int            `yaml:"max_attempts"`
	ReselectLimit int            `yaml:"reselect_limit"`
	ScheduleSize  int            `yaml:"schedule_size"`
	Actuator      ActuatorConfig `yaml:"actuator"`
	Cars          []elevcar.Car  `yaml:"cars"`
}

func Default() Config {
	return Config{
		LogLevel:      "info",
		Workers:       elevworker.DEFAULT_WORKERS,
		MinFloor:      0,
		MaxFloor:      9,
		RequeueDelay:  elevworker.DEFAULT_REQUEUE_DELAY,
		MaxAttempts:   elevworker.DEFAULT_MAX_ATTEMPTS,
		ReselectLimit: elevworker.DEFAULT_RESELECT_LIMIT,
		ScheduleSize:  elevworker.DEFAULT_SCHEDULE_SIZE,
		Actuator: ActuatorConfig{
			Kind:        ActuatorSimulator,
			LocalAddr:   ":0",
			FloorTravel: 2 * time.Second,
			DoorOpen:    3 * time.Second,
		},
		Cars: []elevcar.Car{
			{Id: 1, CurrentFloor: 0, IsMovingUp: true},
			{Id: 2, CurrentFloor: 0, IsMovingUp: true},
			{Id: 3, CurrentFloor: 0, IsMovingUp: true},
		},
	}
}

// Load reads a YAML file over the defaults. Fields missing from the file keep
// their default value.
func Load(path string) (Config, error) {
	c := Default()
	file, err := os.Open(path)
	if err != nil {
		return c, fmt.Errorf("opening config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return c, fmt.Errorf("decoding config %s: %w", path, err)
	}
	Log.Debug().Msgf("Loaded config from %s", path)
	return c, nil
}

// ApplyEnvFile overrides c with DISPATCH_* keys from a .env file
func (c *Config) ApplyEnvFile(path string) error {
	envFile, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("reading env file: %w", err)
	}
	return c.ApplyEnv(envFile)
}

func (c *Config) ApplyEnv(env map[string]string) error {
	if v, ok := env["DISPATCH_LOG_LEVEL"]; ok {
		c.LogLevel = v
	}
	if v, ok := env["DISPATCH_ACTUATOR"]; ok {
		c.Actuator.Kind = v
	}
	if v, ok := env["DISPATCH_ACTUATOR_ADDR"]; ok {
		c.Actuator.Addr = v
	}
	ints := map[string]*int{
		"DISPATCH_WORKERS":      &c.Workers,
		"DISPATCH_MAX_ATTEMPTS": &c.MaxAttempts,
		"DISPATCH_MIN_FLOOR":    &c.MinFloor,
		"DISPATCH_MAX_FLOOR":    &c.MaxFloor,
	}
	for key, field := range ints {
		v, ok := env[key]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("converting %s to int: %w", key, err)
		}
		*field = n
	}
	if v, ok := env["DISPATCH_REQUEUE_DELAY"]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("converting DISPATCH_REQUEUE_DELAY to duration: %w", err)
		}
		c.RequeueDelay = d
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.MinFloor > c.MaxFloor {
		errs = append(errs, fmt.Errorf("min_floor %d is above max_floor %d", c.MinFloor, c.MaxFloor))
	}
	if c.RequeueDelay <= 0 {
		errs = append(errs, fmt.Errorf("requeue_delay must be positive, got %v", c.RequeueDelay))
	}
	if c.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("max_attempts must not be negative, got %d", c.MaxAttempts))
	}
	switch c.Actuator.Kind {
	case ActuatorSimulator, ActuatorNone:
	case ActuatorUDP:
		if c.Actuator.Addr == "" {
			errs = append(errs, errors.New("udp actuator needs actuator.addr"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown actuator kind %q", c.Actuator.Kind))
	}
	if len(c.Cars) == 0 {
		errs = append(errs, errors.New("no cars configured"))
	}
	seen := make(map[int]bool)
	for _, car := range c.Cars {
		if seen[car.Id] {
			errs = append(errs, fmt.Errorf("duplicate car id %d", car.Id))
		}
		seen[car.Id] = true
		if car.CurrentFloor < c.MinFloor || car.CurrentFloor > c.MaxFloor {
			errs = append(errs, fmt.Errorf("car %d starts on floor %d outside %d..%d", car.Id, car.CurrentFloor, c.MinFloor, c.MaxFloor))
		}
	}
	return errors.Join(errs...)
}

func (c Config) WorkerOptions() elevworker.Options {
	return elevworker.Options{
		Workers:       c.Workers,
		RequeueDelay:  c.RequeueDelay,
		MaxAttempts:   c.MaxAttempts,
		ReselectLimit: c.ReselectLimit,
		ScheduleSize:  c.ScheduleSize,
	}
}

func (c Config) CarIds() []int {
	ids := make([]int, 0, len(c.Cars))
	for _, car := range c.Cars {
		ids = append(ids, car.Id)
	}
	return ids
}
