package elevcar

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dinaMadelen/elevdispatch/internal/logger"
	"gopkg.in/yaml.v3"
)

var Log = logger.GetLogger()

// Car is the stored record of one elevator car. The dispatcher only ever
// holds snapshots of it; the store owns the record.
type Car struct {
	Id           int  `json:"id" yaml:"id"`
	CurrentFloor int  `json:"current_floor" yaml:"current_floor"`
	IsMovingUp   bool `json:"is_moving_up" yaml:"is_moving_up"`
	IsDoorOpen   bool `json:"is_door_open" yaml:"is_door_open"`
}

func (c Car) String() string {
	jsonData, err := json.Marshal(c)
	if err != nil {
		Log.Error().Msg("Error Serialising Car Object to JSON")
		return ""
	}
	return string(jsonData)
}

// Distance in floors between the car and floor
func (c Car) Distance(floor int) int {
	if c.CurrentFloor > floor {
		return c.CurrentFloor - floor
	}
	return floor - c.CurrentFloor
}

type RequestType int

const (
	Call RequestType = iota
	Select
)

func (rt RequestType) String() string {
	switch rt {
	case Call:
		return "CALL"
	case Select:
		return "SELECT"
	default:
		return "UNDEFINED"
	}
}

func ParseRequestType(s string) (RequestType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CALL":
		return Call, nil
	case "SELECT":
		return Select, nil
	default:
		return Call, fmt.Errorf("unknown request type %q", s)
	}
}

func (rt RequestType) MarshalText() ([]byte, error) {
	return []byte(rt.String()), nil
}

func (rt *RequestType) UnmarshalText(text []byte) error {
	parsed, err := ParseRequestType(string(text))
	if err != nil {
		return err
	}
	*rt = parsed
	return nil
}

func (rt RequestType) MarshalYAML() (interface{}, error) {
	return rt.String(), nil
}

func (rt *RequestType) UnmarshalYAML(value *yaml.Node) error {
	return rt.UnmarshalText([]byte(value.Value))
}

// Request is a call (any car to TargetFloor) or a select (car ElevatorId to
// TargetFloor). Status flips to true once a worker has processed it.
type Request struct {
	Id          string      `json:"id" yaml:"id"`
	Type        RequestType `json:"type" yaml:"type"`
	ElevatorId  int         `json:"elevator_id,omitempty" yaml:"elevator_id,omitempty"`
	TargetFloor int         `json:"target_floor" yaml:"target_floor"`
	Direction   bool        `json:"direction" yaml:"direction"`
	Status      bool        `json:"status" yaml:"status"`
	Attempts    int         `json:"attempts" yaml:"attempts"`
}

func (r Request) String() string {
	return fmt.Sprintf("%s %s floor=%d elevator=%d attempt=%d", r.Id, r.Type, r.TargetFloor, r.ElevatorId, r.Attempts)
}

// Response is what callers get back. Pending means no car could take the call
// right now and it stays queued.
type Response struct {
	ElevatorId  int  `json:"elevator_id"`
	TargetFloor int  `json:"target_floor"`
	Pending     bool `json:"pending,omitempty"`
}
