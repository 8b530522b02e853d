package elevcar

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestCarString(t *testing.T) {
	car := Car{Id: 2, CurrentFloor: 8, IsMovingUp: false, IsDoorOpen: true}
	jsonString := "{\"id\":2,\"current_floor\":8,\"is_moving_up\":false,\"is_door_open\":true}"

	if car.String() != jsonString {
		t.Errorf("String() = %s, expected %s", car.String(), jsonString)
	}
}

func TestCarDistance(t *testing.T) {
	car := Car{Id: 1, CurrentFloor: 3}
	cases := map[int]int{3: 0, 5: 2, 0: 3, -2: 5}
	for floor, expected := range cases {
		if car.Distance(floor) != expected {
			t.Errorf("Distance(%d) = %d, expected %d", floor, car.Distance(floor), expected)
		}
	}
}

func TestRequestTypeString(t *testing.T) {
	types := []RequestType{Call, Select, RequestType(7)}
	strs := []string{"CALL", "SELECT", "UNDEFINED"}

	for index, rt := range types {
		if rt.String() != strs[index] {
			t.Errorf("RequestType.String() returned %v, expected %v", rt.String(), strs[index])
		}
	}
}

func TestRequestTypeJSON(t *testing.T) {
	var req Request
	err := json.Unmarshal([]byte(`{"type":"select","elevator_id":4,"target_floor":6}`), &req)
	if err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if req.Type != Select || req.ElevatorId != 4 || req.TargetFloor != 6 {
		t.Errorf("json.Unmarshal() = %+v, expected SELECT to floor 6 on elevator 4", req)
	}

	if err := json.Unmarshal([]byte(`{"type":"hover"}`), &req); err == nil {
		t.Errorf("json.Unmarshal() accepted unknown request type")
	}
}

func TestRequestTypeYAML(t *testing.T) {
	var req Request
	if err := yaml.Unmarshal([]byte("type: CALL\ntarget_floor: 5\ndirection: true\n"), &req); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if req.Type != Call || req.TargetFloor != 5 || !req.Direction {
		t.Errorf("yaml.Unmarshal() = %+v, expected CALL to floor 5 going up", req)
	}

	out, err := yaml.Marshal(Request{Type: Select})
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	var back map[string]interface{}
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if back["type"] != "SELECT" {
		t.Errorf("yaml type field = %v, expected SELECT", back["type"])
	}
}
