package logger

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

var waitGroup sync.WaitGroup

func loopGetLogger(t *testing.T, routineNum int) {
	defer waitGroup.Done()
	for i := 0; i < 1000; i++ {
		logger1 := Component("worker")
		if logger1 == nil {
			t.Errorf("Component() = nil in goroutine %d, expected a non-nil logger", routineNum)
		}
	}
}

func TestGetLogger(t *testing.T) {
	if GetLogger() == nil {
		t.Errorf("GetLogger() = nil, expected a non-nil logger")
	}
	if GetLogger() != GetLoggerConfigured(zerolog.DebugLevel) {
		t.Errorf("GetLoggerConfigured() returned a different logger than GetLogger()")
	}

	waitGroup.Add(2)
	go loopGetLogger(t, 1)
	go loopGetLogger(t, 2)
	waitGroup.Wait()
}

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	cases := map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		"warn":     zerolog.WarnLevel,
		"disabled": zerolog.Disabled,
		"":         zerolog.InfoLevel,
		"loud":     zerolog.InfoLevel,
	}
	for name, expected := range cases {
		if got := SetLevel(name); got != expected {
			t.Errorf("SetLevel(%q) = %v, expected %v", name, got, expected)
		}
		if zerolog.GlobalLevel() != expected {
			t.Errorf("GlobalLevel() = %v after SetLevel(%q), expected %v", zerolog.GlobalLevel(), name, expected)
		}
	}
}
