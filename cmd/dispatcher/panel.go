package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
	"github.com/dinaMadelen/elevdispatch/internal/elevdispatch"
	"github.com/eiannone/keyboard"
)

const panelHelp = `Keys:
  0-9      call an elevator to that floor
  s <e> <f> select floor f on elevator e
  l        list elevators
  q/Ctrl-C quit`

// panel turns key presses into dispatcher calls. It is a tiny state machine:
// after 's' it expects an elevator digit, then a floor digit.
type panel struct {
	dispatcher *elevdispatch.Dispatcher
	out        io.Writer

	selecting    bool
	selectCar    int
	selectHasCar bool
}

func runPanel(ctx context.Context, dispatcher *elevdispatch.Dispatcher) error {
	keys, err := keyboard.GetKeys(10)
	if err != nil {
		return fmt.Errorf("opening keyboard: %w", err)
	}
	defer keyboard.Close()

	p := &panel{dispatcher: dispatcher, out: os.Stdout}
	fmt.Fprintln(p.out, panelHelp)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-keys:
			if event.Err != nil {
				return event.Err
			}
			if p.handleKey(ctx, event) {
				return nil
			}
		}
	}
}

// handleKey returns true when the user asked to quit
func (p *panel) handleKey(ctx context.Context, event keyboard.KeyEvent) bool {
	if event.Key == keyboard.KeyCtrlC || event.Key == keyboard.KeyEsc || event.Rune == 'q' {
		return true
	}

	digit, isDigit := -1, event.Rune >= '0' && event.Rune <= '9'
	if isDigit {
		digit = int(event.Rune - '0')
	}

	switch {
	case p.selecting && isDigit && !p.selectHasCar:
		p.selectCar, p.selectHasCar = digit, true
	case p.selecting && isDigit:
		p.selecting, p.selectHasCar = false, false
		resp, err := p.dispatcher.SelectFloor(ctx, elevcar.Request{
			Type:        elevcar.Select,
			ElevatorId:  p.selectCar,
			TargetFloor: digit,
			Direction:   p.directionTo(ctx, p.selectCar, digit),
		})
		p.report(resp, err)
	case event.Rune == 's':
		p.selecting, p.selectHasCar = true, false
	case event.Rune == 'l':
		cars, err := p.dispatcher.Cars(ctx)
		if err != nil {
			fmt.Fprintln(p.out, "error:", err)
			break
		}
		for _, car := range cars {
			fmt.Fprintln(p.out, car.String())
		}
		fmt.Fprintf(p.out, "%d calls waiting\n", p.dispatcher.Pending())
	case isDigit:
		resp, err := p.dispatcher.CallElevator(ctx, elevcar.Request{Type: elevcar.Call, TargetFloor: digit})
		p.report(resp, err)
	default:
		p.selecting, p.selectHasCar = false, false
		fmt.Fprintln(p.out, panelHelp)
	}
	return false
}

// directionTo is up unless the car is above floor. An unknown car gets up;
// SelectFloor rejects it anyway.
func (p *panel) directionTo(ctx context.Context, id int, floor int) bool {
	cars, err := p.dispatcher.Cars(ctx)
	if err != nil {
		return true
	}
	for _, car := range cars {
		if car.Id == id {
			return floor >= car.CurrentFloor
		}
	}
	return true
}

func (p *panel) report(resp elevcar.Response, err error) {
	switch {
	case err != nil:
		fmt.Fprintf(p.out, "%s error: %v\n", elevdispatch.KindOf(err), err)
	case resp.Pending:
		fmt.Fprintf(p.out, "floor %d: no elevator free yet, call queued\n", resp.TargetFloor)
	default:
		fmt.Fprintf(p.out, "floor %d: elevator %d\n", resp.TargetFloor, resp.ElevatorId)
	}
}
