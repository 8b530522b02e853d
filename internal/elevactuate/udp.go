package elevactuate

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
	"github.com/libp2p/go-reuseport"
)

const UDP_WRITE_TIMEOUT = 500 * time.Millisecond

// MoveCommand is the datagram sent to an external actuator
type MoveCommand struct {
	ElevatorId  int  `json:"elevator_id"`
	FromFloor   int  `json:"from_floor"`
	TargetFloor int  `json:"target_floor"`
	MovingUp    bool `json:"moving_up"`
}

// UDPActuator hands moves to an external controller as fire-and-forget JSON
// datagrams. A nil error only means the datagram left this host.
type UDPActuator struct {
	conn   net.PacketConn
	remote *net.UDPAddr
}

func NewUDPActuator(localAddr string, remoteAddr string) (*UDPActuator, error) {
	remote, err := net.ResolveUDPAddr("udp4", remoteAddr)
	if err != nil {
		return nil, fmt.Errorf("error resolving UDP Address: %v", err)
	}
	conn, err := reuseport.ListenPacket("udp4", localAddr)
	if err != nil {
		return nil, fmt.Errorf("error opening UDP socket: %w", err)
	}
	Log.Info().Msgf("UDP actuator sending from %s to %s", conn.LocalAddr(), remote)
	return &UDPActuator{conn: conn, remote: remote}, nil
}

func (u *UDPActuator) Move(ctx context.Context, car elevcar.Car, targetFloor int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := json.Marshal(MoveCommand{
		ElevatorId:  car.Id,
		FromFloor:   car.CurrentFloor,
		TargetFloor: targetFloor,
		MovingUp:    targetFloor >= car.CurrentFloor,
	})
	if err != nil {
		return err
	}

	deadline := time.Now().Add(UDP_WRITE_TIMEOUT)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := u.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if _, err := u.conn.WriteTo(msg, u.remote); err != nil {
		return fmt.Errorf("sending move for elevator %d: %w", car.Id, err)
	}
	return nil
}

func (u *UDPActuator) LocalAddr() net.Addr {
	return u.conn.LocalAddr()
}

func (u *UDPActuator) Close() error {
	return u.conn.Close()
}
