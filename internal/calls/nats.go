package calls

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

const inviteSubjectPrefix = "calls.invite."

// NatsEngine dispatches invitations to the external call engine over NATS
// request/reply. The bounded wait comes from the caller's context; the reply
// is the engine's ack that the invitation was taken over, not the callee's
// answer. The session token authenticates every request.
type NatsEngine struct {
	nc    *nats.Conn
	token string
}

func NewNatsEngine(nc *nats.Conn, token string) *NatsEngine {
	return &NatsEngine{nc: nc, token: token}
}

type inviteAck struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

func (e *NatsEngine) SendInvitation(ctx context.Context, inv Invitation) error {
	data, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("marshal invitation: %w", err)
	}

	req := nats.NewMsg(inviteSubjectPrefix + inv.CalleeID)
	req.Header.Set("Authorization", "Bearer "+e.token)
	req.Data = data

	msg, err := e.nc.RequestMsgWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("invitation request: %w", err)
	}

	var ack inviteAck
	if err := json.Unmarshal(msg.Data, &ack); err != nil {
		return fmt.Errorf("malformed invitation ack: %w", err)
	}
	if !ack.OK {
		return fmt.Errorf("invitation refused by engine: %s", ack.Reason)
	}

	return nil
}
