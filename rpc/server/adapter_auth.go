package server

import (
	"fmt"

	"github.com/openshelf/shelfd/lib/auth"
	"github.com/openshelf/shelfd/rpc/common"
)

// NewAuthAdapter creates the adapter for the auth channel.
func NewAuthAdapter(g *auth.Gate) IRPCServerAdapter {
	return &authAdapterImpl{gate: g}
}

type authAdapterImpl struct {
	gate *auth.Gate
}

// session builds the wire representation of the gate state.
func (a *authAdapterImpl) session() common.Session {
	s := common.Session{State: string(a.gate.CurrentState())}
	if user, ok := a.gate.CurrentUser(); ok {
		s.Email = user.Email
		s.Name = user.Name
	}
	return s
}

func (a *authAdapterImpl) Handle(req *common.Message) *common.Message {
	switch req.Op {
	case common.OpAuthLogin:
		if _, err := a.gate.Login(req.Query, req.Text); err != nil {
			return common.NewValueResponse(req.Op, nil, err)
		}
		return respondEntity(req.Op, a.session(), nil)

	case common.OpAuthLogout:
		return common.NewOkResponse(req.Op, a.gate.Logout())

	case common.OpAuthState:
		return respondEntity(req.Op, a.session(), nil)

	case common.OpAuthRequestReset:
		return common.NewOkResponse(req.Op, a.gate.RequestReset(req.Query))

	case common.OpAuthVerifyCode:
		return common.NewOkResponse(req.Op, a.gate.VerifyCode(req.Query, req.Text))

	case common.OpAuthCompleteReset:
		if err := requireFields(map[string]string{"password": req.Text}); err != nil {
			return common.NewOkResponse(req.Op, err)
		}
		return common.NewOkResponse(req.Op, a.gate.CompleteReset(req.Query, req.Text))

	default:
		return common.NewErrorResponse(fmt.Sprintf("auth channel: unsupported operation: %s", req.Op))
	}
}
