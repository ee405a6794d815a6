package client

import (
	"fmt"

	"github.com/openshelf/shelfd/rpc/common"
	"github.com/openshelf/shelfd/rpc/serializer"
	"github.com/openshelf/shelfd/rpc/transport"
)

// rpcClientAdapter stores all data needed for an RPC client implementation.
// Used by the typed clients with the composition pattern.
type rpcClientAdapter struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invoke sends a request on the operation's channel and returns the decoded
// response. It checks that the response is not an error response and that
// its operation matches the request.
func (c *rpcClientAdapter) invoke(req *common.Message) (*common.Message, error) {
	reqBytes, err := c.serializer.Serialize(*req)
	if err != nil {
		return nil, err
	}

	respBytes, err := c.transport.Send(req.Op.Channel(), reqBytes)
	if err != nil {
		return nil, err
	}

	resp := &common.Message{}
	if err := c.serializer.Deserialize(respBytes, resp); err != nil {
		return nil, fmt.Errorf("rpc: failed to decode response: %s", err)
	}

	if resp.Op == common.OpError || resp.Err != "" {
		return nil, fmt.Errorf("rpc: %s", resp.Err)
	}

	if resp.Op != req.Op {
		return nil, fmt.Errorf("rpc: unexpected response operation: %s, expected %s", resp.Op, req.Op)
	}

	return resp, nil
}

// invokeDecoded is invoke plus decoding of the response value.
func invokeDecoded[T any](c *rpcClientAdapter, req *common.Message) (T, error) {
	var zero T
	resp, err := c.invoke(req)
	if err != nil {
		return zero, err
	}
	return common.DecodeValue[T](resp.Value)
}
