package server

import (
	"github.com/openshelf/shelfd/rpc/common"
)

// IRPCServerAdapter is the interface for all RPC server adapters.
// One adapter serves one channel; its backend (library, auth gate, ai
// flows) is bound at construction.
type IRPCServerAdapter interface {
	// Handle handles a request and returns a response.
	// If an error occurs, it must be set in the response.
	Handle(req *common.Message) (resp *common.Message)
}
