package client

import (
	"github.com/openshelf/shelfd/rpc/common"
	"github.com/openshelf/shelfd/rpc/serializer"
	"github.com/openshelf/shelfd/rpc/transport"
)

// NewAIClient creates a client for the ai channel.
func NewAIClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*AIClient, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &AIClient{
		rpcClientAdapter{
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

// AIClient is the typed client for the ai channel.
type AIClient struct {
	rpcClientAdapter
}

// Close closes the underlying transport.
func (c *AIClient) Close() error {
	return c.transport.Close()
}

// SummarizeBook generates and stores a summary for the given book and
// returns it.
func (c *AIClient) SummarizeBook(bookID string) (string, error) {
	resp, err := c.invoke(common.NewIDRequest(common.OpAISummarize, bookID))
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// AskAboutBook answers a question about the given book, grounded on its
// stored title, description and summary.
func (c *AIClient) AskAboutBook(bookID, question string) (string, error) {
	resp, err := c.invoke(common.NewAskRequest(bookID, question))
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
