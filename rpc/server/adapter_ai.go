package server

import (
	"context"
	"fmt"

	"github.com/openshelf/shelfd/lib/ai"
	"github.com/openshelf/shelfd/lib/library"
	"github.com/openshelf/shelfd/rpc/common"
)

// NewAIAdapter creates the adapter for the ai channel. Flows may be nil
// when no provider is configured; every request then reports the feature as
// disabled. Generated summaries are stored on the book before responding.
func NewAIAdapter(flows *ai.Flows, l *library.Library) IRPCServerAdapter {
	return &aiAdapterImpl{flows: flows, library: l}
}

type aiAdapterImpl struct {
	flows   *ai.Flows
	library *library.Library
}

func (a *aiAdapterImpl) Handle(req *common.Message) *common.Message {
	if a.flows == nil {
		return common.NewErrorResponse("ai channel: no provider configured")
	}

	book, ok := a.library.FindBookByID(req.ID)
	if !ok {
		return common.NewTextResponse(req.Op, "", library.ErrNotFound)
	}

	switch req.Op {
	case common.OpAISummarize:
		summary, err := a.flows.SummarizeBook(context.Background(), book.Title, book.Description)
		if err != nil {
			return common.NewTextResponse(req.Op, "", err)
		}
		if _, err := a.library.SetSummary(book.ID, summary); err != nil {
			return common.NewTextResponse(req.Op, "", err)
		}
		return common.NewTextResponse(req.Op, summary, nil)

	case common.OpAIAsk:
		if err := requireFields(map[string]string{"question": req.Query}); err != nil {
			return common.NewTextResponse(req.Op, "", err)
		}
		answer, err := a.flows.AnswerAboutBook(context.Background(), req.Query, book.Title, book.Description, book.Summary)
		return common.NewTextResponse(req.Op, answer, err)

	default:
		return common.NewErrorResponse(fmt.Sprintf("ai channel: unsupported operation: %s", req.Op))
	}
}
