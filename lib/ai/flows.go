package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/openshelf/shelfd/lib/logging"
)

// ErrUnavailable is the only error Flows returns to callers. The underlying
// cause is logged but never surfaced, so provider details stay out of user
// facing messages.
var ErrUnavailable = errors.New("ai: could not generate a response, please try again")

// Flows wraps a Completer with the two book assistant contracts.
type Flows struct {
	completer Completer
	logger    *zap.SugaredLogger
}

// NewFlows wraps a completer.
func NewFlows(c Completer) *Flows {
	return &Flows{
		completer: c,
		logger:    logging.GetLogger("ai"),
	}
}

// SummarizeBook generates a concise summary from a book's title and
// description.
func (f *Flows) SummarizeBook(ctx context.Context, title, description string) (string, error) {
	prompt := fmt.Sprintf(
		"You are an expert book summarizer. Please provide a concise and informative summary for the book %q based on the following description: %s. The summary should give the reader a good understanding of the book's content and main themes.",
		title, description,
	)

	summary, err := f.completer.Complete(ctx, prompt)
	if err != nil {
		f.logger.Warnw("summary generation failed", "title", title, "error", err)
		return "", ErrUnavailable
	}
	return summary, nil
}

// AnswerAboutBook answers a question about a book, grounded only on the
// stored title, description and optional summary.
func (f *Flows) AnswerAboutBook(ctx context.Context, question, title, description, summary string) (string, error) {
	var b strings.Builder
	b.WriteString("You are an expert librarian's assistant. A user is asking a question about a book.\n\n")
	b.WriteString("Use the following information to answer their question. Base your answer ONLY on the provided context.\n\n")
	fmt.Fprintf(&b, "Book Title: %s\n", title)
	fmt.Fprintf(&b, "Description: %s\n", description)
	if summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", summary)
	}
	fmt.Fprintf(&b, "\nUser's Question: %s\n\nAnswer:", question)

	answer, err := f.completer.Complete(ctx, b.String())
	if err != nil {
		f.logger.Warnw("answer generation failed", "title", title, "error", err)
		return "", ErrUnavailable
	}
	return answer, nil
}
