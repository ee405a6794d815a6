/*
Package ai provides the book assistant: summary generation and grounded
question answering over a text-completion provider.

The Completer interface is the provider port; NewGeminiCompleter implements
it over the Gemini API with one request per completion. Flows adds the two
application contracts on top and collapses every provider failure into
ErrUnavailable, logging the cause, so callers can show a single
retry-suggesting message.
*/
package ai
