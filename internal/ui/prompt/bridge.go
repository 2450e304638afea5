// Package prompt carries operator input between the engine's workflows and
// the Bubble Tea program. Workflows block on a Request; the app renders the
// matching modal and answers it.
package prompt

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"pitcrew/internal/workspace"
)

// Kind discriminates prompt requests.
type Kind int

const (
	// KindInput asks for a single line of text.
	KindInput Kind = iota
	// KindConfirm asks a yes/no question.
	KindConfirm
	// KindPick asks to choose one of several options.
	KindPick
)

// Request is one pending prompt. Answer must be called exactly once.
type Request struct {
	Kind    Kind
	Title   string
	Default string
	// Optional toggles whether an empty submission is allowed (notes are,
	// names fall back to the default).
	Optional bool
	Options  []string

	resp chan Response
}

// Response carries the operator's answer. OK is false when the prompt was
// dismissed.
type Response struct {
	OK        bool
	Value     string
	Confirmed bool
	Index     int
}

// Answer resolves the request. Extra calls after the first are dropped.
func (r *Request) Answer(resp Response) {
	select {
	case r.resp <- resp:
	default:
	}
}

// RequestMsg surfaces a pending Request inside the Bubble Tea update loop.
type RequestMsg struct {
	Request *Request
}

// Bridge implements the engine's Prompter against a running tea.Program.
// Workflow goroutines block on the response channel while the UI thread
// renders the modal.
type Bridge struct {
	send func(tea.Msg)
}

// NewBridge wires the bridge to a message sink, typically (*tea.Program).Send.
func NewBridge(send func(tea.Msg)) *Bridge {
	return &Bridge{send: send}
}

func (b *Bridge) ask(ctx context.Context, req *Request) (Response, error) {
	req.resp = make(chan Response, 1)
	b.send(RequestMsg{Request: req})

	select {
	case resp := <-req.resp:
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// InputName asks for an artifact name, defaulting to defaultName.
func (b *Bridge) InputName(ctx context.Context, defaultName string) (string, bool, error) {
	resp, err := b.ask(ctx, &Request{
		Kind:    KindInput,
		Title:   "Artifact name",
		Default: defaultName,
	})
	if err != nil {
		return "", false, err
	}
	return resp.Value, resp.OK, nil
}

// InputNote asks for an optional upload note.
func (b *Bridge) InputNote(ctx context.Context) (string, bool, error) {
	resp, err := b.ask(ctx, &Request{
		Kind:     KindInput,
		Title:    "Note (optional)",
		Optional: true,
	})
	if err != nil {
		return "", false, err
	}
	return resp.Value, resp.OK, nil
}

// Confirm asks a yes/no question.
func (b *Bridge) Confirm(ctx context.Context, message string) (bool, error) {
	resp, err := b.ask(ctx, &Request{
		Kind:  KindConfirm,
		Title: message,
	})
	if err != nil {
		return false, err
	}
	return resp.OK && resp.Confirmed, nil
}

// PickBinary asks to choose one of the local binaries.
func (b *Bridge) PickBinary(ctx context.Context, binaries []workspace.Binary) (workspace.Binary, bool, error) {
	if len(binaries) == 0 {
		return workspace.Binary{}, false, errors.New("no binaries to pick from")
	}

	options := make([]string, len(binaries))
	for i, bin := range binaries {
		options[i] = bin.Name
	}

	resp, err := b.ask(ctx, &Request{
		Kind:    KindPick,
		Title:   "Build which bot?",
		Options: options,
	})
	if err != nil {
		return workspace.Binary{}, false, err
	}
	if !resp.OK || resp.Index < 0 || resp.Index >= len(binaries) {
		return workspace.Binary{}, false, nil
	}
	return binaries[resp.Index], true, nil
}
