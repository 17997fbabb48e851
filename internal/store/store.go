// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store owns conversation state and persistence for gemrun.
package store

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/gemrun-tui/internal/model"
)

// DefaultCompletionTimeout bounds a single completion round trip.
const DefaultCompletionTimeout = 60 * time.Second

// Completer produces the assistant reply for a conversation exchange.
// The conversation argument is a snapshot; implementations may read it
// freely but must not keep it.
type Completer interface {
	Complete(ctx context.Context, conv *model.Conversation, simple bool) (string, error)
}

// =============================================================================
// ERRORS
// =============================================================================

// ConversationError represents a conversation-related error.
// It implements the error interface and can be compared using errors.Is.
type ConversationError struct {
	Message string
}

// Error implements the error interface.
func (e *ConversationError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing conversation errors.
func (e *ConversationError) Is(target error) bool {
	t, ok := target.(*ConversationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

var (
	// ErrConversationNotFound is returned when a conversation doesn't exist.
	ErrConversationNotFound = &ConversationError{Message: "conversation not found"}

	// ErrCompletionInFlight is returned when an exchange is already pending.
	// One completion at a time: the caller should let it finish or cancel it
	// before mutating the transcript.
	ErrCompletionInFlight = &ConversationError{Message: "a reply is already being generated"}


	// ErrNoPendingTurn is returned by CompleteTurn without a prior submit.
	ErrNoPendingTurn = &ConversationError{Message: "no pending turn"}
)

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// TranscriptStore holds the conversation list (newest first), the active
// selection, and the pending-turn flag. All methods are safe for concurrent
// use; accessors return deep copies so callers never share mutable state
// with an in-flight completion.
type TranscriptStore struct {
	mu            sync.Mutex
	conversations []*model.Conversation // newest first
	activeID      string
	busy          bool
	completing    bool

	completer     Completer
	archive       *Archive
	timeout       time.Duration
	defaultSimple bool
	failureText   func(error) string
}

// NewTranscriptStore creates a store over the given completer and archive.
// Archived conversations are restored newest first; if none exist a fresh
// empty conversation becomes active. A nil archive gives a memory-only
// store, which the tests and one-shot CLI paths use.
func NewTranscriptStore(completer Completer, archive *Archive) *TranscriptStore {
	s := &TranscriptStore{
		completer:   completer,
		archive:     archive,
		timeout:     DefaultCompletionTimeout,
		failureText: genericFailureText,
	}
	s.restore()
	return s
}

// restore loads archived conversations and guarantees an active one.
func (s *TranscriptStore) restore() {
	if s.archive != nil {
		convs, err := s.archive.LoadAll()
		if err != nil {
			// A broken archive should not block chatting
			log.Printf("store: restore failed: %v", err)
		}
		s.conversations = convs
	}
	if len(s.conversations) == 0 {
		conv := model.NewConversation()
		conv.SimpleMode = s.defaultSimple
		s.conversations = []*model.Conversation{conv}
	}
	s.activeID = s.conversations[0].ID
}

// SetTimeout overrides the completion timeout. Call before use.
func (s *TranscriptStore) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// SetDefaultSimpleMode sets the explain mode new conversations start in.
func (s *TranscriptStore) SetDefaultSimpleMode(simple bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultSimple = simple
	// The initial conversation exists before config is applied; keep it in
	// step as long as it is still blank.
	if conv := s.activeLocked(); conv != nil && conv.IsEmpty() {
		conv.SimpleMode = simple
	}
}

// SetFailureText overrides how completion errors become transcript text.
func (s *TranscriptStore) SetFailureText(f func(error) string) {
	if f != nil {
		s.failureText = f
	}
}

// genericFailureText is the fallback prose for failed replies.
func genericFailureText(err error) string {
	return "Request failed: " + err.Error()
}

// =============================================================================
// CONVERSATION LIFECYCLE
// =============================================================================

// StartNewChat makes a fresh empty conversation active and returns its ID.
// If the active conversation has no messages it is reused instead, so
// repeated ctrl+n presses never pile up blank transcripts.
func (s *TranscriptStore) StartNewChat() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return "", ErrCompletionInFlight
	}

	if conv := s.activeLocked(); conv != nil && conv.IsEmpty() {
		return conv.ID, nil
	}

	conv := model.NewConversation()
	conv.SimpleMode = s.defaultSimple
	s.conversations = append([]*model.Conversation{conv}, s.conversations...)
	s.activeID = conv.ID

	// Not persisted yet: empty conversations only reach disk once they
	// hold a message.
	return conv.ID, nil
}

// LoadConversation makes the conversation with the given ID active.
func (s *TranscriptStore) LoadConversation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return ErrCompletionInFlight
	}
	if s.findLocked(id) == nil {
		return ErrConversationNotFound
	}
	s.activeID = id
	return nil
}

// DeleteConversation removes a conversation from memory and disk. Deleting
// the active conversation behaves like StartNewChat: a fresh empty
// conversation becomes active rather than an older transcript.
func (s *TranscriptStore) DeleteConversation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return ErrCompletionInFlight
	}

	idx := -1
	for i, conv := range s.conversations {
		if conv.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrConversationNotFound
	}

	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)

	if s.archive != nil {
		if err := s.archive.Delete(id); err != nil && err != ErrConversationNotFound {
			log.Printf("store: delete %s: %v", id, err)
		}
	}

	if s.activeID == id {
		conv := model.NewConversation()
		conv.SimpleMode = s.defaultSimple
		s.conversations = append([]*model.Conversation{conv}, s.conversations...)
		s.activeID = conv.ID
	}
	return nil
}

// SetSimpleMode flips the active conversation's explain mode. The mode
// applies from the next submitted message; an in-flight turn keeps the mode
// it was framed with.
func (s *TranscriptStore) SetSimpleMode(simple bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv := s.activeLocked(); conv != nil {
		conv.SimpleMode = simple
		s.persistLocked(conv)
	}
}

// SimpleMode reports the active conversation's explain mode.
func (s *TranscriptStore) SimpleMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv := s.activeLocked(); conv != nil {
		return conv.SimpleMode
	}
	return s.defaultSimple
}

// =============================================================================
// EXCHANGE: SUBMIT AND COMPLETE
// =============================================================================

// SubmitMessage appends the user's message to the active conversation and
// marks the turn pending. The reply is produced by a following CompleteTurn.
// Whitespace-only input is a no-op returning (nil, nil); a pending turn is
// rejected with ErrCompletionInFlight.
func (s *TranscriptStore) SubmitMessage(text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return nil, ErrCompletionInFlight
	}

	conv := s.activeLocked()
	msg := conv.AddUserMessage(text)
	s.busy = true

	// Persist now so the user's words survive even if the reply fails
	s.persistLocked(conv)

	return msg.Clone(), nil
}

// CompleteTurn runs the completer for the pending turn and appends the
// reply. On failure the transcript gets a failed placeholder entry instead,
// and the error is returned for the caller's own reporting. Either way the
// store accepts new submissions afterwards.
func (s *TranscriptStore) CompleteTurn(ctx context.Context) (*model.Message, error) {
	s.mu.Lock()
	// The pending turn is claimed exactly once; a second concurrent call
	// finds it taken and backs off.
	if !s.busy || s.completing {
		s.mu.Unlock()
		return nil, ErrNoPendingTurn
	}
	s.completing = true
	conv := s.activeLocked()
	snapshot := conv.Clone()
	simple := conv.SimpleMode
	s.mu.Unlock()

	// The network call runs without the lock so reads stay responsive
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, completeErr := s.completer.Complete(ctx, snapshot, simple)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.completing = false

	var msg *model.Message
	if completeErr != nil {
		msg = conv.AddFailedMessage(s.failureText(completeErr))
	} else {
		msg = conv.AddAssistantMessage(text)
	}
	s.persistLocked(conv)

	if completeErr != nil {
		return msg.Clone(), completeErr
	}
	return msg.Clone(), nil
}

// Send submits a message and completes the turn in one call, for callers
// with no intermediate rendering step (CLI one-shots, the HTTP API).
func (s *TranscriptStore) Send(ctx context.Context, text string) (*model.Message, error) {
	msg, err := s.SubmitMessage(text)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, nil
	}
	return s.CompleteTurn(ctx)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Active returns a deep copy of the active conversation.
func (s *TranscriptStore) Active() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := s.activeLocked()
	if conv == nil {
		return nil
	}
	return conv.Clone()
}

// ActiveID returns the active conversation's ID.
func (s *TranscriptStore) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Busy reports whether an exchange is pending.
func (s *TranscriptStore) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Conversations returns metadata for every conversation with at least one
// message, newest first. A conversation only exists to callers once the
// first message lands.
func (s *TranscriptStore) Conversations() []model.ConversationMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	metas := make([]model.ConversationMeta, 0, len(s.conversations))
	for _, conv := range s.conversations {
		if conv.IsEmpty() {
			continue
		}
		metas = append(metas, conv.Meta())
	}
	return metas
}

// Conversation returns a deep copy of the conversation with the given ID.
func (s *TranscriptStore) Conversation(id string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := s.findLocked(id)
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	return conv.Clone(), nil
}

// Count returns the number of conversations held by the store.
func (s *TranscriptStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

// activeLocked returns the active conversation. Callers hold s.mu.
func (s *TranscriptStore) activeLocked() *model.Conversation {
	return s.findLocked(s.activeID)
}

// findLocked returns the conversation with the given ID. Callers hold s.mu.
func (s *TranscriptStore) findLocked(id string) *model.Conversation {
	for _, conv := range s.conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

// persistLocked saves a conversation, logging rather than failing: a full
// disk must not block the chat itself. Callers hold s.mu.
func (s *TranscriptStore) persistLocked(conv *model.Conversation) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Save(conv); err != nil {
		log.Printf("store: save %s: %v", conv.ID, err)
	}
}
