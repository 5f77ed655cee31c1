package ragdoc

import "context"

// ChatTurn is one answered exchange in a session.
type ChatTurn struct {
	Question string
	Answer   *Answer
}

// Session keeps the ordered history of a chat. Turns are appended only
// after a successful answer. A Session is not safe for concurrent use.
type Session struct {
	asker Asker
	turns []ChatTurn
}

// NewSession returns an empty session that answers with asker.
func NewSession(asker Asker) *Session {
	return &Session{asker: asker}
}

// Ask answers question and records the turn on success. A failed question
// leaves the history unchanged.
func (s *Session) Ask(ctx context.Context, question string) (*Answer, error) {
	answer, err := s.asker.Ask(ctx, question)
	if err != nil {
		return nil, err
	}
	s.turns = append(s.turns, ChatTurn{Question: question, Answer: answer})
	return answer, nil
}

// Turns returns a copy of the history in order.
func (s *Session) Turns() []ChatTurn {
	out := make([]ChatTurn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of recorded turns.
func (s *Session) Len() int {
	return len(s.turns)
}
