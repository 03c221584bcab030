package ledger

import (
	"sync"
	"time"
)

// FlashDuration is how long a confirmation message stays visible.
const FlashDuration = 3 * time.Second

// Notifier receives user-visible confirmation messages.
type Notifier interface {
	Notify(msg string)
}

// Board keeps at most one transient message per session and clears it
// after its ttl. Posting replaces the message and restarts the timer.
type Board struct {
	mu   sync.Mutex
	ttl  time.Duration
	msgs map[string]flash
	seq  uint64
}

type flash struct {
	msg string
	seq uint64
}

func NewBoard(ttl time.Duration) *Board {
	if ttl <= 0 {
		ttl = FlashDuration
	}
	return &Board{ttl: ttl, msgs: make(map[string]flash)}
}

func (b *Board) Post(session, msg string) {
	b.mu.Lock()
	b.seq++
	seq := b.seq
	b.msgs[session] = flash{msg: msg, seq: seq}
	b.mu.Unlock()

	time.AfterFunc(b.ttl, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		// a newer message owns its own timer
		if cur, ok := b.msgs[session]; ok && cur.seq == seq {
			delete(b.msgs, session)
		}
	})
}

func (b *Board) Message(session string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.msgs[session].msg
}

// For binds the board to one session.
func (b *Board) For(session string) Notifier {
	return sessionNotifier{board: b, session: session}
}

type sessionNotifier struct {
	board   *Board
	session string
}

func (n sessionNotifier) Notify(msg string) { n.board.Post(n.session, msg) }

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}
