// Package responder drives the autoresponder persona: it watches incoming
// operator utterances, picks a canned reply via fuzzy matching and applies
// a reaction plus a reply message after randomized delays.
package responder

import (
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"chatsim/pkg/config"
	"chatsim/pkg/logger"
	"chatsim/pkg/match"
	"chatsim/pkg/models"
	"chatsim/pkg/store"
)

// Delay ranges for scheduled effects. Reaction and reply are independent
// tasks; fallback replies arrive later than matched ones, and group chats
// stretch the upper bound.
const (
	reactionDelayMin = 500 * time.Millisecond
	reactionDelayMax = 1500 * time.Millisecond

	directReplyMin = 1000 * time.Millisecond
	directReplyMax = 3000 * time.Millisecond
	groupReplyMin  = 1500 * time.Millisecond
	groupReplyMax  = 5000 * time.Millisecond

	directFallbackMin = 2000 * time.Millisecond
	directFallbackMax = 4000 * time.Millisecond
	groupFallbackMin  = 2500 * time.Millisecond
	groupFallbackMax  = 5000 * time.Millisecond
)

// directFallbacks and groupFallbacks are used when no table entry clears
// the secondary threshold.
var directFallbacks = []string{
	"Hmm, I'm not sure what you mean.",
	"Interesting... tell me more?",
	"Let me think about that one.",
	"Sorry, you lost me there.",
}

var groupFallbacks = []string{
	"Wait, what are we talking about?",
	"Haha, good one.",
	"Someone fill me in?",
	"+1",
}

// reactionEmojis is the pool the persona reacts with.
var reactionEmojis = []string{"👍", "❤️", "😂", "🤔", "👀"}

// Responder triggers automatic replies for conversations bound to the
// assistant persona.
type Responder struct {
	store  *store.Store
	tables *match.TableCache
	sched  Scheduler

	mu       sync.Mutex
	rng      *rand.Rand
	limiters map[string]*rate.Limiter

	rps         float64
	burst       int
	reactionMin time.Duration
	reactionMax time.Duration
}

// New builds a responder. The scheduler is injectable so tests control
// time; pass TimerScheduler{} in production.
func New(s *store.Store, tables *match.TableCache, sched Scheduler, cfg config.ResponderConfig) *Responder {
	r := &Responder{
		store:       s,
		tables:      tables,
		sched:       sched,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		limiters:    map[string]*rate.Limiter{},
		rps:         cfg.RPS,
		burst:       cfg.Burst,
		reactionMin: reactionDelayMin,
		reactionMax: reactionDelayMax,
	}
	if cfg.ReactionMin.Duration() > 0 {
		r.reactionMin = cfg.ReactionMin.Duration()
	}
	if cfg.ReactionMax.Duration() > r.reactionMin {
		r.reactionMax = cfg.ReactionMax.Duration()
	}
	return r
}

// Seed replaces the random source; tests use it for determinism.
func (r *Responder) Seed(seed int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng = rand.New(rand.NewSource(seed))
}

// ShouldReply reports whether the conversation is bound to the persona: a
// direct conversation whose counterpart is the assistant, or a group the
// assistant is a member of.
func ShouldReply(conv models.Conversation) bool {
	if conv.Kind == models.KindDirect {
		return conv.Counterpart == models.AssistantID
	}
	for _, m := range conv.Members {
		if m == models.AssistantID {
			return true
		}
	}
	return false
}

// HandleIncoming inspects a freshly appended message and, when the
// conversation is bound to the persona, schedules a delayed reaction to
// the triggering message and a delayed reply. Both tasks re-resolve the
// conversation at fire time and drop the effect when it is gone.
func (r *Responder) HandleIncoming(convID string, msg models.Message) {
	if msg.Sender == models.AssistantID {
		return
	}
	conv, err := r.store.Conversation(convID)
	if err != nil {
		return
	}
	if !ShouldReply(conv) {
		return
	}
	if !r.limiter(convID).Allow() {
		metricRateLimited.Inc()
		logger.Debug("responder_rate_limited", "conversation", convID)
		return
	}

	table := r.tables.Get()
	m, matched := match.FindResponse(table, msg.Text)

	r.mu.Lock()
	var reply string
	var outcome string
	if matched {
		reply = m.Answers[r.rng.Intn(len(m.Answers))]
		outcome = "matched"
	} else if conv.Kind == models.KindGroup {
		reply = groupFallbacks[r.rng.Intn(len(groupFallbacks))]
		outcome = "fallback"
	} else {
		reply = directFallbacks[r.rng.Intn(len(directFallbacks))]
		outcome = "fallback"
	}
	emoji := reactionEmojis[r.rng.Intn(len(reactionEmojis))]
	reactionDelay := r.uniformLocked(r.reactionMin, r.reactionMax)
	replyDelay := r.uniformLocked(replyRange(conv.Kind, matched))
	r.mu.Unlock()

	if matched {
		logger.Debug("responder_matched", "conversation", convID,
			"question", m.Question, "score", m.Score, "confident", m.Confident)
	} else {
		logger.Debug("responder_fallback", "conversation", convID)
	}

	msgID := msg.ID
	r.sched.AfterFunc(reactionDelay, func() {
		if err := r.store.ToggleReaction(convID, msgID, models.AssistantID, emoji, 1); err != nil {
			metricDropped.Inc()
			logger.Debug("responder_reaction_dropped", "conversation", convID, "message", msgID, "error", err)
		}
	})
	r.sched.AfterFunc(replyDelay, func() {
		if _, err := r.store.AppendMessage(convID, models.AssistantID, store.Body{Text: reply}, 0); err != nil {
			metricDropped.Inc()
			logger.Debug("responder_reply_dropped", "conversation", convID, "error", err)
			return
		}
		metricReplies.WithLabelValues(outcome).Inc()
	})
}

func replyRange(kind models.ConversationKind, matched bool) (time.Duration, time.Duration) {
	switch {
	case matched && kind == models.KindGroup:
		return groupReplyMin, groupReplyMax
	case matched:
		return directReplyMin, directReplyMax
	case kind == models.KindGroup:
		return groupFallbackMin, groupFallbackMax
	default:
		return directFallbackMin, directFallbackMax
	}
}

// uniformLocked draws from [min, max). Callers hold r.mu.
func (r *Responder) uniformLocked(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(r.rng.Int63n(int64(max-min)))
}

// limiter returns the per-conversation rate limiter, creating it on first
// use with configured rps/burst (defaults 1 rps, burst 3).
func (r *Responder) limiter(convID string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.limiters[convID]; ok {
		return l
	}
	rps := r.rps
	if rps <= 0 {
		rps = 1
	}
	burst := r.burst
	if burst <= 0 {
		burst = 3
	}
	l := rate.NewLimiter(rate.Limit(rps), burst)
	r.limiters[convID] = l
	return l
}
