// Package pipeline wires the generation stages together: pool building,
// diversity sampling, distractor selection, and assembly, with optional LLM
// quote curation in front.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/henzelabs/chattrivia/internal/chatdb"
	"github.com/henzelabs/chattrivia/internal/enrich"
	"github.com/henzelabs/chattrivia/internal/question"
	"github.com/henzelabs/chattrivia/internal/quotes"
	"github.com/henzelabs/chattrivia/internal/stats"
)

const (
	defaultMaxPerSpeaker  = 2
	attributionCategory   = "Who Said It?"
	attributionDifficulty = question.DifficultyMedium
	attributionTemplate   = "{speaker} said this one!"

	conversationCategory   = "Which Chat?"
	conversationDifficulty = question.DifficultyMedium
	conversationTemplate   = "This gem was dropped in {chat}!"
)

// Generator runs one batch of question generation. It is stateless across
// invocations and safe to reuse.
type Generator struct {
	poolCfg       quotes.PoolConfig
	roster        question.Roster
	maxPerSpeaker int
	order         quotes.Order
	rng           *rand.Rand
	enricher      *enrich.Client // nil disables LLM curation
	logger        *slog.Logger
}

// Config configures a Generator. Roster and RNG are required; zero values
// elsewhere fall back to defaults.
type Config struct {
	Pool          quotes.PoolConfig
	Roster        question.Roster
	MaxPerSpeaker int
	Order         quotes.Order
	RNG           *rand.Rand
	Enricher      *enrich.Client
	Logger        *slog.Logger
}

func New(cfg Config) *Generator {
	g := &Generator{
		poolCfg:       cfg.Pool,
		roster:        cfg.Roster,
		maxPerSpeaker: cfg.MaxPerSpeaker,
		order:         cfg.Order,
		rng:           cfg.RNG,
		enricher:      cfg.Enricher,
		logger:        cfg.Logger,
	}
	if g.maxPerSpeaker <= 0 {
		g.maxPerSpeaker = defaultMaxPerSpeaker
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// RosterFromMessages derives a speaker roster from the observed (already
// resolved) sender names, in first-seen order.
func RosterFromMessages(msgs []chatdb.Message) question.Roster {
	var names []string
	for _, m := range msgs {
		names = append(names, m.SpeakerName)
	}
	return question.NewRoster(names)
}

// WhoSaidIt produces up to count quote-attribution questions. With an
// enricher configured, the model curates the quotes and local sampling is
// the fallback; without one, quotes come straight from the diversity
// sampler. Quotes whose roster cannot fill four options are skipped; a
// malformed assembled question aborts the batch.
func (g *Generator) WhoSaidIt(ctx context.Context, msgs []chatdb.Message, count int) ([]question.Question, error) {
	pool := quotes.BuildPool(msgs, g.poolCfg)
	g.logger.Info("quote pool built", "messages", len(msgs), "eligible", len(pool))

	picks := g.pickQuotes(ctx, pool, count)

	var out []question.Question
	for _, pick := range picks {
		set, err := question.BuildOptions(pick.speaker, g.roster, g.rng)
		if err != nil {
			if errors.Is(err, question.ErrInsufficientCandidates) {
				g.logger.Warn("skipping quote", "speaker", pick.speaker, "error", err)
				continue
			}
			return nil, fmt.Errorf("build options: %w", err)
		}

		q, err := question.AssembleAttribution(pick.text, pick.speaker, set,
			attributionCategory, attributionDifficulty, pick.explanation)
		if err != nil {
			return nil, fmt.Errorf("assemble attribution: %w", err)
		}
		out = append(out, q)
	}

	g.logger.Info("attribution questions assembled", "requested", count, "produced", len(out))
	return out, nil
}

type quotePick struct {
	text        string
	speaker     string
	explanation string
}

func (g *Generator) pickQuotes(ctx context.Context, pool []quotes.Quote, count int) []quotePick {
	if g.enricher != nil {
		cands, err := g.enricher.SelectQuotes(ctx, poolMessages(pool), count)
		if err != nil {
			g.logger.Warn("model quote selection failed, falling back to local sampling", "error", err)
		} else if len(cands) > 0 {
			var picks []quotePick
			capped := make(map[string]int)
			for _, c := range cands {
				if len(picks) == count {
					break
				}
				if c.Quote == "" || c.Speaker == "" {
					continue
				}
				if capped[c.Speaker] >= g.maxPerSpeaker {
					continue
				}
				capped[c.Speaker]++
				explanation := attributionTemplate
				if c.Reason != "" {
					explanation = attributionTemplate + " " + c.Reason
				}
				picks = append(picks, quotePick{text: c.Quote, speaker: c.Speaker, explanation: explanation})
			}
			return picks
		}
	}

	sampled := quotes.Sample(pool, count, g.maxPerSpeaker, g.order, g.rng)
	picks := make([]quotePick, 0, len(sampled))
	for _, q := range sampled {
		picks = append(picks, quotePick{text: q.Text, speaker: q.SpeakerName, explanation: attributionTemplate})
	}
	return picks
}

func poolMessages(pool []quotes.Quote) []chatdb.Message {
	msgs := make([]chatdb.Message, len(pool))
	for i, q := range pool {
		msgs[i] = chatdb.Message(q)
	}
	return msgs
}

// WhichChat produces up to count questions asking which group chat a quote
// was sent in. The option universe is the set of chat names observed in msgs;
// quotes with no chat name, and quotes whose chat universe cannot fill four
// options, are skipped.
func (g *Generator) WhichChat(msgs []chatdb.Message, count int) ([]question.Question, error) {
	pool := quotes.BuildPool(msgs, g.poolCfg)
	chats := conversationRoster(msgs)
	g.logger.Info("chat pool built", "eligible", len(pool), "chats", chats.Len())

	sampled := quotes.Sample(pool, count, g.maxPerSpeaker, g.order, g.rng)

	var out []question.Question
	for _, pick := range sampled {
		if pick.Conversation == "" {
			continue
		}

		set, err := question.BuildOptions(pick.Conversation, chats, g.rng)
		if err != nil {
			if errors.Is(err, question.ErrInsufficientCandidates) {
				g.logger.Warn("skipping chat question", "chat", pick.Conversation, "error", err)
				continue
			}
			return nil, fmt.Errorf("build options: %w", err)
		}

		q, err := question.AssembleConversation(pick.Text, pick.Conversation, set,
			conversationCategory, conversationDifficulty, conversationTemplate)
		if err != nil {
			return nil, fmt.Errorf("assemble conversation: %w", err)
		}
		out = append(out, q)
	}

	g.logger.Info("conversation questions assembled", "requested", count, "produced", len(out))
	return out, nil
}

func conversationRoster(msgs []chatdb.Message) question.Roster {
	var names []string
	for _, m := range msgs {
		names = append(names, m.Conversation)
	}
	return question.NewRoster(names)
}

// StatQuestions aggregates messages and reactions and turns the metric
// leaders into superlative questions.
func (g *Generator) StatQuestions(msgs []chatdb.Message, reactions []chatdb.Reaction) ([]question.Question, error) {
	report := stats.Analyze(msgs, reactions, stats.DefaultTopics)
	return report.Questions(g.roster, g.rng, g.logger)
}

// Enriched asks the model for full question candidates over a transcript of
// the eligible pool and keeps only the ones that validate. Requires an
// enricher.
func (g *Generator) Enriched(ctx context.Context, msgs []chatdb.Message, count int) ([]question.Question, error) {
	if g.enricher == nil {
		return nil, fmt.Errorf("no enrichment client configured")
	}

	pool := quotes.BuildPool(msgs, g.poolCfg)
	cands, err := g.enricher.GenerateQuestions(ctx, enrich.Transcript(poolMessages(pool)), count)
	if err != nil {
		return nil, fmt.Errorf("enriched generation: %w", err)
	}

	var out []question.Question
	dropped := 0
	for _, cand := range cands {
		q, err := enrich.Convert(cand)
		if err != nil {
			dropped++
			g.logger.Warn("dropping invalid model question", "prompt", cand.Prompt, "error", err)
			continue
		}
		out = append(out, q)
	}
	if dropped > 0 {
		g.logger.Info("invalid model questions dropped", "dropped", dropped, "kept", len(out))
	}
	return out, nil
}
