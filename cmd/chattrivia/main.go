package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/henzelabs/chattrivia/internal/chatdb"
	"github.com/henzelabs/chattrivia/internal/config"
	"github.com/henzelabs/chattrivia/internal/enrich"
	"github.com/henzelabs/chattrivia/internal/export"
	"github.com/henzelabs/chattrivia/internal/identity"
	"github.com/henzelabs/chattrivia/internal/pipeline"
	"github.com/henzelabs/chattrivia/internal/question"
	"github.com/henzelabs/chattrivia/internal/quotes"
	"github.com/henzelabs/chattrivia/internal/store"
	"github.com/henzelabs/chattrivia/internal/trivia"
)

func main() {
	cfg := config.Load()

	var (
		mode      = flag.String("mode", "who-said-it", "generation mode: who-said-it, which-chat, stats, enriched, general, all")
		count     = flag.Int("count", 10, "number of questions to generate per mode")
		chatDB    = flag.String("chat-db", cfg.ChatDBPath, "path to the iMessage chat.db file")
		chats     = flag.String("chats", cfg.Chats, "comma-separated chat identifiers (empty for all)")
		days      = flag.Int("days", cfg.LookbackDays, "how many days of history to read")
		limit     = flag.Int("limit", cfg.MessageLimit, "maximum messages to read")
		namesPath = flag.String("names", "", "JSON file mapping sender ids to display names")
		csvPath   = flag.String("csv", "", "write questions to this CSV file")
		jsonPath  = flag.String("json", "", "write questions to this JSON file")
		save      = flag.Bool("save", false, "save the batch to the trivia store")
		seed      = flag.Int64("seed", 0, "random seed (0 uses the current time)")
		noEnrich  = flag.Bool("no-llm", false, "skip LLM curation even if an API key is set")
	)
	flag.Parse()

	setupLogging(cfg.LogLevel)
	logger := slog.Default()

	ctx := context.Background()

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(s))

	var (
		qs  []question.Question
		err error
	)
	if *mode == "general" {
		// General trivia needs no chat history at all.
		qs, err = trivia.NewClient(logger).Fetch(ctx, *count, 0, "", rng)
	} else {
		qs, err = chatQuestions(ctx, cfg, rng, logger, chatOptions{
			mode:      *mode,
			count:     *count,
			chatDB:    *chatDB,
			chats:     *chats,
			days:      *days,
			limit:     *limit,
			namesPath: *namesPath,
			noEnrich:  *noEnrich,
		})
	}
	if err != nil {
		slog.Error("generation failed", "mode", *mode, "error", err)
		os.Exit(1)
	}
	if len(qs) == 0 {
		slog.Error("no questions produced", "mode", *mode)
		os.Exit(1)
	}
	slog.Info("questions generated", "mode", *mode, "count", len(qs))

	if *csvPath != "" {
		if err := export.SaveCSV(*csvPath, qs); err != nil {
			slog.Error("CSV export failed", "path", *csvPath, "error", err)
			os.Exit(1)
		}
		slog.Info("CSV written", "path", *csvPath)
	}
	if *jsonPath != "" {
		if err := export.SaveJSON(*jsonPath, qs); err != nil {
			slog.Error("JSON export failed", "path", *jsonPath, "error", err)
			os.Exit(1)
		}
		slog.Info("JSON written", "path", *jsonPath)
	}
	if *save {
		st, err := store.Open(cfg.TriviaDBPath)
		if err != nil {
			slog.Error("failed to open trivia store", "path", cfg.TriviaDBPath, "error", err)
			os.Exit(1)
		}
		defer st.Close()

		batchID, err := st.SaveBatch(ctx, *mode, qs)
		if err != nil {
			slog.Error("failed to save batch", "error", err)
			os.Exit(1)
		}
		slog.Info("batch saved", "batch", batchID, "questions", len(qs))
	}
	if *csvPath == "" && *jsonPath == "" && !*save {
		if err := export.WriteCSV(os.Stdout, qs); err != nil {
			slog.Error("CSV output failed", "error", err)
			os.Exit(1)
		}
	}
}

type chatOptions struct {
	mode      string
	count     int
	chatDB    string
	chats     string
	days      int
	limit     int
	namesPath string
	noEnrich  bool
}

func chatQuestions(ctx context.Context, cfg config.Config, rng *rand.Rand, logger *slog.Logger, o chatOptions) ([]question.Question, error) {
	mapping, err := loadNames(o.namesPath)
	if err != nil {
		return nil, fmt.Errorf("load names file %s: %w", o.namesPath, err)
	}
	resolver := identity.NewResolver(mapping)

	db, err := chatdb.Open(o.chatDB, resolver, logger)
	if err != nil {
		return nil, fmt.Errorf("open chat database %s: %w", o.chatDB, err)
	}
	defer db.Close()
	slog.Info("chat database opened", "path", o.chatDB)

	opts := chatdb.QueryOptions{
		Since: time.Now().AddDate(0, 0, -o.days),
		Limit: o.limit,
	}
	if o.chats != "" {
		opts.Chats = strings.Split(o.chats, ",")
	}

	msgs, err := db.Messages(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("no messages found in the last %d days", o.days)
	}

	var enricher *enrich.Client
	if cfg.OpenAIAPIKey != "" && !o.noEnrich {
		enricher = enrich.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
		slog.Info("LLM enrichment enabled", "model", cfg.OpenAIModel)
	} else {
		slog.Info("LLM enrichment disabled, using local sampling")
	}

	gen := pipeline.New(pipeline.Config{
		Pool:     quotes.DefaultPoolConfig(),
		Roster:   pipeline.RosterFromMessages(msgs),
		Order:    quotes.OrderRandom,
		RNG:      rng,
		Enricher: enricher,
		Logger:   logger,
	})

	switch o.mode {
	case "who-said-it":
		return gen.WhoSaidIt(ctx, msgs, o.count)
	case "which-chat":
		return gen.WhichChat(msgs, o.count)
	case "stats":
		return statQuestions(ctx, gen, db, msgs, opts)
	case "enriched":
		return gen.Enriched(ctx, msgs, o.count)
	case "all":
		return allModes(ctx, gen, db, msgs, opts, o.count, rng, logger)
	default:
		return nil, fmt.Errorf("unknown mode %q", o.mode)
	}
}

func statQuestions(ctx context.Context, gen *pipeline.Generator, db *chatdb.DB, msgs []chatdb.Message, opts chatdb.QueryOptions) ([]question.Question, error) {
	reactions, err := db.Reactions(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("read reactions: %w", err)
	}
	return gen.StatQuestions(msgs, reactions)
}

func allModes(ctx context.Context, gen *pipeline.Generator, db *chatdb.DB, msgs []chatdb.Message, opts chatdb.QueryOptions, count int, rng *rand.Rand, logger *slog.Logger) ([]question.Question, error) {
	qs, err := gen.WhoSaidIt(ctx, msgs, count)
	if err != nil {
		return nil, err
	}

	chatQs, err := gen.WhichChat(msgs, count)
	if err != nil {
		return nil, err
	}
	qs = append(qs, chatQs...)

	statQs, err := statQuestions(ctx, gen, db, msgs, opts)
	if err != nil {
		return nil, err
	}
	qs = append(qs, statQs...)

	// General trivia and enriched questions are additive; the run still
	// produces the local modes when the network or API key is missing.
	generalQs, err := trivia.NewClient(logger).Fetch(ctx, count, 0, "", rng)
	if err != nil {
		slog.Warn("general trivia skipped", "error", err)
	} else {
		qs = append(qs, generalQs...)
	}

	enrichedQs, err := gen.Enriched(ctx, msgs, count)
	if err != nil {
		slog.Warn("enriched generation skipped", "error", err)
		return qs, nil
	}
	return append(qs, enrichedQs...), nil
}

// loadNames reads a JSON object of sender id to display name. An empty path
// yields an empty mapping, leaving raw ids as speaker names.
func loadNames(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read names file: %w", err)
	}
	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("parse names file: %w", err)
	}
	return mapping, nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
