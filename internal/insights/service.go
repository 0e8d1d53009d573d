package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/agentinsights/internal/embeddings"
	"github.com/fyrsmithlabs/agentinsights/internal/extraction"
	"github.com/fyrsmithlabs/agentinsights/internal/records"
	"github.com/fyrsmithlabs/agentinsights/internal/vectorstore"
)

// Service wires the record source, the vector store, the embedder and the
// extractor together.
type Service struct {
	records   RecordSource
	vectors   vectorstore.Store
	embedder  embeddings.Provider
	extractor Extractor
	logger    *zap.Logger
}

// NewService creates a Service. embedder is needed by Embed and Search,
// extractor by Extract; either may be nil when the caller only runs the
// other flows.
func NewService(
	src RecordSource,
	vectors vectorstore.Store,
	embedder embeddings.Provider,
	extractor Extractor,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		records:   src,
		vectors:   vectors,
		embedder:  embedder,
		extractor: extractor,
		logger:    logger,
	}
}

// Embed embeds learnings and/or session transcripts and upserts the vectors.
// Chunks are embedded and stored one at a time; a failure stops the run and
// leaves earlier chunks stored.
func (s *Service) Embed(ctx context.Context, opts EmbedOptions) (*EmbedResult, error) {
	if s.embedder == nil || s.vectors == nil {
		return nil, errors.New("insights: embedding requires an embedder and a vector store")
	}
	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = vectorstore.Kinds()
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	transcriptChars := opts.TranscriptChars
	if transcriptChars <= 0 {
		transcriptChars = DefaultTranscriptChars
	}

	result := &EmbedResult{
		Embedded: map[vectorstore.Kind]int{},
		Skipped:  map[vectorstore.Kind]int{},
	}
	for _, kind := range kinds {
		texts, err := s.texts(ctx, kind, transcriptChars)
		if err != nil {
			return result, err
		}

		usable := texts[:0:0]
		for _, t := range texts {
			if strings.TrimSpace(t.Text) == "" {
				result.Skipped[kind]++
				continue
			}
			usable = append(usable, t)
		}
		if result.Skipped[kind] > 0 {
			s.logger.Warn("skipping blank texts", zap.String("kind", string(kind)), zap.Int("count", result.Skipped[kind]))
		}

		n, err := s.embedKind(ctx, kind, usable, batchSize, opts.Progress)
		result.Embedded[kind] = n
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

func (s *Service) texts(ctx context.Context, kind vectorstore.Kind, transcriptChars int) ([]records.Text, error) {
	switch kind {
	case vectorstore.KindLearning:
		return s.records.LearningTexts(ctx)
	case vectorstore.KindSession:
		return s.records.SessionTranscripts(ctx, transcriptChars)
	default:
		return nil, fmt.Errorf("%w: %q", vectorstore.ErrUnknownKind, kind)
	}
}

func (s *Service) embedKind(ctx context.Context, kind vectorstore.Kind, texts []records.Text, batchSize int, progress func(Progress)) (int, error) {
	start := time.Now()
	total := len(texts)
	done := 0

	for done < total {
		end := min(done+batchSize, total)
		chunk := texts[done:end]

		inputs := make([]string, len(chunk))
		for i, t := range chunk {
			inputs[i] = t.Text
		}
		vectors, err := s.embedder.EmbedBatch(ctx, inputs)
		if err != nil {
			return done, fmt.Errorf("embedding %s chunk at %d: %w", kind, done, err)
		}
		if len(vectors) != len(chunk) {
			return done, fmt.Errorf("%w: %d texts, %d vectors", ErrEmbeddingMismatch, len(chunk), len(vectors))
		}
		if dim := s.embedder.Dimension(); dim > 0 {
			for i, v := range vectors {
				if len(v) != dim {
					return done, fmt.Errorf("%w: %s %q has dimension %d, want %d",
						ErrEmbeddingMismatch, kind, chunk[i].ID, len(v), dim)
				}
			}
		}

		recs := make([]vectorstore.Record, len(chunk))
		for i, t := range chunk {
			recs[i] = vectorstore.Record{ID: t.ID, Vector: vectors[i]}
		}
		if err := s.vectors.PutBatch(ctx, kind, recs); err != nil {
			return done, fmt.Errorf("storing %s embeddings: %w", kind, err)
		}

		done = end
		if progress != nil {
			progress(Progress{Kind: kind, Done: done, Total: total})
		}
	}

	s.logger.Info("embedding complete",
		zap.String("kind", string(kind)),
		zap.Int("count", done),
		zap.Duration("duration", time.Since(start)),
	)
	return done, nil
}

// Extract runs learning extraction for one session or for every session
// without learnings. A failed model call is reported for that session and
// the run continues; store failures end the run.
func (s *Service) Extract(ctx context.Context, opts ExtractOptions) (*ExtractResult, error) {
	if s.extractor == nil {
		return nil, errors.New("insights: extraction requires an extractor")
	}

	var sessions []records.Session
	switch {
	case opts.SessionID != "":
		sess, err := s.records.Session(ctx, opts.SessionID)
		if err != nil {
			return nil, err
		}
		sessions = []records.Session{*sess}
	case opts.All:
		limit := opts.Limit
		if limit <= 0 {
			limit = records.DefaultUnprocessedLimit
		}
		var err error
		if sessions, err = s.records.UnprocessedSessions(ctx, limit); err != nil {
			return nil, err
		}
	default:
		return nil, ErrNoTarget
	}

	maxChars := opts.MaxContextChars
	if maxChars <= 0 {
		maxChars = extraction.DefaultMaxContextChars
	}

	result := &ExtractResult{Sessions: len(sessions)}
	s.logger.Info("starting extraction", zap.Int("sessions", len(sessions)))
	if opts.OnStart != nil && len(sessions) > 0 {
		opts.OnStart(len(sessions))
	}

	for _, sess := range sessions {
		report, err := s.extractSession(ctx, sess, maxChars, opts.MinConfidence)
		if err != nil {
			return result, err
		}
		switch {
		case report.Skipped:
			result.Skipped++
		case report.Err != nil:
			result.Failed++
		default:
			result.Processed++
			result.Learnings += len(report.LearningIDs)
		}
		if opts.OnSession != nil {
			opts.OnSession(report)
		}
	}

	s.logger.Info("extraction complete",
		zap.Int("processed", result.Processed),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Int("learnings", result.Learnings),
	)
	return result, nil
}

// extractSession returns an error only for failures that should end the run.
func (s *Service) extractSession(ctx context.Context, sess records.Session, maxChars int, minConfidence float64) (SessionReport, error) {
	report := SessionReport{SessionID: sess.ID}
	log := s.logger.With(zap.String("session.id", sess.ID))

	detail, err := s.records.Detail(ctx, sess)
	if err != nil {
		return report, err
	}
	doc := extraction.BuildContext(extraction.SessionDataFrom(detail), maxChars)
	if doc == "" {
		log.Info("session has no content to extract from")
		report.Skipped = true
		return report, nil
	}

	res, err := s.extractor.Extract(ctx, doc, minConfidence)
	if err != nil {
		log.Warn("extraction failed, skipping session", zap.Error(err))
		report.Err = err
		return report, nil
	}

	learnings := make([]records.NewLearning, len(res.Learnings))
	for i, l := range res.Learnings {
		learnings[i] = records.NewLearning{
			Content:      l.Content,
			Type:         string(l.Type),
			Scope:        string(l.Scope),
			Confidence:   l.Confidence,
			Tags:         l.Tags,
			RelatedFiles: l.RelatedFiles,
		}
	}
	ids, err := s.records.SaveExtraction(ctx, sess, learnings, res.SessionSummary, string(res.SessionOutcome))
	if err != nil {
		return report, err
	}
	report.LearningIDs = ids
	log.Debug("session extracted", zap.Int("learnings", len(ids)), zap.String("outcome", string(res.SessionOutcome)))
	return report, nil
}

// Search embeds the query and returns the nearest stored entities of the
// requested kind. Vectors whose row no longer exists in the record source
// are skipped.
func (s *Service) Search(ctx context.Context, opts SearchOptions) ([]Hit, error) {
	if s.embedder == nil || s.vectors == nil {
		return nil, errors.New("insights: search requires an embedder and a vector store")
	}
	kind := opts.Kind
	if kind == "" {
		kind = vectorstore.KindLearning
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	query, err := s.embedder.Embed(ctx, opts.Query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	matches, err := s.vectors.Search(ctx, kind, query, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(matches))
	for _, m := range matches {
		hit := Hit{ID: m.ID, Score: m.Score}
		switch kind {
		case vectorstore.KindLearning:
			row, err := s.records.Learning(ctx, m.ID)
			if errors.Is(err, records.ErrLearningNotFound) {
				s.logger.Debug("skipping orphaned learning embedding", zap.String("id", m.ID))
				continue
			}
			if err != nil {
				return nil, err
			}
			hit.Learning = row
		case vectorstore.KindSession:
			sess, err := s.records.Session(ctx, m.ID)
			if errors.Is(err, records.ErrSessionNotFound) {
				s.logger.Debug("skipping orphaned session embedding", zap.String("id", m.ID))
				continue
			}
			if err != nil {
				return nil, err
			}
			hit.Session = sess
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
