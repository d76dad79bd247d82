package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ComplianceEngine orchestrates the retrieval-augmented classification
// pipeline: it ingests labeled history into the vector index and drives
// retrieve → classify → score over batches of unlabeled emails.
type ComplianceEngine struct {
	embedder       EmbeddingClient
	index          VectorIndex
	retriever      *Retriever
	reasoner       ReasoningClient
	scorer         *RiskScorer
	logger         *zap.Logger
	topK           int
	workers        int
	embedChunkSize int
}

// NewComplianceEngine creates a new engine
func NewComplianceEngine(
	embedder EmbeddingClient,
	index VectorIndex,
	retriever *Retriever,
	reasoner ReasoningClient,
	scorer *RiskScorer,
	logger *zap.Logger,
	topK int,
	workers int,
	embedChunkSize int,
) *ComplianceEngine {
	if topK <= 0 {
		topK = 3
	}
	if workers <= 0 {
		workers = 4
	}
	if embedChunkSize <= 0 {
		embedChunkSize = 32
	}
	return &ComplianceEngine{
		embedder:       embedder,
		index:          index,
		retriever:      retriever,
		reasoner:       reasoner,
		scorer:         scorer,
		logger:         logger,
		topK:           topK,
		workers:        workers,
		embedChunkSize: embedChunkSize,
	}
}

// IngestHistory embeds labeled records and upserts them into the vector
// index. Per-record failures are collected in the summary and never abort
// the batch; only an index write failure is fatal.
func (e *ComplianceEngine) IngestHistory(ctx context.Context, records []EmailRecord) (*IngestSummary, error) {
	summary := &IngestSummary{}

	// Validate and dedupe within the batch; the last occurrence of a
	// record ID wins and counts as a replacement.
	var valid []EmailRecord
	position := make(map[string]int)
	for i := range records {
		record := records[i]
		if reason := validateHistoryRecord(&record); reason != "" {
			summary.Failed++
			summary.Failures = append(summary.Failures, RecordFailure{RecordID: record.ID, Reason: reason})
			continue
		}
		record.EnsureID()
		if at, seen := position[record.ID]; seen {
			valid[at] = record
			summary.Replaced++
			continue
		}
		position[record.ID] = len(valid)
		valid = append(valid, record)
	}

	entries := make([]IndexEntry, len(valid))
	failed := make([]string, len(valid))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for start := 0; start < len(valid); start += e.embedChunkSize {
		start := start
		end := start + e.embedChunkSize
		if end > len(valid) {
			end = len(valid)
		}
		g.Go(func() error {
			texts := make([]string, end-start)
			for i, record := range valid[start:end] {
				texts[i] = record.Text()
			}
			vectors, err := e.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				// Per-record failure, not fatal to the batch
				for i := start; i < end; i++ {
					failed[i] = err.Error()
				}
				return nil
			}
			for i, record := range valid[start:end] {
				entries[start+i] = IndexEntry{
					RecordID:  record.ID,
					Embedding: vectors[i],
					Label:     record.Label,
					Category:  record.Category,
					Sender:    record.Sender,
					Subject:   record.Subject,
					Body:      record.Body,
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to embed history batch: %w", err)
	}

	upsertable := entries[:0:0]
	for i := range entries {
		if failed[i] != "" {
			summary.Failed++
			summary.Failures = append(summary.Failures, RecordFailure{RecordID: valid[i].ID, Reason: failed[i]})
			continue
		}
		upsertable = append(upsertable, entries[i])
	}

	if len(upsertable) > 0 {
		inserted, replaced, err := e.index.Upsert(ctx, upsertable)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert history entries: %w", err)
		}
		summary.Inserted = inserted
		summary.Replaced += replaced
	}

	e.logger.Info("Ingested history batch",
		zap.Int("inserted", summary.Inserted),
		zap.Int("replaced", summary.Replaced),
		zap.Int("failed", summary.Failed),
		zap.Int("index_size", e.index.Size()))

	return summary, nil
}

// Evaluate runs the full pipeline over a batch of unlabeled emails on a
// bounded worker pool. Every input yields exactly one Alert: per-email
// failures degrade to needs_review instead of aborting the batch. When
// the context is canceled, in-flight emails finish and the remainder are
// flagged, never silently dropped.
func (e *ComplianceEngine) Evaluate(ctx context.Context, emails []EmailRecord) ([]Alert, error) {
	runID := uuid.NewString()
	e.logger.Info("Starting evaluation batch",
		zap.String("run_id", runID),
		zap.Int("emails", len(emails)),
		zap.Int("workers", e.workers))

	pool, err := ants.NewPool(e.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	alerts := make([]Alert, len(emails))
	var wg sync.WaitGroup
	for i := range emails {
		i := i
		email := emails[i]
		email.EnsureID()

		if ctx.Err() != nil {
			alerts[i] = degradedAlert(&email, nil, nil, "evaluation canceled before processing")
			continue
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			alerts[i] = e.evaluateOne(ctx, &email)
		})
		if submitErr != nil {
			wg.Done()
			alerts[i] = degradedAlert(&email, nil, nil, "worker pool rejected task: "+submitErr.Error())
		}
	}
	wg.Wait()

	sortAlerts(alerts)

	e.logger.Info("Finished evaluation batch",
		zap.String("run_id", runID),
		zap.Int("alerts", len(alerts)))

	return alerts, nil
}

// evaluateOne runs retrieve → classify → score for a single email. The
// stages are strictly sequential: classification needs retrieval's output.
func (e *ComplianceEngine) evaluateOne(ctx context.Context, email *EmailRecord) Alert {
	neighbors, err := e.retriever.Retrieve(ctx, email, e.topK)
	if err != nil {
		e.logger.Warn("Retrieval failed",
			zap.String("email_id", email.ID),
			zap.Error(err))
		return degradedAlert(email, nil, nil, err.Error())
	}

	classification, err := e.reasoner.Classify(ctx, email, neighbors)
	if err != nil {
		e.logger.Warn("Classification failed",
			zap.String("email_id", email.ID),
			zap.Error(err))
		return degradedAlert(email, neighbors, nil, err.Error())
	}

	participants := append([]string{email.Sender}, email.Recipients...)
	risk, err := e.scorer.Score(classification, participants)
	if err != nil {
		e.logger.Warn("Risk scoring failed",
			zap.String("email_id", email.ID),
			zap.String("category", classification.Category),
			zap.Error(err))
		return degradedAlert(email, neighbors, classification, err.Error())
	}

	return Alert{
		EmailID:        email.ID,
		Email:          *email,
		Status:         StatusClassified,
		Classification: classification,
		Risk:           risk,
		Neighbors:      neighbors,
		EvaluatedAt:    time.Now(),
	}
}

func degradedAlert(email *EmailRecord, neighbors RetrievalResult, classification *Classification, reason string) Alert {
	return Alert{
		EmailID:        email.ID,
		Email:          *email,
		Status:         StatusNeedsReview,
		FailureReason:  reason,
		Classification: classification,
		Neighbors:      neighbors,
		EvaluatedAt:    time.Now(),
	}
}

// sortAlerts orders the report: risk score descending, ties broken by
// timestamp ascending then record ID so reruns are audit-reproducible.
// Degraded alerts carry no score and sink to the end.
func sortAlerts(alerts []Alert) {
	score := func(a *Alert) float64 {
		if a.Risk == nil {
			return -1
		}
		return a.Risk.Score
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		si, sj := score(&alerts[i]), score(&alerts[j])
		if si != sj {
			return si > sj
		}
		if !alerts[i].Email.Timestamp.Equal(alerts[j].Email.Timestamp) {
			return alerts[i].Email.Timestamp.Before(alerts[j].Email.Timestamp)
		}
		return alerts[i].EmailID < alerts[j].EmailID
	})
}

func validateHistoryRecord(record *EmailRecord) string {
	if strings.TrimSpace(record.Text()) == "" {
		return "empty email text"
	}
	if record.Label != LabelCompliant && record.Label != LabelNonCompliant {
		return fmt.Sprintf("invalid label %q", record.Label)
	}
	return ""
}
