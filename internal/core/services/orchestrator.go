package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driving"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
)

// Ensure RepairOrchestrator implements the interface.
var _ driving.RepairService = (*RepairOrchestrator)(nil)

// WebSummaryDelimiter separates retrieved passages from the web search summary.
const WebSummaryDelimiter = "=== WEB SEARCH SUMMARY ==="

const defaultWebFallbackPrompt = `Search the web for repair information about the following equipment and fault.
Summarise the most useful technical details: likely causes, diagnostic checks, repair procedure,
specifications (torque values, part numbers) and safety precautions. Cite nothing you did not find.

Equipment: %s
Fault: %s`

// OrchestratorDeps holds the stages the orchestrator sequences.
// Generator is used for the web search fallback and may be nil.
type OrchestratorDeps struct {
	Session     *Session
	Diagnoser   *Diagnoser
	Ingestor    *Ingestor
	Indexer     *Indexer
	Retriever   *Retriever
	Synthesizer *GuideSynthesizer
	Parts       *PartsLookup
	Generator   driven.GenerationService
}

// RepairOrchestrator runs the diagnose-then-repair pipeline.
type RepairOrchestrator struct {
	deps    OrchestratorDeps
	cfg     domain.PipelineSettings
	policy  StorePolicy
	prompts driven.PromptStore
	now     func() time.Time
}

// NewRepairOrchestrator creates an orchestrator.
func NewRepairOrchestrator(deps OrchestratorDeps, cfg domain.PipelineSettings) *RepairOrchestrator {
	return &RepairOrchestrator{
		deps:   deps,
		cfg:    cfg,
		policy: PreferPopulatedStore,
		now:    time.Now,
	}
}

// SetStorePolicy replaces the policy deciding between the first and the
// targeted ingestion store.
func (o *RepairOrchestrator) SetStorePolicy(policy StorePolicy) {
	if policy != nil {
		o.policy = policy
	}
}

// SetPromptStore sets the prompt store for the web fallback prompt.
func (o *RepairOrchestrator) SetPromptStore(store driven.PromptStore) {
	o.prompts = store
}

// pipelineRun carries the state of one Analyze call.
type pipelineRun struct {
	observer driving.StageObserver
	stage    domain.Stage
	now      func() time.Time
}

func (r *pipelineRun) enter(stage domain.Stage, format string, args ...any) {
	r.stage = stage
	msg := fmt.Sprintf(format, args...)
	logger.Section(string(stage))
	if msg != "" {
		logger.Debug("%s", msg)
	}
	if r.observer != nil {
		r.observer(domain.StageEvent{Stage: stage, Message: msg, At: r.now()})
	}
}

func (r *pipelineRun) fail(stage domain.Stage, err error) error {
	r.enter(domain.StageFailed, "%s: %v", stage, err)
	return &domain.StageError{Stage: stage, Err: err}
}

// Analyze runs the pipeline:
// diagnosing and ingesting concurrently, evaluating_ingestion, an optional
// single targeted_recrawl, retrieving, an optional web_fallback,
// synthesizing and parts_lookup. Only diagnosis and synthesis failures (or
// cancellation) are fatal.
func (o *RepairOrchestrator) Analyze(
	ctx context.Context, req domain.AnalyzeRequest, observer driving.StageObserver,
) (*domain.RepairGuide, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if o.cfg.PipelineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.PipelineTimeout)
		defer cancel()
	}
	run := &pipelineRun{observer: observer, now: o.now}

	eq := req.Equipment
	if eq.Symptom == "" {
		eq.Symptom = firstSentence(req.Description)
	}

	// 1. Diagnosis and first ingestion in parallel
	diag, first, err := o.diagnoseAndIngest(ctx, run, req, eq)
	if err != nil {
		return nil, run.fail(domain.StageDiagnosing, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, run.fail(domain.StageIngesting, err)
	}

	// 2. Evaluate ingestion, re-crawl once with the diagnosis if thin
	run.enter(domain.StageEvaluatingIngestion, "first pass: %d documents, %d chunks",
		first.DocumentsCrawled, first.ChunksCreated)
	current := first
	if !first.Success {
		current = nil
	}
	if first.ChunksCreated < o.cfg.MinChunksThreshold && diag.Valid() {
		run.enter(domain.StageTargetedRecrawl, "re-ingesting with fault %q", diag.Fault)
		targeted := o.deps.Ingestor.Ingest(ctx, eq.WithDiagnosis(diag.Fault, diag.Symptoms), domain.StoreOriginTargeted)
		current = o.chooseStore(ctx, current, targeted)
	}
	if err := ctx.Err(); err != nil {
		return nil, run.fail(run.stage, err)
	}

	// 3. Retrieval against the current store and any registered manuals
	run.enter(domain.StageRetrieving, "")
	storeIDs := o.deps.Session.Manuals(eq)
	storeID := ""
	if current != nil {
		storeID = current.StoreID
		storeIDs = append([]string{storeID}, storeIDs...)
	}
	passages := o.retrieve(ctx, storeIDs, retrievalQuery(diag))
	technical, references := formatPassages(passages)
	coverage := domain.CoverageNone
	if technical != "" {
		coverage = domain.CoverageStore
	}

	// 4. Web fallback when context is thin
	if chars := passageChars(passages); chars < o.cfg.MinContextChars {
		run.enter(domain.StageWebFallback, "context %d chars below %d", chars, o.cfg.MinContextChars)
		if summary, sources := o.webSummary(ctx, eq, diag); summary != "" {
			technical = joinContext(technical, summary)
			references = appendUnique(references, sources...)
			if coverage == domain.CoverageStore {
				coverage = domain.CoverageStoreWeb
			} else {
				coverage = domain.CoverageWeb
			}
		}
	}

	// 5. Guide synthesis
	run.enter(domain.StageSynthesizing, "")
	guide, err := o.deps.Synthesizer.Synthesize(ctx, SynthesisInput{
		Diagnosis:   diag,
		Context:     technical,
		Equipment:   eq,
		Preferences: req.Preferences,
	})
	if err != nil {
		return nil, run.fail(domain.StageSynthesizing, err)
	}

	// 6. Parts lookup, never fatal
	run.enter(domain.StagePartsLookup, "%d parts", len(guide.Parts))
	if o.deps.Parts != nil {
		o.deps.Parts.Annotate(ctx, guide, eq, req.Location)
	}
	if err := ctx.Err(); err != nil {
		return nil, run.fail(domain.StagePartsLookup, err)
	}

	guide.Diagnosis = diag
	guide.Confidence = diag.Confidence
	guide.GeneratedAt = o.now()
	guide.Disclaimers = domain.Disclaimers(eq.Category)
	guide.References = references
	guide.ContextCoverage = coverage
	guide.StoreID = storeID

	run.enter(domain.StageDone, "%s", guide.Title)
	return guide, nil
}

// diagnoseAndIngest runs diagnosis and the first ingestion pass concurrently
// and waits for both. A diagnosis failure cancels the ingestion.
func (o *RepairOrchestrator) diagnoseAndIngest(
	ctx context.Context, run *pipelineRun, req domain.AnalyzeRequest, eq domain.EquipmentQuery,
) (*domain.Diagnosis, *domain.IngestionResult, error) {
	run.enter(domain.StageDiagnosing, "%s", eq)
	run.enter(domain.StageIngesting, "first pass")

	ingestCtx, cancelIngest := context.WithCancel(ctx)
	defer cancelIngest()

	var (
		wg      sync.WaitGroup
		diag    *domain.Diagnosis
		diagErr error
		first   *domain.IngestionResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		diag, diagErr = o.deps.Diagnoser.Diagnose(ctx, req)
		if diagErr != nil {
			cancelIngest()
		}
	}()
	go func() {
		defer wg.Done()
		first = o.deps.Ingestor.Ingest(ingestCtx, eq, domain.StoreOriginCrawl)
	}()
	wg.Wait()

	if diagErr != nil {
		return nil, nil, diagErr
	}
	return diag, first, nil
}

// chooseStore applies the store policy and drops the losing store.
func (o *RepairOrchestrator) chooseStore(ctx context.Context, current, candidate *domain.IngestionResult) *domain.IngestionResult {
	winner, loser := current, candidate
	if o.policy(current, candidate) {
		winner, loser = candidate, current
		logger.Info("Targeted store %s replaces first pass", candidate.StoreID)
	}
	if loser != nil && loser.StoreID != "" && o.deps.Indexer != nil {
		if err := o.deps.Indexer.Drop(ctx, loser.StoreID); err != nil {
			logger.Warn("Failed to drop store %s: %v", loser.StoreID, err)
		}
	}
	return winner
}

func (o *RepairOrchestrator) retrieve(ctx context.Context, storeIDs []string, query string) []domain.RetrievedPassage {
	if len(storeIDs) == 0 || o.deps.Retriever == nil {
		return nil
	}
	passages, err := o.deps.Retriever.RetrieveAcross(ctx, storeIDs, query, o.cfg.RetrievalTopK)
	if err != nil {
		logger.With("stage", "retrieve").Warn("retrieval failed: %v", err)
		return nil
	}
	return passages
}

// webSummary asks the generator for a web-grounded summary. Failures and
// providers without grounding yield an empty summary.
func (o *RepairOrchestrator) webSummary(
	ctx context.Context, eq domain.EquipmentQuery, diag *domain.Diagnosis,
) (string, []string) {
	gen := o.deps.Generator
	if gen == nil || !gen.SupportsGrounding() {
		logger.Warn("Web fallback unavailable: no grounded generation provider")
		return "", nil
	}
	prompt := fmt.Sprintf(loadPrompt(o.prompts, driven.PromptWebFallback, defaultWebFallbackPrompt),
		eq.String()+" ("+eq.Category+")", retrievalQuery(diag))
	resp, err := gen.Generate(ctx, driven.GenerateRequest{Prompt: prompt, Grounded: true})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.With("stage", "web_fallback").Warn("grounded summary failed: %v", err)
		}
		return "", nil
	}
	var sources []string
	for _, s := range resp.Sources {
		if domain.ValidWebURL(s.URL) {
			sources = append(sources, s.URL)
		}
	}
	return strings.TrimSpace(resp.Text), sources
}

// retrievalQuery builds the retrieval query from the fault and symptoms.
func retrievalQuery(diag *domain.Diagnosis) string {
	if diag == nil {
		return ""
	}
	q := diag.Fault
	if len(diag.Symptoms) > 0 {
		q += ". Symptoms: " + strings.Join(diag.Symptoms, ", ")
	}
	return q
}

// formatPassages renders passages as numbered context blocks and returns
// the distinct source URLs in rank order.
func formatPassages(passages []domain.RetrievedPassage) (string, []string) {
	if len(passages) == 0 {
		return "", nil
	}
	var (
		b    strings.Builder
		refs []string
	)
	for i, p := range passages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		title := p.Chunk.Metadata.Title
		if title == "" {
			title = p.URL
		}
		fmt.Fprintf(&b, "[%d] %s (%s)\n%s", i+1, title, p.URL, p.Chunk.Text)
		refs = appendUnique(refs, p.URL)
	}
	return b.String(), refs
}

// passageChars is the retrieved text length, excluding the citation headers
// formatPassages adds.
func passageChars(passages []domain.RetrievedPassage) int {
	n := 0
	for _, p := range passages {
		n += len(p.Chunk.Text)
	}
	return n
}

func joinContext(technical, summary string) string {
	if technical == "" {
		return WebSummaryDelimiter + "\n" + summary
	}
	return technical + "\n\n" + WebSummaryDelimiter + "\n" + summary
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		dup := false
		for _, existing := range list {
			if existing == item {
				dup = true
				break
			}
		}
		if !dup && item != "" {
			list = append(list, item)
		}
	}
	return list
}

// firstSentence returns the description up to its first sentence end,
// capped to a short search-friendly length.
func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".!?\n"); i > 0 {
		s = s[:i]
	}
	return truncateRunes(s, 120)
}
