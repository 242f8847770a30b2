package textgen

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/vetnav/facility-agent/internal/types"
)

// Analyzer turns search findings into structured guidance, either in one
// shot or as a progressively refined stream of analysis snapshots.
type Analyzer struct {
	logger *slog.Logger
	gen    Generator
}

func NewAnalyzer(gen Generator, logger *slog.Logger) *Analyzer {
	return &Analyzer{logger: logger, gen: gen}
}

// Available reports whether the backing generator can serve requests.
func (a *Analyzer) Available(ctx context.Context) bool {
	return a.gen.Available(ctx)
}

// Analyze runs a blocking generation and parses the result. When the model
// ignores the section format the output is salvaged heuristically; when
// generation fails the fixed fallback is returned alongside the error.
func (a *Analyzer) Analyze(ctx context.Context, actx AnalysisContext) (*types.Analysis, error) {
	ctx, span := otel.Tracer("GuidanceAnalyzer").Start(ctx, "Analyze")
	defer span.End()

	prompt := BuildAnalysisPrompt(actx)
	text, err := a.gen.Generate(ctx, prompt, Options{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		fallback := FallbackAnalysis(actx.Weather)
		return &fallback, err
	}

	analysis := a.finalize(ctx, text, actx)
	return &analysis, nil
}

// AnalyzeStream streams the generation, re-parsing the accumulated text on
// every fragment and invoking onUpdate only when a slot actually grew. The
// final snapshot is delivered with IsComplete set.
func (a *Analyzer) AnalyzeStream(ctx context.Context, actx AnalysisContext, onUpdate func(types.AnalysisEvent)) (*types.Analysis, error) {
	ctx, span := otel.Tracer("GuidanceAnalyzer").Start(ctx, "AnalyzeStream")
	defer span.End()

	prompt := BuildAnalysisPrompt(actx)
	current := types.Analysis{UrgencyLevel: types.UrgencyNormal}

	full, err := a.gen.GenerateStream(ctx, prompt, Options{}, func(_, soFar string) {
		updated := ParseProgressive(soFar)
		if !updated.HasGrownSince(current) {
			return
		}
		current = updated
		if onUpdate != nil {
			snapshot := updated
			onUpdate(types.AnalysisEvent{
				Type:     types.AnalysisChunk,
				Analysis: &snapshot,
			})
		}
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "streaming generation failed")
		fallback := FallbackAnalysis(actx.Weather)
		if onUpdate != nil {
			onUpdate(types.AnalysisEvent{
				Type:     types.AnalysisError,
				Error:    err.Error(),
				Fallback: &fallback,
			})
		}
		return &fallback, err
	}

	final := a.finalize(ctx, full, actx)
	if onUpdate != nil {
		onUpdate(types.AnalysisEvent{
			Type:       types.AnalysisComplete,
			Analysis:   &final,
			IsComplete: true,
		})
	}
	return &final, nil
}

func (a *Analyzer) finalize(ctx context.Context, text string, actx AnalysisContext) types.Analysis {
	analysis := ParseProgressive(text)
	if analysis.PrimaryRecommendation == "" {
		a.logger.WarnContext(ctx, "Model output missed the section format, using heuristic extraction")
		analysis = HeuristicAnalysis(text, actx.Query, actx.Weather)
	}
	return analysis
}
