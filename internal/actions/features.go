package actions

import (
	"context"
	"time"

	"github.com/elucidare/tonewise/internal/apperr"
	"github.com/elucidare/tonewise/internal/httpmodel"
	"github.com/elucidare/tonewise/internal/metrics"
	"github.com/elucidare/tonewise/internal/model"
	"github.com/elucidare/tonewise/internal/provider"
)

// withBudget bounds the whole request.
func (e *Executor) withBudget(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, orDefault(e.Timeout.Budget, DefaultRequestBudget))
}

// AnalyzeTone analyzes the tone of a message.
func (e *Executor) AnalyzeTone(ctx context.Context, userID string, req httpmodel.ToneAnalysisRequest) (*model.ToneAnalysisResponse, error) {
	r := e.begin(userID, model.FeatureToneAnalysis)

	ctx, cancel := e.withBudget(ctx)
	defer cancel()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, r.fail(err)
	}
	r.advance(StateValidated)

	if err := e.screen(req.Text); err != nil {
		return nil, r.fail(err)
	}
	r.advance(StateModerated)

	if err := e.gate(ctx, r); err != nil {
		return nil, r.fail(err)
	}
	r.advance(StateGated)

	r.advance(StateExecuting)
	system, user := provider.TonePrompt(req.Text)
	raw, err := e.completeJSON(ctx, r, system, user)
	if err != nil {
		return nil, r.fail(err)
	}
	result, err := provider.ParseToneResult(raw)
	if err != nil {
		return nil, r.fail(err)
	}

	r.advance(StatePersisting)
	tones, err := encodeJSON(result.Tones)
	if err != nil {
		return nil, r.fail(err)
	}
	suggestions, err := encodeJSON(result.Suggestions)
	if err != nil {
		return nil, r.fail(err)
	}
	now := e.now()
	analysis := &model.ToneAnalysis{
		ID:               e.newID(),
		UserID:           userID,
		InputText:        req.Text,
		Tones:            tones,
		Confidence:       result.Confidence,
		Explanation:      result.Explanation,
		Suggestions:      suggestions,
		ProcessingTimeMS: r.elapsedMS(now),
		CreatedAt:        now,
	}
	err = persist(ctx, func(ctx context.Context) error {
		return e.Store.SaveToneAnalysis(ctx, analysis)
	})
	if err != nil {
		return nil, r.fail(err)
	}

	e.meter(ctx, r)
	r.advance(StateCompleted)

	return &model.ToneAnalysisResponse{
		ID:               analysis.ID,
		ToneResult:       *result,
		ProcessingTimeMS: r.elapsedMS(e.now()),
	}, nil
}

// GenerateScripts generates suggested replies for a situation.
func (e *Executor) GenerateScripts(ctx context.Context, userID string, req httpmodel.ScriptGenerationRequest) (*model.ScriptGenerationResponse, error) {
	r := e.begin(userID, model.FeatureScriptGeneration)

	ctx, cancel := e.withBudget(ctx)
	defer cancel()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, r.fail(err)
	}
	r.advance(StateValidated)

	if err := e.screen(req.SituationContext); err != nil {
		return nil, r.fail(err)
	}
	r.advance(StateModerated)

	if err := e.gate(ctx, r); err != nil {
		return nil, r.fail(err)
	}
	r.advance(StateGated)

	r.advance(StateExecuting)
	system, user := provider.ScriptPrompt(req.SituationContext, req.RelationshipType)
	raw, err := e.completeJSON(ctx, r, system, user)
	if err != nil {
		return nil, r.fail(err)
	}
	result, err := provider.ParseScriptResult(raw)
	if err != nil {
		return nil, r.fail(err)
	}

	r.advance(StatePersisting)
	responses, err := encodeJSON(result.Responses)
	if err != nil {
		return nil, r.fail(err)
	}
	now := e.now()
	generation := &model.ScriptGeneration{
		ID:               e.newID(),
		UserID:           userID,
		SituationContext: req.SituationContext,
		RelationshipType: req.RelationshipType,
		Responses:        responses,
		ProcessingTimeMS: r.elapsedMS(now),
		CreatedAt:        now,
	}
	err = persist(ctx, func(ctx context.Context) error {
		return e.Store.SaveScriptGeneration(ctx, generation)
	})
	if err != nil {
		return nil, r.fail(err)
	}

	e.meter(ctx, r)
	r.advance(StateCompleted)

	return &model.ScriptGenerationResponse{
		ID:               generation.ID,
		ScriptResult:     *result,
		ProcessingTimeMS: r.elapsedMS(e.now()),
	}, nil
}

// SynthesizeVoice converts text to speech. The audio isn't stored, so usage is recorded as soon as the provider
// returns a usable payload.
func (e *Executor) SynthesizeVoice(ctx context.Context, userID string, req httpmodel.VoiceSynthesisRequest) (*model.VoiceResult, error) {
	r := e.begin(userID, model.FeatureVoiceSynthesis)

	ctx, cancel := e.withBudget(ctx)
	defer cancel()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, r.fail(err)
	}
	r.advance(StateValidated)

	if err := e.screen(req.Text); err != nil {
		return nil, r.fail(err)
	}
	r.advance(StateModerated)

	if err := e.gate(ctx, r); err != nil {
		return nil, r.fail(err)
	}
	r.advance(StateGated)

	r.advance(StateExecuting)
	if e.Speech == nil {
		return nil, r.fail(apperr.New(apperr.KindServer, "no speech synthesizer is configured", ""))
	}
	speech, err := e.synthesize(ctx, r, provider.SpeechRequest{
		Text:  req.Text,
		Voice: req.Voice,
		Speed: req.SpeedOrDefault(),
	})
	if err != nil {
		return nil, r.fail(err)
	}

	e.meter(ctx, r)
	r.advance(StateCompleted)

	return &model.VoiceResult{
		Audio:            speech.Audio,
		ContentType:      speech.ContentType,
		ProcessingTimeMS: r.elapsedMS(e.now()),
	}, nil
}

// synthesize calls the speech provider under the voice timeout and verifies the payload.
func (e *Executor) synthesize(ctx context.Context, r *run, req provider.SpeechRequest) (*provider.Speech, error) {
	callCtx, cancel := context.WithTimeout(ctx, orDefault(e.Timeout.Voice, DefaultVoiceTimeout))
	defer cancel()

	started := time.Now()
	speech, err := e.Speech.Synthesize(callCtx, req)
	metrics.ObserveProviderCall(e.Speech.Name(), string(r.feature), started, err)
	if err != nil {
		return nil, provider.Classify(err, e.Speech.Name())
	}
	if err = provider.CheckSpeech(speech); err != nil {
		return nil, err
	}
	if speech.ContentType == "" {
		speech.ContentType = "audio/mpeg"
	}

	return speech, nil
}
