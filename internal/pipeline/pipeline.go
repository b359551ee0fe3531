// Package pipeline sequences a full commit-message generation run: staged
// diff to normalized text, prompt rendering, completion request(s),
// candidate selection, operator confirmation, and finally the commit.
//
// The pipeline never retries on its own. A transport or HTTP failure is
// fatal to the run; the num-tries knob only controls how many candidates
// are generated up front.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/JakeFAU/gitai/internal/candidate"
	"github.com/JakeFAU/gitai/internal/diff"
	"github.com/JakeFAU/gitai/internal/openai"
	"github.com/JakeFAU/gitai/internal/prompt"
	"github.com/JakeFAU/gitai/internal/tokens"
)

// State is the terminal state of a run.
type State int

const (
	// Failed means a fatal error ended the run before the operator decided.
	Failed State = iota
	// Committed means the operator accepted and the commit was written.
	Committed
	// Declined means the operator rejected every candidate.
	Declined
)

func (s State) String() string {
	switch s {
	case Committed:
		return "committed"
	case Declined:
		return "declined"
	default:
		return "failed"
	}
}

// DiffSource supplies the staged structured diff.
type DiffSource interface {
	StagedDiff() (diff.Diff, error)
}

// Committer writes the accepted message as a commit and returns its id.
type Committer interface {
	Commit(message string) (string, error)
}

// Confirmer asks the operator whether to proceed.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// Sampling carries the request parameters that are configuration, not
// per-run computation.
type Sampling struct {
	Temperature      float64
	TopP             float64
	Stop             []string
	PresencePenalty  float64
	FrequencyPenalty float64
	BestOf           int
}

// Options are the collaborators and knobs for one run.
type Options struct {
	Client    *openai.Client
	Diffs     DiffSource
	Committer Committer
	Gate      Confirmer

	Model      string
	Language   string
	NumTries   int
	Stochastic bool
	Budget     tokens.Budget
	Sampling   Sampling

	// Rand drives stochastic preset sampling; nil gets a time-seeded source.
	Rand *rand.Rand
	// Out receives operator-facing output (candidates, usage summary).
	Out io.Writer
}

// Outcome describes how the run ended.
type Outcome struct {
	State       State
	RunID       string
	CommitID    string
	Message     string
	Candidates  []string
	TokensSpent int
}

// Run executes the pipeline. The returned error is non-nil exactly when
// Outcome.State is Failed.
func (o Options) Run(ctx context.Context) (Outcome, error) {
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()
	out := Outcome{State: Failed, RunID: runID}

	structured, err := o.Diffs.StagedDiff()
	if err != nil {
		return out, err
	}
	diffText, err := diff.Normalize(structured)
	if err != nil {
		return out, err
	}
	logger.Debug().Int("diff_chars", len(diffText)).Msg("diff normalized")

	var candidates []string
	var spent int
	if o.Stochastic {
		candidates, spent, err = o.stochasticCandidates(ctx, diffText)
	} else {
		candidates, spent, err = o.singleRequestCandidates(ctx, diffText)
	}
	if err != nil {
		return out, err
	}
	out.Candidates = candidates
	out.TokensSpent = spent
	logger.Debug().Int("candidates", len(candidates)).Int("tokens", spent).Msg("candidates collected")

	fmt.Fprintln(o.Out, "Here is your AI generated commit message:")
	fmt.Fprintln(o.Out)
	fmt.Fprintln(o.Out, candidates[0])
	if len(candidates) > 1 {
		fmt.Fprintln(o.Out)
		fmt.Fprintln(o.Out, "Other candidates:")
		for i, c := range candidates[1:] {
			fmt.Fprintf(o.Out, "%d. %s\n", i+2, c)
		}
	}
	fmt.Fprintln(o.Out)

	accepted, err := o.Gate.Confirm("Commit with this message?")
	if err != nil {
		return out, err
	}
	if !accepted {
		fmt.Fprintf(o.Out, "No commit made. You spent %d tokens finding out.\n", spent)
		out.State = Declined
		return out, nil
	}

	commitID, err := o.Committer.Commit(candidates[0])
	if err != nil {
		return out, err
	}
	out.State = Committed
	out.CommitID = commitID
	out.Message = candidates[0]
	logger.Info().Str("commit", commitID).Msg("commit created")
	return out, nil
}

// request builds the completion request for one rendered prompt. best_of
// is lifted to n when configuration left it lower; the service rejects
// best_of < n.
func (o Options) request(rendered string, n int) openai.CompletionRequest {
	bestOf := o.Sampling.BestOf
	if bestOf != 0 && bestOf < n {
		bestOf = n
	}
	return openai.CompletionRequest{
		Model:            o.Model,
		Prompt:           rendered,
		MaxTokens:        o.Budget.MaxTokens(rendered),
		Temperature:      o.Sampling.Temperature,
		TopP:             o.Sampling.TopP,
		N:                n,
		Stop:             o.Sampling.Stop,
		PresencePenalty:  o.Sampling.PresencePenalty,
		FrequencyPenalty: o.Sampling.FrequencyPenalty,
		BestOf:           bestOf,
	}
}

// singleRequestCandidates renders the default preset once and asks the
// service for NumTries candidates in one request.
func (o Options) singleRequestCandidates(ctx context.Context, diffText string) ([]string, int, error) {
	rendered := prompt.ForPreset(prompt.PresetExpert, o.Language, diffText).Render()
	completion, err := o.Client.Complete(ctx, o.request(rendered, o.NumTries))
	if err != nil {
		return nil, 0, err
	}
	candidates, err := candidate.Collect(completion)
	if err != nil {
		return nil, completion.Usage.TotalTokens, err
	}
	return candidates, completion.Usage.TotalTokens, nil
}

// stochasticCandidates samples one preset per try and issues all requests
// concurrently, each asking for a single candidate. Failed slots are
// logged and dropped; the run fails only when every slot fails.
func (o Options) stochasticCandidates(ctx context.Context, diffText string) ([]string, int, error) {
	rng := o.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	presets := make([]prompt.Preset, o.NumTries)
	reqs := make([]openai.CompletionRequest, o.NumTries)
	for i := range reqs {
		presets[i] = prompt.Sample(rng)
		rendered := prompt.ForPreset(presets[i], o.Language, diffText).Render()
		reqs[i] = o.request(rendered, 1)
		log.Debug().Int("try", i+1).Stringer("preset", presets[i]).Msg("stochastic prompt prepared")
	}

	results := o.Client.CompleteBatch(ctx, reqs)

	// Pair candidates back to their originating request so preset order,
	// not network order, decides the listing.
	byIndex := make([]*openai.BatchResult, o.NumTries)
	for i := range results {
		byIndex[results[i].Index] = &results[i]
	}

	var candidates []string
	var spent int
	var failures []error
	for i, res := range byIndex {
		if res == nil {
			continue
		}
		if res.Err != nil {
			log.Warn().Err(res.Err).Int("try", i+1).Stringer("preset", presets[i]).
				Msg("completion request failed; dropping slot")
			failures = append(failures, res.Err)
			continue
		}
		spent += res.Completion.Usage.TotalTokens
		collected, err := candidate.Collect(res.Completion)
		if err != nil {
			log.Warn().Err(err).Int("try", i+1).Msg("no usable text in slot; dropping")
			failures = append(failures, err)
			continue
		}
		candidates = append(candidates, collected...)
	}

	if len(candidates) == 0 {
		if len(failures) > 0 {
			return nil, spent, fmt.Errorf("all %d completion requests failed: %w", o.NumTries, errors.Join(failures...))
		}
		return nil, spent, fmt.Errorf("collecting candidates: %w", openai.ErrEmptyCompletion)
	}
	return candidates, spent, nil
}
