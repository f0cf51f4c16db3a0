// Package pipeline runs one suggestion job: search, download, extract,
// normalize, classify, and report progress while doing so.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/catsuggest/pkg/catsuggest/classify"
	"github.com/cognicore/catsuggest/pkg/catsuggest/dataset"
	"github.com/cognicore/catsuggest/pkg/catsuggest/feature"
	"github.com/cognicore/catsuggest/pkg/catsuggest/internalerr"
	"github.com/cognicore/catsuggest/pkg/catsuggest/progress"
	"github.com/cognicore/catsuggest/pkg/catsuggest/sample"
	"github.com/cognicore/catsuggest/pkg/catsuggest/source"
)

// DefaultLimit is the number of candidates requested when a request has none
const DefaultLimit = 5

// Downloader stores candidate images locally
type Downloader interface {
	Download(ctx context.Context, samples []sample.Sample, dir string, progress func(done, total int)) ([]sample.Sample, error)
}

// Request is one suggestion task
type Request struct {
	JobID    string
	Keywords []string
	Limit    int
}

// Result is the classified response of a run
type Result struct {
	Entries []sample.Entry
	// Dropped counts samples whose features could not be extracted.
	Dropped int
	// Duplicates counts candidates the downloader left out as copies.
	Duplicates int
	Status     string
}

// Pipeline holds the shared, read-only components of every run
type Pipeline struct {
	Searcher    source.Searcher
	Downloader  Downloader
	Features    *feature.Set
	Statistics  *dataset.Statistics
	Classifier  classify.Classifier
	DownloadDir string
	Limit       int

	// OnState, if set, is called on every state transition.
	OnState func(jobID string, s State)
}

// New checks that the components agree on the feature columns
func New(p Pipeline) (*Pipeline, error) {
	if p.Searcher == nil || p.Downloader == nil || p.Features == nil || p.Statistics == nil || p.Classifier == nil {
		return nil, fmt.Errorf("%w: pipeline needs searcher, downloader, features, statistics and classifier", internalerr.ErrInvalidConfig)
	}
	if p.DownloadDir == "" {
		return nil, fmt.Errorf("%w: download directory is required", internalerr.ErrInvalidConfig)
	}
	keys := p.Features.Keys()
	if err := p.Statistics.Check(keys); err != nil {
		return nil, err
	}
	if err := classify.CheckSchema(p.Classifier, keys); err != nil {
		return nil, err
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	return &p, nil
}

// run is the mutable state of one Run call
type run struct {
	p     *Pipeline
	req   Request
	obs   *progress.Observer
	state State
}

func (r *run) enter(s State) {
	r.state = s
	slog.Debug("pipeline: state", "job", r.req.JobID, "state", s.String())
	if s != Failed {
		r.obs.SetStatus(s.String())
	}
	if r.p.OnState != nil {
		r.p.OnState(r.req.JobID, s)
	}
}

// finish advances the aggregate to the end of the current stage
func (r *run) finish() {
	r.obs.Advance(r.state.Stage().End)
}

func (r *run) update(done, total int) {
	r.obs.Update(done, total, r.state.Stage())
}

// Run executes the request. The per-job directory under DownloadDir is
// removed on every return path once created. obs may be nil.
func (p *Pipeline) Run(ctx context.Context, req Request, obs *progress.Observer) (res *Result, err error) {
	if obs == nil {
		obs = progress.New(nil)
	}
	r := &run{p: p, req: req, obs: obs, state: Queued}
	defer func() {
		if err != nil {
			r.enter(Failed)
			slog.Warn("pipeline: run failed", "job", req.JobID, "err", err)
		}
	}()

	keywords := cleanKeywords(req.Keywords)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: at least one keyword is required", internalerr.ErrInvalidInput)
	}
	if req.JobID == "" || strings.ContainsAny(req.JobID, `/\`) || req.JobID == "." || req.JobID == ".." {
		return nil, fmt.Errorf("%w: invalid job id %q", internalerr.ErrInvalidInput, req.JobID)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = p.Limit
	}

	r.enter(FetchingCandidates)
	candidates, err := p.Searcher.Search(ctx, keywords, limit)
	if err != nil {
		return nil, err
	}
	r.finish()
	slog.Info("pipeline: candidates", "job", req.JobID, "keywords", keywords, "count", len(candidates))

	dir := filepath.Join(p.DownloadDir, req.JobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create job dir: %w", err)
	}
	defer func() {
		r.enter(CleaningUp)
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			slog.Warn("pipeline: cleanup failed", "dir", dir, "err", rmErr)
			if err == nil {
				err = fmt.Errorf("remove job dir: %w", rmErr)
				res = nil
				return
			}
		}
		if err == nil {
			r.finish()
			r.enter(Completed)
			r.obs.SetStatus(completedStatus(res))
		}
	}()

	res, err = r.classify(ctx, candidates, dir)
	if err != nil {
		return nil, err
	}

	r.enter(BuildingResponse)
	if res.Dropped > 0 {
		res.Status = DroppedStatus(res.Dropped)
	}
	r.finish()
	return res, nil
}

// classify downloads, extracts, normalizes and labels the candidates
func (r *run) classify(ctx context.Context, candidates []sample.Sample, dir string) (*Result, error) {
	p := r.p

	r.enter(Downloading)
	var downloaded []sample.Sample
	if len(candidates) > 0 {
		var err error
		downloaded, err = p.Downloader.Download(ctx, candidates, dir, r.update)
		if err != nil {
			return nil, err
		}
	}
	r.finish()
	res := &Result{Duplicates: len(candidates) - len(downloaded)}

	r.enter(Extracting)
	ds, err := dataset.Read(ctx, downloaded, p.Features, false, r.update)
	if err != nil {
		return nil, err
	}
	for _, x := range ds.Dropped {
		slog.Info("pipeline: sample dropped", "job", r.req.JobID, "err", x)
	}
	res.Dropped = len(ds.Dropped)
	r.finish()

	r.enter(Normalizing)
	if err := p.Statistics.Apply(ds); err != nil {
		return nil, err
	}
	if err := ds.Normalize(); err != nil {
		return nil, err
	}
	r.finish()

	r.enter(Classifying)
	var labels []string
	if ds.Len() > 0 {
		labels, err = p.Classifier.Predict(ctx, ds.Matrix)
		if err != nil {
			return nil, fmt.Errorf("classify: %w", err)
		}
		if len(labels) != ds.Len() {
			return nil, fmt.Errorf("%w: classifier returned %d labels for %d rows",
				internalerr.ErrSchemaMismatch, len(labels), ds.Len())
		}
	}
	r.finish()

	res.Entries = make([]sample.Entry, ds.Len())
	for i, s := range ds.Samples {
		res.Entries[i] = sample.Entry{
			Thumbnail: s.Thumbnail,
			Image:     s.URL,
			Label:     labels[i],
			Title:     s.Title,
		}
	}
	return res, nil
}

// DroppedStatus is the result status of a run that skipped n samples
func DroppedStatus(n int) string {
	if n == 1 {
		return "1 sample dropped"
	}
	return fmt.Sprintf("%d samples dropped", n)
}

func completedStatus(res *Result) string {
	if res != nil && res.Status != "" {
		return res.Status
	}
	return Completed.String()
}

func cleanKeywords(keywords []string) []string {
	var out []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
