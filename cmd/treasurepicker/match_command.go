package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"treasurepicker/internal/assetkey"
	"treasurepicker/internal/config"
	"treasurepicker/internal/gallery"
	"treasurepicker/internal/imaging"
	"treasurepicker/internal/logging"
	"treasurepicker/internal/pairing"
	"treasurepicker/internal/ranking"
)

type matchOptions struct {
	threshold float64
	delta     float64
	top       int
	all       bool
	json      bool
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var opts matchOptions

	cmd := &cobra.Command{
		Use:   "match <query-image>",
		Short: "Rank the localisation gallery against a query image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			matching := cfg.Matching
			if cmd.Flags().Changed("threshold") {
				matching.Threshold = opts.threshold
			}
			if cmd.Flags().Changed("delta") {
				matching.DeltaSecond = opts.delta
			}
			if err := matching.Validate(); err != nil {
				return err
			}

			logger, closeLog, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()
			return runMatch(cmd, ctx, cfg, matching, args[0], opts, logger)
		},
	}

	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "Override matching.threshold for this run")
	cmd.Flags().Float64Var(&opts.delta, "delta", 0, "Override matching.delta_second for this run")
	cmd.Flags().IntVar(&opts.top, "top", 0, "Show only the first N scores (0 shows all)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Rank every localisation image, including those without a region pair")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output JSON")
	return cmd
}

func runMatch(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, matching config.Matching, queryPath string, opts matchOptions, logger *slog.Logger) error {
	runCtx := cmd.Context()
	logger = logging.NewComponentLogger(logger, "match")

	query, err := imaging.DecodeFile(queryPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ranking.ErrQueryMissing, err)
	}

	inv, err := pairing.Build(cfg.Paths.RegionsDir, cfg.Paths.LocalisationDir, cfg.Gallery.Extensions)
	if err != nil {
		return err
	}
	if opts.all {
		inv.Pairs = pairing.Unpaired(inv.Localisations)
	}
	logger.Info("inventory loaded", logging.String("summary", inv.Summary()))

	loader, closeLoader := ctx.galleryLoader(runCtx, cfg, logger)
	defer closeLoader()

	g, err := gallery.Build(runCtx, inv, cfg.Paths.LocalisationDir, gallery.Options{Loader: loader, Logger: logger})
	if err != nil {
		return err
	}

	interpolation, err := imaging.ParseInterpolation(matching.Interpolation)
	if err != nil {
		return err
	}
	policy := ranking.Policy{
		Threshold:     matching.Threshold,
		DeltaSecond:   matching.DeltaSecond,
		Workers:       matching.Workers,
		Interpolation: interpolation,
	}

	candidates := g.Candidates
	var dropped []string
	var verdict ranking.Verdict
	for {
		verdict, err = ranking.Rank(runCtx, query, candidates, policy)
		var candErr *ranking.CandidateError
		if !errors.As(err, &candErr) {
			break
		}
		logging.WarnWithContext(logger, "candidate dropped from ranking", "candidate_score_failed",
			logging.String(logging.FieldCandidate, candErr.ID),
			logging.Error(candErr.Err),
			logging.String(logging.FieldImpact, "ranking retried without this candidate"),
		)
		dropped = append(dropped, candErr.ID)
		candidates = slices.DeleteFunc(slices.Clone(candidates), func(c ranking.Candidate) bool {
			return c.ID == candErr.ID
		})
	}
	if errors.Is(err, ranking.ErrEmptyGallery) {
		return fmt.Errorf("%w (%s)", err, inv.Summary())
	}
	if err != nil {
		return err
	}

	logger.Info("ranking complete",
		logging.String(logging.FieldCandidate, verdict.Best.ID),
		logging.Float64("score", verdict.Best.Score),
		logging.Bool("reliable", verdict.Reliable),
		logging.Bool("ambiguous", verdict.Ambiguous()),
	)

	result := newMatchResult(queryPath, ctx.runID, verdict, g, dropped)
	if opts.json {
		return writeJSON(cmd, result)
	}
	out := cmd.OutOrStdout()
	renderMatch(out, result, opts.top, shouldColorize(out))
	return nil
}

type candidateView struct {
	ID         string  `json:"id"`
	Score      float64 `json:"score"`
	RegionFile string  `json:"region_file,omitempty"`
	Key        string  `json:"key"`
	BaseName   string  `json:"base_name"`
	Directions string  `json:"directions,omitempty"`
}

type excludedView struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type matchResult struct {
	Query         string          `json:"query"`
	RunID         string          `json:"run_id"`
	Status        string          `json:"status"`
	Reliable      bool            `json:"reliable"`
	Best          candidateView   `json:"best"`
	AmbiguousWith *candidateView  `json:"ambiguous_with,omitempty"`
	Threshold     float64         `json:"threshold"`
	DeltaSecond   float64         `json:"delta_second"`
	Scores        []candidateView `json:"scores"`
	Excluded      []excludedView  `json:"excluded,omitempty"`
}

func newMatchResult(query, runID string, verdict ranking.Verdict, g gallery.Gallery, dropped []string) matchResult {
	view := func(s ranking.Score) candidateView {
		v := candidateView{ID: s.ID, Score: s.Score}
		if pair, ok := g.PairFor(s.ID); ok {
			key := assetkey.Decode(pair.Key)
			v.RegionFile = pair.RegionFile
			v.Key = pair.Key
			v.BaseName = key.BaseName
			v.Directions = key.Summary()
		}
		return v
	}

	result := matchResult{
		Query:       filepath.Base(query),
		RunID:       runID,
		Status:      verdict.Status(),
		Reliable:    verdict.Reliable,
		Best:        view(verdict.Best),
		Threshold:   verdict.Policy.Threshold,
		DeltaSecond: verdict.Policy.DeltaSecond,
		Scores:      make([]candidateView, 0, len(verdict.Scores)),
	}
	if verdict.AmbiguousWith != nil {
		second := view(*verdict.AmbiguousWith)
		result.AmbiguousWith = &second
	}
	for _, s := range verdict.Scores {
		result.Scores = append(result.Scores, view(s))
	}
	for _, f := range g.Failures {
		result.Excluded = append(result.Excluded, excludedView{ID: f.ID, Error: f.Err.Error()})
	}
	for _, id := range dropped {
		result.Excluded = append(result.Excluded, excludedView{ID: id, Error: "scoring failed"})
	}
	return result
}

func renderMatch(out io.Writer, r matchResult, top int, colorize bool) {
	fmt.Fprintln(out, "🎯 Best candidate:")
	fmt.Fprintf(out, "- %s | score=%s\n", r.Best.ID, formatScore(r.Best.Score))
	if r.Best.BaseName != "" {
		fmt.Fprintf(out, "  Region: %s\n", assetDisplay(r.Best))
	}
	fmt.Fprintln(out)

	if r.Reliable {
		fmt.Fprintln(out, paint("✅ Reliable match", ansiGreen, colorize))
	} else {
		fmt.Fprintln(out, paint(fmt.Sprintf("⚠️ Unreliable match (score below %s)", formatScore(r.Threshold)), ansiYellow, colorize))
	}
	if r.AmbiguousWith != nil {
		title := "⚠️ Two very close results:"
		if !r.Reliable {
			title = "⚠️ Possible ambiguity:"
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, paint(title, ansiYellow, colorize))
		fmt.Fprintf(out, "- %s | score=%s\n", r.Best.ID, formatScore(r.Best.Score))
		fmt.Fprintf(out, "- %s | score=%s\n", r.AmbiguousWith.ID, formatScore(r.AmbiguousWith.Score))
	}

	scores := r.Scores
	if top > 0 && top < len(scores) {
		scores = scores[:top]
	}
	rows := make([][]string, 0, len(scores))
	for i, s := range scores {
		rows = append(rows, []string{strconv.Itoa(i + 1), s.ID, s.BaseName, s.Directions, formatScore(s.Score)})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Candidate", "Region", "Directions", "Score"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	))

	if len(r.Excluded) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, paint(fmt.Sprintf("Excluded %d candidate(s):", len(r.Excluded)), ansiYellow, colorize))
		for _, e := range r.Excluded {
			fmt.Fprintf(out, "- %s: %s\n", e.ID, e.Error)
		}
	}
}

func assetDisplay(v candidateView) string {
	if v.Directions == "" {
		return v.BaseName
	}
	return v.BaseName + " | " + v.Directions
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 3, 64)
}
