// Package ranking scores a query image against every gallery candidate and
// turns the ordered scores into a Verdict.
//
// Each candidate is resized to the query's dimensions and correlated with it.
// Scores are sorted best first; ties keep the lexicographic identifier order,
// so the outcome never depends on the order the gallery was supplied in or on
// which worker finished first. The best score is reliable when it reaches
// Policy.Threshold, and the runner-up is reported as ambiguous when it lies
// within Policy.DeltaSecond of the best, whether or not the best is reliable.
//
// Negative correlations compete like any other score; only the threshold
// decides reliability.
package ranking
