package compare

import (
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Options control a full comparison run
type Options struct {
	// Normalize converts identity fields to strings on both sides before
	// diffing. The CLI enables it unless --no-normalize is given.
	Normalize      bool
	IdentityFields []string
	Logger         log.Logger
}

// Compare extracts the node indexes of both documents with the same
// extractor settings and diffs them.
func Compare(first, second Document, opts Options) *Result {
	e := Extractor{
		Logger:         opts.Logger,
		IdentityFields: opts.IdentityFields,
		Raw:            !opts.Normalize,
	}
	a := e.Extract(first)
	b := e.Extract(second)

	res := Diff(a, b)
	level.Debug(e.logger()).Log(
		"msg", "compared node indexes",
		"first", res.Summary.TotalFirst,
		"second", res.Summary.TotalSecond,
		"common", res.Summary.Common,
		"differing", res.Summary.WithDifference,
	)
	return res
}
