// Package report writes the per-file results of a counting run.
//
// The format is one "<path>: <count>" line per file, sorted by path,
// followed by a "TOTAL: <total>" line:
//
//	data/a.txt: 12
//	data/b.txt: 3
//	TOTAL: 15
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	lperrors "github.com/vnykmshr/linepool/pkg/common/errors"
	"github.com/vnykmshr/linepool/pkg/linecount"
)

// Write writes results and total to w. Results are sorted by path on a copy;
// the caller's slice is left untouched. Files that could not be read are
// reported with a count of 0.
func Write(w io.Writer, results []linecount.Result, total int) error {
	sorted := make([]linecount.Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	bw := bufio.NewWriter(w)
	for _, r := range sorted {
		if _, err := fmt.Fprintf(bw, "%s: %d\n", r.Path, r.Lines); err != nil {
			return lperrors.NewOperationError("report", "Write", err)
		}
	}
	if _, err := fmt.Fprintf(bw, "TOTAL: %d\n", total); err != nil {
		return lperrors.NewOperationError("report", "Write", err)
	}
	if err := bw.Flush(); err != nil {
		return lperrors.NewOperationError("report", "Write", err)
	}
	return nil
}

// WriteFile creates or truncates path and writes the report to it.
func WriteFile(path string, results []linecount.Result, total int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return lperrors.NewOperationError("report", "WriteFile", err).WithContext(path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = lperrors.NewOperationError("report", "WriteFile", cerr).WithContext(path)
		}
	}()

	return Write(f, results, total)
}
