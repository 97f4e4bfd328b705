package splat

import (
	"fmt"

	"github.com/banshee-data/splat-tools/internal/fsutil"
)

// Downsample re-ranks the records of an encoded stream by EncodedImportance
// and returns the first lim.Keep(n) of them, byte-for-byte, in ranked
// order. name labels a *FormatError.
func Downsample(name string, data []byte, lim Limit) ([]byte, error) {
	out, _, err := downsample(name, data, lim)
	return out, err
}

func downsample(name string, data []byte, lim Limit) ([]byte, []float64, error) {
	if err := lim.Validate(); err != nil {
		return nil, nil, err
	}
	n, err := CountRecords(name, len(data))
	if err != nil {
		return nil, nil, err
	}

	order, scores := RankEncoded(data)
	keep := lim.Keep(n)

	out := make([]byte, 0, keep*RecordSize)
	for _, idx := range order[:keep] {
		out = append(out, recordAt(data, idx)...)
	}
	return out, permute(scores, order), nil
}

// DownsampleFile reads the whole stream at in, downsamples it and writes the
// result to out. out may equal in; the input is fully loaded and the output
// fully built before anything is written.
func DownsampleFile(fsys fsutil.FileSystem, in, out string, lim Limit) (Stats, error) {
	st := Stats{Input: in}
	if err := checkStreamSize(fsys, in); err != nil {
		return st, err
	}
	data, err := fsys.ReadFile(in)
	if err != nil {
		return st, fmt.Errorf("read %s: %w", in, err)
	}
	res, ranked, err := downsample(in, data, lim)
	if err != nil {
		return st, err
	}
	if out == "" {
		out = in
	}
	if err := fsutil.WriteFileAtomic(fsys, out, res, 0o644); err != nil {
		return st, fmt.Errorf("write %s: %w", out, err)
	}
	st.Output = out
	st.Points = len(data) / RecordSize
	st.Kept = len(res) / RecordSize
	st.Bytes = len(res)
	st.Scores = ranked
	return st, nil
}

// checkStreamSize rejects a stream whose size is not a whole number of
// records before any of it is read.
func checkStreamSize(fsys fsutil.FileSystem, name string) error {
	info, err := fsys.Stat(name)
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}
	_, err = CountRecords(name, int(info.Size()))
	return err
}
