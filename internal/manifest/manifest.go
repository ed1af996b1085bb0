// Package manifest reads and writes the uniform segment record format
// exchanged with the ETL side of the pipeline: JSON Lines, one segment per
// line, gzip-compressed when the file name ends in .gz.
//
// Durations are float seconds on the wire and time.Duration in memory.
// Corpus-specific formats are out of scope; converters are expected to
// emit this format.
package manifest

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alnah/go-cutpack/internal/lang"
	"github.com/alnah/go-cutpack/internal/segment"
)

// maxLineBytes bounds a single manifest line. Segments carry transcripts,
// not audio, so 10MB is far beyond any legitimate record.
const maxLineBytes = 10 * 1024 * 1024

type annotationRecord struct {
	ID       string  `json:"id"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text,omitempty"`
	Language string  `json:"language,omitempty"`
	Speaker  string  `json:"speaker,omitempty"`
}

type segmentRecord struct {
	ID          string             `json:"id"`
	Duration    float64            `json:"duration"`
	Annotations []annotationRecord `json:"annotations,omitempty"`
}

func toRecord(s segment.Segment) segmentRecord {
	rec := segmentRecord{
		ID:       s.ID,
		Duration: segment.ToSeconds(s.Duration),
	}
	for _, a := range s.Annotations {
		rec.Annotations = append(rec.Annotations, annotationRecord{
			ID:       a.ID,
			Start:    segment.ToSeconds(a.Start),
			Duration: segment.ToSeconds(a.Duration),
			Text:     a.Text,
			Language: a.Language,
			Speaker:  a.Speaker,
		})
	}
	return rec
}

func fromRecord(rec segmentRecord) segment.Segment {
	s := segment.Segment{
		ID:       rec.ID,
		Duration: segment.FromSeconds(rec.Duration),
	}
	for _, a := range rec.Annotations {
		s.Annotations = append(s.Annotations, segment.Annotation{
			ID:       a.ID,
			Start:    segment.FromSeconds(a.Start),
			Duration: segment.FromSeconds(a.Duration),
			Text:     a.Text,
			Language: lang.Normalize(a.Language),
			Speaker:  a.Speaker,
		})
	}
	return s
}

// Decode reads a JSONL stream of segments. Empty lines are skipped.
// Malformed JSON, structurally invalid segments, and unknown language
// codes are reported with the offending line number.
func Decode(r io.Reader) ([]segment.Segment, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var segs []segment.Segment
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec segmentRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %v: %w", lineNum, err, ErrSyntax)
		}

		s := fromRecord(rec)
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		for _, a := range s.Annotations {
			if err := lang.Validate(a.Language); err != nil {
				return nil, fmt.Errorf("line %d: segment %s: annotation %s: %w",
					lineNum, s.ID, a.ID, err)
			}
		}

		segs = append(segs, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	return segs, nil
}

// Encode writes segments as JSONL, one record per line.
func Encode(w io.Writer, segs []segment.Segment) error {
	bw := bufio.NewWriter(w)
	for _, s := range segs {
		data, err := json.Marshal(toRecord(s))
		if err != nil {
			return fmt.Errorf("segment %s: %w", s.ID, err)
		}
		if _, err := bw.Write(data); err != nil {
			return fmt.Errorf("failed to write manifest: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write manifest: %w", err)
		}
	}
	return bw.Flush()
}

// Read loads a segment manifest from path. A .gz suffix enables gzip.
func Read(path string) ([]segment.Segment, error) {
	f, err := os.Open(path) // #nosec G304 -- user-specified input manifest
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest %s: %w", path, ErrFileNotFound)
		}
		return nil, fmt.Errorf("cannot open manifest: %w", err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %v: %w", path, err, ErrSyntax)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	segs, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return segs, nil
}

// Write stores a segment manifest at path, gzip-compressed when the path
// ends in .gz. It fails if the file already exists (O_EXCL), preventing
// accidental overwrites; on write failure the partial file is removed.
func Write(path string, segs []segment.Segment) error {
	// #nosec G302 G304 -- user-specified output file with standard permissions
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("output file already exists: %s: %w", path, ErrOutputExists)
		}
		return fmt.Errorf("cannot create output file: %w", err)
	}

	writeErr := func() error {
		defer func() { _ = f.Close() }()
		if strings.HasSuffix(path, ".gz") {
			gz := gzip.NewWriter(f)
			if err := Encode(gz, segs); err != nil {
				_ = gz.Close()
				return err
			}
			return gz.Close()
		}
		return Encode(f, segs)
	}()

	if writeErr != nil {
		_ = os.Remove(path)
		return writeErr
	}

	return nil
}
