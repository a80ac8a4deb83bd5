package parser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// MaxFileSize is the maximum allowed log file size (100MB). Larger files are
// rejected to bound memory use.
const MaxFileSize = 100 * 1024 * 1024

// Logger defines the logging interface used by the parser package.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Parser reads newline-delimited JSON usage logs.
type Parser interface {
	// ParseFile reads a log file starting at the given byte offset.
	//
	// Parameters:
	//   - path: path to the log file
	//   - offset: byte offset to start reading from (0 for the beginning)
	//
	// Malformed lines are skipped and counted in the result. A final line
	// not terminated by a newline is treated as an in-progress concurrent
	// append: it is not consumed, not counted as malformed, and the returned
	// offset stops just before it.
	//
	// Thread-safety: safe to call concurrently for different files.
	ParseFile(path string, offset int64) (*FileResult, error)

	// ParseLine parses a single log line (without its newline) into a
	// UsageRecord, or returns an error describing why the line was invalid.
	ParseLine(line []byte) (*UsageRecord, error)
}

// wireEvent is the JSON shape of one usage event. Unknown extra fields are
// ignored for forward compatibility; absent numeric fields default to zero.
type wireEvent struct {
	Timestamp           string           `json:"timestamp"`
	Model               string           `json:"model"`
	InputTokens         int64            `json:"input_tokens"`
	OutputTokens        int64            `json:"output_tokens"`
	CacheCreationTokens int64            `json:"cache_creation_tokens"`
	CacheReadTokens     int64            `json:"cache_read_tokens"`
	Cost                *decimal.Decimal `json:"cost"`
	MessageID           string           `json:"message_id"`
	RequestID           string           `json:"request_id"`
}

// jsonlParser implements the Parser interface.
type jsonlParser struct {
	logger Logger
}

// New creates a Parser. The logger receives a debug entry per skipped line.
func New(log Logger) Parser {
	return &jsonlParser{logger: log}
}

// ParseFile implements Parser.ParseFile.
func (p *jsonlParser) ParseFile(path string, offset int64) (*FileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%w: size=%d, max=%d", ErrFileTooLarge, info.Size(), MaxFileSize)
	}

	f, err := os.Open(path) // #nosec G304 -- path comes from discovery under the configured root
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to seek to offset %d: %w", offset, err)
		}
	}

	res := &FileResult{
		Records:   make([]UsageRecord, 0, 64),
		NewOffset: offset,
	}

	r := bufio.NewReaderSize(f, 64*1024)
	lineNum := 0

	for {
		line, readErr := r.ReadBytes('\n')
		if readErr == io.EOF {
			// Partial trailing line (or clean EOF). Leave it for the writer
			// to finish; the stored offset does not advance past it.
			break
		}
		if readErr != nil {
			return res, fmt.Errorf("read error at line %d: %w", lineNum+1, readErr)
		}

		lineNum++
		res.NewOffset += int64(len(line))

		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}

		rec, parseErr := p.ParseLine(trimmed)
		if parseErr != nil {
			res.Malformed++
			if p.logger != nil {
				p.logger.Debug("skipping malformed line",
					"path", path,
					"line", lineNum,
					"error", parseErr)
			}
			continue
		}

		res.Records = append(res.Records, *rec)
	}

	return res, nil
}

// ParseLine implements Parser.ParseLine.
func (p *jsonlParser) ParseLine(line []byte) (*UsageRecord, error) {
	if len(line) == 0 {
		return nil, fmt.Errorf("%w: empty line", ErrMalformedJSON)
	}

	var ev wireEvent
	if err := json.Unmarshal(line, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	if ev.Timestamp == "" {
		return nil, ErrInvalidTimestamp
	}
	ts, err := time.Parse(time.RFC3339, ev.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}

	rec := &UsageRecord{
		Timestamp: ts.UTC(),
		Model:     ev.Model,
		Tokens: TokenCounts{
			Input:         ev.InputTokens,
			Output:        ev.OutputTokens,
			CacheCreation: ev.CacheCreationTokens,
			CacheRead:     ev.CacheReadTokens,
		},
		CostUSD:   ev.Cost,
		MessageID: ev.MessageID,
		RequestID: ev.RequestID,
	}

	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return rec, nil
}
