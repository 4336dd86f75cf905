package feed

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fastjson"

	"pipewatch/internal/terminal"
)

const maxRecordLine = 4 << 20

var parsers fastjson.ParserPool

// ReadRecordsFile reads JSON-lines log records from path. Files ending in
// .zst are decompressed with zstd. Malformed lines are returned as errors
// alongside the records that did decode.
func ReadRecordsFile(path string) ([]terminal.Record, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("opening zstd stream %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	records, lineErrs, err := ReadRecords(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	for i, lineErr := range lineErrs {
		lineErrs[i] = fmt.Errorf("%s: %w", path, lineErr)
	}
	return records, lineErrs, nil
}

func ReadRecords(r io.Reader) ([]terminal.Record, []error, error) {
	p := parsers.Get()
	defer parsers.Put(p)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordLine)

	var records []terminal.Record
	var lineErrs []error
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		v, err := p.ParseBytes(text)
		if err != nil {
			lineErrs = append(lineErrs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		obj, err := v.Object()
		if err != nil {
			lineErrs = append(lineErrs, fmt.Errorf("line %d: record must be an object", line))
			continue
		}
		record := make(terminal.Record, obj.Len())
		obj.Visit(func(key []byte, value *fastjson.Value) {
			record[string(key)] = convertValue(value)
		})
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return records, lineErrs, nil
}

func convertValue(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeArray:
		items := v.GetArray()
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, convertValue(item))
		}
		return out
	case fastjson.TypeObject:
		obj := v.GetObject()
		out := make(map[string]any, obj.Len())
		obj.Visit(func(key []byte, value *fastjson.Value) {
			out[string(key)] = convertValue(value)
		})
		return out
	default:
		return nil
	}
}
