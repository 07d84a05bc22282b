package query

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// quietHeaderRe matches a quiet-format result header:
//
//	<score> <path>:<start>-<end>
//
// The score is a bare decimal and may lack the leading zero (".789").
var quietHeaderRe = regexp.MustCompile(`^(\d*\.\d+)\s+(.+):(\d+)-(\d+)\s*$`)

// ParseQuiet parses quiet-format query output. A result is a header line
// followed by zero or more content lines, terminated by a blank line or
// the next header. Results are returned in encounter order.
//
// Malformed entries (invalid ranges, stray content) are dropped with a
// warning; parsing never fails.
func ParseQuiet(raw string, log zerolog.Logger) []Result {
	var out []Result
	var cur *Result
	var content []string

	flush := func() {
		if cur == nil {
			return
		}
		cur.Content = strings.Join(content, "\n")
		out = append(out, *cur)
		cur = nil
		content = nil
	}

	sc := bufio.NewScanner(strings.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()

		if m := quietHeaderRe.FindStringSubmatch(line); m != nil {
			flush()
			start, _ := strconv.Atoi(m[3])
			end, _ := strconv.Atoi(m[4])
			if start < 1 || end < start {
				log.Warn().Str("header", line).Msg("dropping query result with invalid line range")
				continue
			}
			score, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				log.Warn().Str("header", line).Msg("dropping query result with unparseable score")
				continue
			}
			cur = &Result{
				Score:     score,
				RawScore:  m[1],
				FilePath:  m[2],
				StartLine: start,
				EndLine:   end,
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if cur == nil {
			// Content belonging to a dropped or missing header.
			log.Debug().Str("line", line).Msg("ignoring content line outside any quiet result")
			continue
		}
		content = append(content, line)
	}
	flush()

	return out
}

// RenderQuiet serializes results back into the quiet grammar, one blank
// line between results. RenderQuiet(ParseQuiet(s)) reproduces s for
// well-formed input.
func RenderQuiet(results []Result) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s:%d-%d\n", r.scoreText(), r.FilePath, r.StartLine, r.EndLine)
		if r.Content != "" {
			b.WriteString(r.Content)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
