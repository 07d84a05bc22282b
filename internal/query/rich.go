package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Rich-format wire tags. These are the indexer's output format verbatim;
// changing any of them breaks parsing of real indexer output.
const (
	richFileTag    = "📄 File: "
	richLangTag    = "🧠 Language: "
	richScoreTag   = "⭐ Score: "
	richSizeTag    = "📏 Size: "
	richIndexedTag = "🕒 Indexed: "
	richBranchTag  = "🌿 Branch: "
	richCommitTag  = "🔗 Commit: "
	richProjectTag = "📦 Project: "
	richContentTag = "📖 Content:"
	richSegmentSep = " | "
)

var (
	richDashRule   = strings.Repeat("-", 60)
	richResultRule = strings.Repeat("=", 80)
)

var richLocationRe = regexp.MustCompile(`^(.+):(\d+)-(\d+)$`)

func isDashRule(line string) bool {
	return len(line) >= 4 && strings.Trim(line, "-") == ""
}

func isMetadataLine(line string) bool {
	for _, tag := range []string{richSizeTag, richIndexedTag, richBranchTag, richCommitTag, richProjectTag} {
		if strings.HasPrefix(line, tag) {
			return true
		}
	}
	return false
}

// ParseRich parses rich-format query output: per result, an emoji-tagged
// file/range/language/score header, an optional metadata header, the
// content marker, and content between two dashed rules. Results are
// delimited by "====" separator lines and returned in encounter order.
//
// Malformed entries are dropped with a warning; parsing never fails.
func ParseRich(raw string, log zerolog.Logger) []Result {
	lines := strings.Split(raw, "\n")
	var out []Result
	for i := 0; i < len(lines); i++ {
		if !strings.HasPrefix(lines[i], richFileTag) {
			continue
		}
		r, next, ok := parseRichEntry(lines, i, log)
		if ok {
			out = append(out, r)
		}
		if next <= i {
			next = i + 1
		}
		i = next - 1
	}
	return out
}

func parseRichEntry(lines []string, i int, log zerolog.Logger) (Result, int, bool) {
	var r Result

	for _, seg := range strings.Split(lines[i], richSegmentSep) {
		switch {
		case strings.HasPrefix(seg, richFileTag):
			loc := strings.TrimSpace(strings.TrimPrefix(seg, richFileTag))
			m := richLocationRe.FindStringSubmatch(loc)
			if m == nil {
				log.Warn().Str("header", lines[i]).Msg("dropping rich result with malformed file location")
				return r, i + 1, false
			}
			r.FilePath = m[1]
			r.StartLine, _ = strconv.Atoi(m[2])
			r.EndLine, _ = strconv.Atoi(m[3])
		case strings.HasPrefix(seg, richLangTag):
			r.Language = strings.TrimSpace(strings.TrimPrefix(seg, richLangTag))
		case strings.HasPrefix(seg, richScoreTag):
			r.RawScore = strings.TrimSpace(strings.TrimPrefix(seg, richScoreTag))
			score, err := strconv.ParseFloat(r.RawScore, 64)
			if err != nil {
				log.Warn().Str("header", lines[i]).Msg("dropping rich result with unparseable score")
				return r, i + 1, false
			}
			r.Score = score
		}
	}
	if r.FilePath == "" || r.RawScore == "" {
		log.Warn().Str("header", lines[i]).Msg("dropping rich result with incomplete header")
		return r, i + 1, false
	}
	if r.StartLine < 1 || r.EndLine < r.StartLine {
		log.Warn().Str("header", lines[i]).Msg("dropping rich result with invalid line range")
		return r, i + 1, false
	}
	i++

	if i < len(lines) && isMetadataLine(lines[i]) {
		for _, seg := range strings.Split(lines[i], richSegmentSep) {
			switch {
			case strings.HasPrefix(seg, richSizeTag):
				v := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(seg, richSizeTag)), " bytes")
				r.Size, _ = strconv.ParseInt(v, 10, 64)
			case strings.HasPrefix(seg, richIndexedTag):
				r.IndexedAt = strings.TrimSpace(strings.TrimPrefix(seg, richIndexedTag))
			case strings.HasPrefix(seg, richBranchTag):
				r.Branch = strings.TrimSpace(strings.TrimPrefix(seg, richBranchTag))
			case strings.HasPrefix(seg, richCommitTag):
				r.Commit = strings.TrimSpace(strings.TrimPrefix(seg, richCommitTag))
			case strings.HasPrefix(seg, richProjectTag):
				r.Project = strings.TrimSpace(strings.TrimPrefix(seg, richProjectTag))
			}
		}
		i++
	}

	if i >= len(lines) || strings.TrimRight(lines[i], " ") != richContentTag {
		log.Warn().Str("file", r.FilePath).Msg("dropping rich result without content section")
		return r, i, false
	}
	i++
	if i >= len(lines) || !isDashRule(lines[i]) {
		log.Warn().Str("file", r.FilePath).Msg("dropping rich result without content separator")
		return r, i, false
	}
	i++

	var content []string
	for ; i < len(lines) && !isDashRule(lines[i]); i++ {
		content = append(content, lines[i])
	}
	if i < len(lines) {
		i++ // closing dashed rule
	}
	r.Content = strings.Join(content, "\n")

	return r, i, true
}

// RenderRich serializes results back into the rich grammar, with the
// "====" rule between consecutive results. Absent metadata fields are
// omitted from their header segments, matching the indexer's own output.
func RenderRich(results []Result) string {
	var b strings.Builder
	for idx, r := range results {
		if idx > 0 {
			b.WriteString(richResultRule)
			b.WriteByte('\n')
		}

		header := []string{fmt.Sprintf("%s%s:%d-%d", richFileTag, r.FilePath, r.StartLine, r.EndLine)}
		if r.Language != "" {
			header = append(header, richLangTag+r.Language)
		}
		header = append(header, richScoreTag+r.scoreText())
		b.WriteString(strings.Join(header, richSegmentSep))
		b.WriteByte('\n')

		var meta []string
		if r.Size > 0 {
			meta = append(meta, fmt.Sprintf("%s%d bytes", richSizeTag, r.Size))
		}
		if r.IndexedAt != "" {
			meta = append(meta, richIndexedTag+r.IndexedAt)
		}
		if r.Branch != "" {
			meta = append(meta, richBranchTag+r.Branch)
		}
		if r.Commit != "" {
			meta = append(meta, richCommitTag+r.Commit)
		}
		if r.Project != "" {
			meta = append(meta, richProjectTag+r.Project)
		}
		if len(meta) > 0 {
			b.WriteString(strings.Join(meta, richSegmentSep))
			b.WriteByte('\n')
		}

		b.WriteString(richContentTag)
		b.WriteByte('\n')
		b.WriteString(richDashRule)
		b.WriteByte('\n')
		if r.Content != "" {
			b.WriteString(r.Content)
			b.WriteByte('\n')
		}
		b.WriteString(richDashRule)
		b.WriteByte('\n')
	}
	return b.String()
}
