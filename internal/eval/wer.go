package eval

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// WERResult holds word error rate figures for one reference/hypothesis pair.
// WER = (S + D + I) / N over the reference; MER and WIL follow
// Morris, Maier & Green (2004).
type WERResult struct {
	WER float64 `json:"wer"`
	MER float64 `json:"mer"`
	WIL float64 `json:"wil"`

	Substitutions int `json:"substitutions"`
	Deletions     int `json:"deletions"`
	Insertions    int `json:"insertions"`
	Hits          int `json:"hits"`
	RefWords      int `json:"ref_words"`
	HypWords      int `json:"hyp_words"`
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText lowercases, strips accents and punctuation, and collapses
// whitespace. Spanish transcripts carry tildes and diacritics that must not
// count as word errors.
func NormalizeText(s string) string {
	s = strings.ToLower(s)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// WER computes the word error rate of an automatic transcript (hypothesis)
// against a manual one (reference). Both are normalized first.
func WER(reference, hypothesis string) (WERResult, error) {
	refWords := strings.Fields(NormalizeText(reference))
	hypWords := strings.Fields(NormalizeText(hypothesis))
	if len(refWords) == 0 {
		return WERResult{}, fmt.Errorf("empty reference after normalization")
	}

	subs, dels, ins := editOps(refWords, hypWords)
	n := len(refWords)
	m := len(hypWords)
	hits := n - subs - dels
	errors := subs + dels + ins

	res := WERResult{
		Substitutions: subs,
		Deletions:     dels,
		Insertions:    ins,
		Hits:          hits,
		RefWords:      n,
		HypWords:      m,
	}
	res.WER = float64(errors) / float64(n)
	res.MER = float64(errors) / float64(errors+hits)
	if m > 0 {
		res.WIL = 1 - float64(hits)*float64(hits)/(float64(n)*float64(m))
	} else {
		res.WIL = 1
	}
	return res, nil
}

// editOps runs the Levenshtein DP and backtraces the alignment into
// substitution, deletion and insertion counts.
func editOps(ref, hyp []string) (subs, dels, ins int) {
	n := len(ref)
	m := len(hyp)
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
		dp[i][0] = i
	}
	for j := 0; j <= m; j++ {
		dp[0][j] = j
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if ref[i-1] == hyp[j-1] {
				dp[i][j] = dp[i-1][j-1]
				continue
			}
			best := dp[i-1][j] // deletion
			if dp[i][j-1] < best {
				best = dp[i][j-1] // insertion
			}
			if dp[i-1][j-1] < best {
				best = dp[i-1][j-1] // substitution
			}
			dp[i][j] = best + 1
		}
	}

	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && ref[i-1] == hyp[j-1] && dp[i][j] == dp[i-1][j-1]:
			i--
			j--
		case i > 0 && j > 0 && dp[i][j] == dp[i-1][j-1]+1:
			subs++
			i--
			j--
		case i > 0 && dp[i][j] == dp[i-1][j]+1:
			dels++
			i--
		default:
			ins++
			j--
		}
	}
	return subs, dels, ins
}
