package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// minBlockCoverage is the share of non-space input characters the blocks must keep
// for a split to be used.
const minBlockCoverage = 0.95

var blockAnchor = regexp.MustCompile(`(?i)opening reception:|exhibition dates:|viewing hours:|visit:|dates:|hours:`)

// splitBlocks cuts text at every anchor keyword. Text before the first anchor stays
// with the first block. It returns nil unless at least two anchors are present and
// the blocks still cover the input.
func splitBlocks(text string) []string {
	locs := blockAnchor.FindAllStringIndex(text, -1)
	if len(locs) < 2 {
		return nil
	}

	blocks := make([]string, 0, len(locs))
	for i := range locs {
		from := locs[i][0]
		if i == 0 {
			from = 0
		}
		to := len(text)
		if i+1 < len(locs) {
			to = locs[i+1][0]
		}
		if block := strings.TrimSpace(text[from:to]); block != "" {
			blocks = append(blocks, block)
		}
	}

	if len(blocks) < 2 || blockCoverage(blocks, text) < minBlockCoverage {
		return nil
	}
	return blocks
}

// blockCoverage is the ratio of non-space characters in blocks to those in text.
func blockCoverage(blocks []string, text string) float64 {
	total := nonSpace(text)
	if total == 0 {
		return 0
	}
	kept := 0
	for _, b := range blocks {
		kept += nonSpace(b)
	}
	return float64(kept) / float64(total)
}

func nonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
