package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate    = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b|\b\d{2}\s+[a-z]{3}\s+\d{4}\b`)
	reUnit    = regexp.MustCompile(`mg\s*/\s*dl`)
	reAnalyte = regexp.MustCompile(`\b(glucose|sugar|fasting|postprandial|post\s+lunch)\b`)
	reValue   = regexp.MustCompile(`\b\d{2,3}(\.\d+)?\b`)
)

// heuristicConfidence scores text by how much it looks like a glucose report.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2)
	if reDate.MatchString(txtL) {
		score += 0.2
	}
	if reUnit.MatchString(txtL) {
		score += 0.2
	}
	if reAnalyte.MatchString(txtL) {
		score += 0.2
	}
	if reValue.MatchString(txtL) {
		score += 0.1
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// blendConfidence weights tesseract's own word confidence over the heuristic when present.
func blendConfidence(ocrConf, heurConf float32) float32 {
	conf := heurConf
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
