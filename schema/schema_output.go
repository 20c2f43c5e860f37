package schema

// RankedCandidate adds presentation data to a TierCandidate.
type RankedCandidate struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	TierCandidate
}

// RankedPrediction adds presentation data to a Prediction.
type RankedPrediction struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	Prediction
}

// GetPlainLabel returns a plain text label for a score in [0,1].
func GetPlainLabel(score float64) string {
	switch {
	case score >= 0.6:
		return "Alto"
	case score >= 0.4:
		return "Medio"
	case score >= 0.2:
		return "Bajo"
	default:
		return "Minimo"
	}
}

// EnrichCandidates adds rank and label to a list of tier candidates.
func EnrichCandidates(candidates []TierCandidate) []RankedCandidate {
	output := make([]RankedCandidate, len(candidates))
	for i, c := range candidates {
		output[i] = RankedCandidate{
			Rank:          i + 1,
			Label:         GetPlainLabel(c.Score),
			TierCandidate: c,
		}
	}
	return output
}

// EnrichPredictions adds rank and label to a list of predictions.
func EnrichPredictions(preds []Prediction) []RankedPrediction {
	output := make([]RankedPrediction, len(preds))
	for i, p := range preds {
		output[i] = RankedPrediction{
			Rank:       i + 1,
			Label:      GetPlainLabel(p.Score),
			Prediction: p,
		}
	}
	return output
}
