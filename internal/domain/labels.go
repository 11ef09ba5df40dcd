package domain

// emotionLabels is the fixed code→label table used when the inference
// service returns a numeric code without a label. It is never mutated.
var emotionLabels = map[int]string{
	0: "공포",
	1: "놀람",
	2: "분노",
	3: "슬픔",
	4: "중립",
	5: "행복",
	6: "혐오",
}

// LabelFor resolves an emotion code to its human-readable label.
// Codes outside the table report ok=false.
func LabelFor(code int) (label string, ok bool) {
	label, ok = emotionLabels[code]
	return label, ok
}
