package speech

import (
	"strings"

	"github.com/finpsyche/advisor/backend/internal/analysis/emotion"
)

// The advisor answers a worried user in a soothing style rather than
// mirroring the worry.
var emotionStyles = map[emotion.Label]string{
	emotion.Fear:           "comfort",
	emotion.Stress:         "comfort",
	emotion.Hesitation:     "tender",
	emotion.Excitement:     "happy",
	emotion.Confidence:     "happy",
	emotion.Overconfidence: "magnetic",
}

var emotionVoiceWhitelist = map[string]struct{}{
	"en_female_candice_emo_v2_mars_bigtts": {},
	"en_female_skye_emo_v2_mars_bigtts":    {},
	"en_male_glen_emo_v2_mars_bigtts":      {},
	"en_male_sylus_emo_v2_mars_bigtts":     {},
	"en_male_corey_emo_v2_mars_bigtts":     {},
}

// ComputeEmotionParameters maps the user's emotion to a TTS style and an
// intensity in [1,5]. Calm users and voices without emotion support get the
// plain voice.
func ComputeEmotionParameters(voice string, result emotion.Result) (enable bool, style string, scale float32) {
	if result.Score <= 0 || !supportsEmotion(voice) {
		return false, "", 0
	}

	style, ok := emotionStyles[result.Label]
	if !ok {
		return false, "", 0
	}

	scale = float32(1 + 4*result.Score)
	if scale < 1 {
		scale = 1
	}
	if scale > 5 {
		scale = 5
	}
	return true, style, scale
}

func supportsEmotion(voice string) bool {
	normalized := strings.ToLower(strings.TrimSpace(voice))
	if normalized == "" {
		return false
	}
	if _, ok := emotionVoiceWhitelist[normalized]; ok {
		return true
	}
	return strings.Contains(normalized, "_emo")
}
