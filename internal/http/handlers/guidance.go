package handlers

import (
	"context"

	"promovideo/internal/domain/promo"
	"promovideo/internal/middleware"
)

type messageKey string

const (
	noticeSelectionLimit messageKey = "selection_limit"
	guidanceQuota        messageKey = "quota"
	guidanceCredential   messageKey = "credential"
	guidanceTimeout      messageKey = "timeout"
	guidanceUnclassified messageKey = "unclassified"
)

// Stage-scoped user guidance, keyed by locale. Embedded links are preserved
// so the UI can render them as hyperlinks.
var messages = map[string]map[messageKey]string{
	"en": {
		noticeSelectionLimit: "You can select up to 3 reference images.",
		guidanceQuota:        "The generation quota has been reached. Wait a bit and try again; see https://ai.google.dev/gemini-api/docs/rate-limits for the current limits.",
		guidanceCredential:   "Your API key was not accepted and has been cleared. Select a valid key and try again; see https://ai.google.dev/gemini-api/docs/api-key.",
		guidanceTimeout:      "The generation job did not finish in time. Please try again.",
		guidanceUnclassified: "Video generation failed. Please try again.",
	},
	"id": {
		noticeSelectionLimit: "Anda dapat memilih hingga 3 gambar referensi.",
		guidanceQuota:        "Kuota pembuatan video telah tercapai. Tunggu sebentar lalu coba lagi; lihat https://ai.google.dev/gemini-api/docs/rate-limits untuk batas saat ini.",
		guidanceCredential:   "Kunci API Anda ditolak dan telah dihapus. Pilih kunci yang valid lalu coba lagi; lihat https://ai.google.dev/gemini-api/docs/api-key.",
		guidanceTimeout:      "Proses pembuatan video tidak selesai tepat waktu. Silakan coba lagi.",
		guidanceUnclassified: "Pembuatan video gagal. Silakan coba lagi.",
	},
}

func guidance(ctx context.Context, key messageKey) string {
	locale := middleware.LocaleFromContext(ctx)
	if m, ok := messages[locale]; ok {
		if msg, ok := m[key]; ok {
			return msg
		}
	}
	return messages["en"][key]
}

func failureGuidance(ctx context.Context, kind promo.FailureKind) string {
	switch kind {
	case promo.FailureQuota:
		return guidance(ctx, guidanceQuota)
	case promo.FailureInvalidCredential:
		return guidance(ctx, guidanceCredential)
	case promo.FailureTimeout:
		return guidance(ctx, guidanceTimeout)
	default:
		return guidance(ctx, guidanceUnclassified)
	}
}
