package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"sakinah/backend/internal/emotion"
	"sakinah/backend/internal/logging"
	"sakinah/backend/internal/store"
)

const (
	DefaultTitle          = "Untitled"
	DefaultSummary        = "❌ No summary generated"
	UntitledArabic        = "بدون عنوان"
	SummaryFallbackArabic = "❌ لم يتم توليد ملخص"
	SavedMessage          = "✅ Conversation saved and summarized"

	// Known mistranslation artifact of the en-ar model for short titles.
	brokenTitleArtifact = "مُحَار"
)

var (
	titlePattern   = regexp.MustCompile(`Title\s*:\s*(.+)`)
	summaryPattern = regexp.MustCompile(`Summary\s*:\s*(.+)`)
)

var arabicEmotions = map[string]string{
	emotion.Anger:    "غضب",
	emotion.Disgust:  "اشمئزاز",
	emotion.Fear:     "خوف",
	emotion.Joy:      "فرح",
	emotion.Neutral:  "عادي",
	emotion.Sadness:  "حزن",
	emotion.Surprise: "مفاجأة",
}

// ArabicEmotion maps an emotion label to its Arabic name. Unknown labels
// map to the neutral name.
func ArabicEmotion(label string) string {
	if name, ok := arabicEmotions[strings.ToLower(strings.TrimSpace(label))]; ok {
		return name
	}
	return arabicEmotions[emotion.Neutral]
}

// ExtractTitleSummary pulls the first "Title:" and "Summary:" values out of
// free-form model output. Missing fields fall back to defaults.
func ExtractTitleSummary(raw string) (title, summary string) {
	title, summary = DefaultTitle, DefaultSummary
	if m := titlePattern.FindStringSubmatch(raw); m != nil {
		title = cleanField(m[1])
	}
	if m := summaryPattern.FindStringSubmatch(raw); m != nil {
		summary = cleanField(m[1])
	}
	return title, summary
}

// cleanField strips whitespace and markdown emphasis left around a value.
// Edge underscores are always treated as emphasis; inner ones are kept.
func cleanField(value string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(value), "*_"))
}

type SummaryResult struct {
	ChatID          string
	Title           string
	Summary         string
	DominantEmotion string
}

// Summarize generates, translates and stores the summary of an owned chat.
func (s *Service) Summarize(ctx context.Context, userID, chatID string) (SummaryResult, error) {
	l := logging.Ctx(ctx).With().Str(logging.FieldChatID, chatID).Logger()

	chat, err := s.ownedChat(ctx, userID, chatID)
	if err != nil {
		return SummaryResult{}, err
	}
	msgs, err := s.store.Messages(ctx, chat.ID)
	if err != nil {
		return SummaryResult{}, fmt.Errorf("load history: %w", err)
	}
	if len(msgs) == 0 {
		return SummaryResult{}, ErrEmptyChat
	}

	history := englishTurns(msgs)
	dominant := s.aggregateEmotion(ctx, msgs)

	raw, err := s.llm.Summarize(ctx, history)
	if err != nil {
		l.Error().Err(err).Str(logging.FieldStage, "llm_summary").Msg("summary generation failed")
		return SummaryResult{}, fmt.Errorf("%w: %v", ErrSummaryFailed, err)
	}

	titleEN, summaryEN := ExtractTitleSummary(raw)
	if titleEN == DefaultTitle || summaryEN == DefaultSummary {
		l.Warn().Str("raw", raw).Msg("summary output did not match the expected format")
	}

	summary := &store.ChatSummary{
		ChatID:          chat.ID,
		Title:           s.translateTitle(ctx, titleEN),
		Summary:         s.translateSummary(ctx, summaryEN),
		DominantEmotion: ArabicEmotion(dominant),
	}
	if err := s.store.UpsertSummary(ctx, summary); err != nil {
		return SummaryResult{}, fmt.Errorf("save summary: %w", err)
	}

	return SummaryResult{
		ChatID:          chat.ID,
		Title:           summary.Title,
		Summary:         summary.Summary,
		DominantEmotion: summary.DominantEmotion,
	}, nil
}

// aggregateEmotion classifies all user-authored English text as one input.
func (s *Service) aggregateEmotion(ctx context.Context, msgs []store.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == store.RoleUser && m.ContentEN != "" {
			parts = append(parts, m.ContentEN)
		}
	}
	if len(parts) == 0 {
		return emotion.Neutral
	}
	result, err := s.classifier.Classify(ctx, strings.Join(parts, " "))
	if err != nil {
		l := logging.Ctx(ctx)
		l.Warn().Err(err).Str(logging.FieldStage, "emotion").Msg("aggregate emotion failed; using neutral")
		return emotion.Neutral
	}
	return result.Dominant
}

// translateTitle keeps the English title when the Arabic output looks
// broken: fewer than two words, the known artifact, or an error marker.
func (s *Service) translateTitle(ctx context.Context, title string) string {
	trimmed := strings.TrimSpace(title)
	switch strings.ToLower(trimmed) {
	case "", "untitled", "title":
		return UntitledArabic
	}

	translated, err := s.enToAr.Translate(ctx, trimmed)
	if err != nil {
		l := logging.Ctx(ctx)
		l.Warn().Err(err).Msg("title translation failed; keeping english title")
		return trimmed
	}
	translated = strings.TrimSpace(translated)
	if len(strings.Fields(translated)) < 2 ||
		strings.Contains(translated, brokenTitleArtifact) ||
		strings.HasPrefix(translated, "❌") {
		return trimmed
	}
	return translated
}

// translateSummary never sends the English default marker to the
// translator; a missing summary is always stored as the Arabic fallback.
func (s *Service) translateSummary(ctx context.Context, summaryEN string) string {
	if summaryEN == DefaultSummary {
		return SummaryFallbackArabic
	}
	return s.translateOr(ctx, summaryEN, SummaryFallbackArabic)
}

func (s *Service) translateOr(ctx context.Context, text, fallback string) string {
	translated, err := s.enToAr.Translate(ctx, text)
	if err != nil {
		l := logging.Ctx(ctx)
		l.Warn().Err(err).Msg("summary translation failed; using fallback")
		return fallback
	}
	translated = strings.TrimSpace(translated)
	if translated == "" || strings.HasPrefix(translated, "❌ Error") {
		return fallback
	}
	return translated
}
