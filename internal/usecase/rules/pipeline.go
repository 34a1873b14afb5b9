package rules

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"

	"voxbot/internal/domain"
)

// The "!" sigil belongs to other chat bots; the bot's own "~" commands
// are consumed by the command router before a message ever reaches the
// pipeline, so they are not filtered again here.
const commandSigil = "!"

const numberPlaceholder = "[number]"

// Permissive on purpose: scheme-prefixed links, www. prefixes and bare
// domains with a common TLD all count as URLs.
var urlPattern = regexp.MustCompile(`(?i)(?:https?://\S+|www\.\S+|\b[a-z0-9][a-z0-9-]*(?:\.[a-z0-9][a-z0-9-]*)*\.(?:com|net|org|tv|gg|io|co|me|dev|app|xyz)(?:/\S*)?)`)

var (
	digitRunPattern = regexp.MustCompile(`[0-9]+`)
	whitespaceRun   = regexp.MustCompile(`\s{2,}`)
)

// Pipeline turns a ChatMessage into speakable text or a rejection. It is
// pure except for the tracker updates made on acceptance.
type Pipeline struct {
	settings domain.SettingsRepository
	trackers *Trackers
	now      func() time.Time
}

func NewPipeline(settings domain.SettingsRepository) *Pipeline {
	return &Pipeline{
		settings: settings,
		trackers: NewTrackers(),
		now:      time.Now,
	}
}

// Process loads a fresh config snapshot and evaluates the message.
func (p *Pipeline) Process(ctx context.Context, msg domain.ChatMessage) domain.ProcessedMessage {
	return p.Evaluate(LoadConfig(ctx, p.settings), msg)
}

func reject(reason string) domain.ProcessedMessage {
	return domain.ProcessedMessage{ShouldSpeak: false, Reason: reason}
}

// Evaluate runs the rule steps in their fixed order. Later steps rewrite
// text that earlier steps already passed judgment on, so reordering
// changes behavior.
func (p *Pipeline) Evaluate(cfg Config, msg domain.ChatMessage) domain.ProcessedMessage {
	now := p.now()
	text := msg.Text

	if cfg.FilterCommands && strings.HasPrefix(strings.TrimSpace(text), commandSigil) {
		return reject("commands are not spoken")
	}

	if cfg.FilterURLs && urlPattern.MatchString(text) {
		return reject("messages with links are not spoken")
	}

	if cfg.FilterBots {
		if _, ok := cfg.BotNames[strings.ToLower(msg.Username)]; ok {
			return reject("bot messages are not spoken")
		}
	}

	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < cfg.MinLength {
		return reject(fmt.Sprintf("message shorter than the minimum length (%d)", cfg.MinLength))
	}
	text = trimmed
	if runes := []rune(text); cfg.MaxLength > 0 && len(runes) > cfg.MaxLength {
		text = string(runes[:cfg.MaxLength])
	}

	for _, word := range cfg.BlockedWords {
		text = replaceFold(text, word, cfg.BlockedReplacement)
	}

	if cfg.SkipDuplicates {
		if p.trackers.CheckDuplicate(msg.ViewerID, strings.ToLower(text), cfg.DuplicateWindow, now) {
			return reject("duplicate message")
		}
	}

	if cfg.UserCooldown > 0 {
		if remaining := p.trackers.UserRemaining(msg.ViewerID, cfg.UserCooldown, now); remaining > 0 {
			return reject(fmt.Sprintf("wait %d seconds before your next message", ceilSeconds(remaining)))
		}
	}

	if cfg.GlobalCooldown > 0 {
		if remaining := p.trackers.GlobalRemaining(cfg.GlobalCooldown, now); remaining > 0 {
			return reject(fmt.Sprintf("chat speech is on cooldown for %d more seconds", ceilSeconds(remaining)))
		}
	}

	if cfg.LimitEmotes && len(msg.Emotes) > 0 {
		text = limitEmotes(text, msg.Emotes, cfg.MaxEmotes)
	}

	if cfg.LimitEmojis {
		text = limitEmojis(text, cfg.MaxEmojis)
	}

	if cfg.LimitLongNumbers {
		text = digitRunPattern.ReplaceAllStringFunc(text, func(run string) string {
			if len(run) > cfg.MaxNumberDigits {
				return numberPlaceholder
			}
			return run
		})
	}

	if cfg.LimitRepeatedChars {
		text = collapseRepeats(text, cfg.MaxRepeatedChars)
	}

	if cfg.AnnounceUsername {
		text = announce(cfg.AnnounceStyle, msg.SpeakerName(), text)
	}

	p.trackers.MarkSpoken(msg.ViewerID, now)

	return domain.ProcessedMessage{Text: text, ShouldSpeak: true}
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

// replaceFold replaces every case-insensitive occurrence of word in text
// with repl. Plain substring match, no word boundaries. The scan works
// on runes; byte offsets into a lowercased copy would drift for runes
// whose lowered form has a different byte length.
func replaceFold(text, word, repl string) string {
	if word == "" {
		return text
	}
	runes := []rune(text)
	target := []rune(word)
	for i, r := range target {
		target[i] = unicode.ToLower(r)
	}

	var b strings.Builder
	for i := 0; i < len(runes); {
		if foldMatchAt(runes[i:], target) {
			b.WriteString(repl)
			i += len(target)
			continue
		}
		b.WriteRune(runes[i])
		i++
	}
	return b.String()
}

func foldMatchAt(runes, target []rune) bool {
	if len(runes) < len(target) {
		return false
	}
	for i, r := range target {
		if unicode.ToLower(runes[i]) != r {
			return false
		}
	}
	return true
}

// limitEmotes keeps the first max emote spans (by start offset) and
// excises the character ranges of the rest. Malformed span data fails
// open: the text comes back unchanged.
func limitEmotes(text string, spans []domain.EmoteSpan, max int) string {
	runes := []rune(text)

	sorted := make([]domain.EmoteSpan, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for _, s := range sorted {
		if s.Start < 0 || s.End < s.Start || s.End >= len(runes) {
			log.Debug().Int("start", s.Start).Int("end", s.End).
				Msg("rules: skipping emote limit, span out of range")
			return text
		}
	}

	if max < 0 {
		max = 0
	}
	if len(sorted) <= max {
		return text
	}

	drop := make([]bool, len(runes))
	for _, s := range sorted[max:] {
		for i := s.Start; i <= s.End; i++ {
			drop[i] = true
		}
	}

	kept := make([]rune, 0, len(runes))
	for i, r := range runes {
		if !drop[i] {
			kept = append(kept, r)
		}
	}

	out := whitespaceRun.ReplaceAllString(string(kept), " ")
	return strings.TrimSpace(out)
}

// collapseRepeats shortens any run of the same letter longer than max to
// exactly max repetitions. Digits are left alone; the long-number rule
// owns those.
func collapseRepeats(text string, max int) string {
	if max < 1 {
		return text
	}
	var (
		out   []rune
		prev  rune
		count int
	)
	for _, r := range text {
		if unicode.IsLetter(r) && r == prev {
			count++
			if count > max {
				continue
			}
		} else {
			prev = r
			count = 1
		}
		out = append(out, r)
	}
	return string(out)
}

func announce(style, name, text string) string {
	switch style {
	case AnnounceStyleFrom:
		return fmt.Sprintf("From %s: %s", name, text)
	case AnnounceStyleColon:
		return fmt.Sprintf("%s: %s", name, text)
	default:
		return fmt.Sprintf("%s says: %s", name, text)
	}
}
