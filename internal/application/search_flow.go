package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/domain/ports/adapter"
	"drive-search-bot/internal/infra/logging"
	"drive-search-bot/internal/usecase"
)

// Callback and deep-link prefixes shared with the Telegram router.
const (
	CallbackDownload = "dl:"
	CallbackRemove   = "rm:"
	CallbackAdmin    = "admin:"
	DeepLinkDownload = "dl_"

	maxInlineResults = 50
)

// ResultStyle selects the button attached to each search result.
type ResultStyle uint8

const (
	// StyleDownload sends a dl: callback (private chats).
	StyleDownload ResultStyle = iota
	// StyleDeepLink opens the bot in private with a dl_ start parameter (groups).
	StyleDeepLink
	// StyleDelete sends an rm: callback (admin delete mode).
	StyleDelete
	// StyleQuiet is StyleDeepLink that posts nothing when there is no hit.
	StyleQuiet
)

func (s ResultStyle) source() string {
	switch s {
	case StyleDeepLink, StyleQuiet:
		return usecase.SourceGroup
	case StyleDelete:
		return usecase.SourceDelete
	default:
		return usecase.SourcePrivate
	}
}

// InlineResult is one article answer to an inline query.
type InlineResult struct {
	ID          string
	Title       string
	Description string
	Text        string
	ButtonText  string
	ButtonURL   string
}

// SearchFlow runs a Drive search and renders the hits.
type SearchFlow struct {
	search      usecase.SearchUseCase
	bot         adapter.Messenger
	tr          Translator
	botUsername string
	log         *zerolog.Logger
}

func NewSearchFlow(search usecase.SearchUseCase, bot adapter.Messenger, tr Translator, botUsername string, logger *zerolog.Logger) *SearchFlow {
	return &SearchFlow{search: search, bot: bot, tr: tr, botUsername: botUsername, log: logger}
}

// DeepLink opens a private chat with the bot that starts the download.
func (s *SearchFlow) DeepLink(fileID string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", url.PathEscape(s.botUsername), DeepLinkDownload+fileID)
}

func (s *SearchFlow) Reply(ctx context.Context, in Inbound, query string, style ResultStyle) error {
	items, err := s.search.Search(ctx, query, style.source())
	if err != nil {
		logging.With(ctx, s.log).Warn().Err(err).Str("query", query).Msg("search failed")
		if style == StyleQuiet {
			return nil
		}
		return s.send(ctx, in, s.tr.T("search.error", describe(s.tr, err)), nil)
	}
	if len(items) == 0 {
		if style == StyleQuiet {
			return nil
		}
		return s.send(ctx, in, s.tr.T("search.no_results", query), nil)
	}

	rows := make([][]adapter.InlineButton, 0, len(items))
	for _, it := range items {
		rows = append(rows, []adapter.InlineButton{s.button(it, style)})
	}
	title := "search.results"
	if style == StyleDelete {
		title = "search.delete_results"
	}
	return s.send(ctx, in, s.tr.T(title, query), rows)
}

func (s *SearchFlow) button(it model.DriveItem, style ResultStyle) adapter.InlineButton {
	switch style {
	case StyleDeepLink, StyleQuiet:
		return adapter.InlineButton{Text: it.Name, URL: s.DeepLink(it.ID)}
	case StyleDelete:
		return adapter.InlineButton{Text: s.tr.T("search.delete_button", it.Name), Data: CallbackRemove + it.ID}
	default:
		return adapter.InlineButton{Text: it.Name, Data: CallbackDownload + it.ID}
	}
}

func (s *SearchFlow) send(ctx context.Context, in Inbound, text string, rows [][]adapter.InlineButton) error {
	p := adapter.SendMessageParams{ChatID: in.ChatID, Text: text, Buttons: rows}
	if !in.IsPrivate() {
		p.ReplyTo = in.MessageID
	}
	_, err := s.bot.SendMessage(ctx, p)
	return err
}

// Inline answers an inline query with up to 50 deep-link articles.
func (s *SearchFlow) Inline(ctx context.Context, query string) ([]InlineResult, error) {
	items, err := s.search.Search(ctx, query, usecase.SourceInline)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return nil, nil
		}
		return nil, err
	}
	if len(items) > maxInlineResults {
		items = items[:maxInlineResults]
	}
	out := make([]InlineResult, 0, len(items))
	for _, it := range items {
		out = append(out, InlineResult{
			ID:          it.ID,
			Title:       it.Name,
			Description: s.tr.T("inline.size", it.HumanSize()),
			Text:        s.tr.T("inline.found", it.Name),
			ButtonText:  s.tr.T("inline.get"),
			ButtonURL:   s.DeepLink(it.ID),
		})
	}
	return out, nil
}

// describe maps a failure to the short reason shown to users.
func describe(tr Translator, err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return tr.T("error.unauthenticated")
	case errors.Is(err, domain.ErrNoCredentials):
		return tr.T("error.no_credentials")
	case errors.Is(err, domain.ErrForbidden):
		return tr.T("error.forbidden")
	case errors.Is(err, domain.ErrNotFound):
		return tr.T("error.not_found")
	case errors.Is(err, domain.ErrTransient):
		return tr.T("error.transient")
	case errors.Is(err, domain.ErrInvalidArgument):
		return tr.T("error.invalid")
	default:
		return tr.T("error.generic")
	}
}
