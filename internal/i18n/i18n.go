// Package i18n maps error codes and balance reasons to user-facing messages.
package i18n

import (
	"embed"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-keyvault/internal/wallet"
	"github/chapool/go-keyvault/internal/wallet/balance"
	"golang.org/x/text/language"
)

//go:embed messages/*.toml
var messageFS embed.FS

// Data is passed to message templates.
type Data map[string]interface{}

// Service translates message keys with a go-i18n bundle.
type Service struct {
	bundle  *i18n.Bundle
	matcher language.Matcher
}

// New loads the embedded message files with defaultLanguage as fallback.
func New(defaultLanguage language.Tag) (*Service, error) {
	bundle := i18n.NewBundle(defaultLanguage)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := messageFS.ReadDir("messages")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read message files")
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(messageFS, path.Join("messages", file.Name())); err != nil {
			return nil, errors.Wrapf(err, "failed to load message file %s", file.Name())
		}
	}

	return &Service{
		bundle:  bundle,
		matcher: language.NewMatcher(bundle.LanguageTags()),
	}, nil
}

// Translate returns the message for key in lang, or key itself when no
// translation exists.
func (s *Service) Translate(key string, lang language.Tag, data ...Data) string {
	localizer := i18n.NewLocalizer(s.bundle, lang.String())

	var templateData Data
	if len(data) > 0 {
		templateData = data[0]
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: templateData,
	})
	if err != nil {
		log.Debug().Err(err).Str("key", key).Str("lang", lang.String()).Msg("Translation not found")
		return key
	}

	return msg
}

// ParseAcceptLanguage picks the best supported language for an
// Accept-Language style list such as "zh-CN,zh;q=0.9,en;q=0.8".
func (s *Service) ParseAcceptLanguage(lang string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(tags) == 0 {
		return s.bundle.LanguageTags()[0]
	}

	_, idx, _ := s.matcher.Match(tags...)
	return s.bundle.LanguageTags()[idx]
}

func (s *Service) LanguageTags() []language.Tag {
	return s.bundle.LanguageTags()
}

// ErrorKey is the message key of a coded error, "error.unknown" otherwise.
func ErrorKey(err error) string {
	code := wallet.ErrorCode(err)
	if code == "" {
		return "error.unknown"
	}
	return "error." + code
}

// Error translates err by its code.
func (s *Service) Error(err error, lang language.Tag) string {
	return s.Translate(ErrorKey(err), lang)
}

// BalanceReason translates the reason of a balance status. ReasonNone yields "".
func (s *Service) BalanceReason(reason balance.Reason, lang language.Tag) string {
	if reason == balance.ReasonNone {
		return ""
	}
	return s.Translate("balance."+string(reason), lang)
}
