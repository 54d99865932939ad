// Package i18n provides the texts the sync puts on invoices.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// KeyInvoiceNote is the proforma note; it takes the project title.
const KeyInvoiceNote = "admin.accounting.we_invoice_you_for_project"

var messages = map[language.Tag]map[string]string{
	language.Czech: {
		KeyInvoiceNote: "Fakturujeme Vám za služby k projektu %s.",
	},
	language.English: {
		KeyInvoiceNote: "We invoice you for services for project %s.",
	},
}

// Translator renders catalog messages in a single language.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// NewTranslator returns a translator for the closest supported locale.
func NewTranslator(locale string) (*Translator, error) {
	requested, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	cat := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, entries := range messages {
		for key, msg := range entries {
			if err := cat.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("register %s/%s: %w", tag, key, err)
			}
		}
	}

	supported := []language.Tag{language.English, language.Czech}
	_, idx, _ := language.NewMatcher(supported).Match(requested)
	tag := supported[idx]

	return &Translator{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(cat)),
	}, nil
}

// Language returns the matched catalog language.
func (t *Translator) Language() language.Tag {
	return t.tag
}

// Translate formats the message stored under key with args.
func (t *Translator) Translate(key string, args ...any) string {
	return t.printer.Sprintf(key, args...)
}
