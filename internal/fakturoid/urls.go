package fakturoid

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"crmsync/pkg/models"
)

// DefaultWebURL is the root of the Fakturoid web application.
const DefaultWebURL = "https://app.fakturoid.cz"

// URLFactory builds links into the Fakturoid web UI for one account.
type URLFactory struct {
	base           string
	eurGeneratorID int64
}

// NewURLFactory returns a factory for the account. EUR proformas are started
// from the generator eurGeneratorID when it is non-zero.
func NewURLFactory(webURL, account string, eurGeneratorID int64) *URLFactory {
	if webURL == "" {
		webURL = DefaultWebURL
	}
	return &URLFactory{
		base:           strings.TrimRight(webURL, "/") + "/" + url.PathEscape(account),
		eurGeneratorID: eurGeneratorID,
	}
}

// ProformaNew links to the new invoice form, preselecting the subject when known.
func (f *URLFactory) ProformaNew(currency string, subjectID int64) string {
	q := url.Values{}
	path := "/invoices/new"
	if models.IsEUR(currency) && f.eurGeneratorID != 0 {
		path = "/invoices/new_from_generator"
		q.Set("generator_id", strconv.FormatInt(f.eurGeneratorID, 10))
	}
	if subjectID != 0 {
		q.Set("subject_id", strconv.FormatInt(subjectID, 10))
	}

	u := f.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// Proforma returns the web page of an invoice.
func (f *URLFactory) Proforma(id int64) string {
	return fmt.Sprintf("%s/invoices/%d", f.base, id)
}

// SendProforma returns the page for e-mailing an invoice to the client.
func (f *URLFactory) SendProforma(id int64) string {
	return f.Proforma(id) + "/message/new"
}

// Subject returns the web page of a subject (contact).
func (f *URLFactory) Subject(id int64) string {
	return fmt.Sprintf("%s/subjects/%d", f.base, id)
}
