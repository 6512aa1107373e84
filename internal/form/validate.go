// Package form holds the client-side validation rules shared by the CLI and
// the TUI pages. The server stays authoritative; these only keep obviously
// bad submissions off the wire.
package form

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Makepad-fr/itemdesk/internal/model"
)

// Field names, used as keys in Errors.
const (
	Name        = "name"
	Email       = "email"
	Password    = "password"
	Title       = "title"
	Description = "description"
)

const (
	minName        = 3
	minPassword    = 6
	minTitle       = 3
	minDescription = 5
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Errors maps a field name to its message. Empty means valid.
type Errors map[string]string

func (e Errors) OK() bool { return len(e) == 0 }

// Get returns the message for field, "" when the field is valid.
func (e Errors) Get(field string) string { return e[field] }

// Clear drops the message for field, as done when the user edits it.
func (e Errors) Clear(field string) { delete(e, field) }

// Fields returns the invalid field names in a stable order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func ValidateLogin(c model.Credentials) Errors {
	errs := Errors{}
	checkEmail(errs, c.Email)
	if c.Password == "" {
		errs[Password] = "Password is required"
	}
	return errs
}

func ValidateRegister(r model.Registration) Errors {
	errs := Errors{}
	name := strings.TrimSpace(r.Name)
	switch {
	case name == "":
		errs[Name] = "Full name is required"
	case runeLen(name) < minName:
		errs[Name] = "Name must be at least 3 characters"
	}
	checkEmail(errs, r.Email)
	switch {
	case r.Password == "":
		errs[Password] = "Password is required"
	case runeLen(r.Password) < minPassword:
		errs[Password] = "Password must be at least 6 characters"
	}
	return errs
}

func ValidateItem(in model.ItemInput) Errors {
	errs := Errors{}
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		errs[Title] = "Title is required"
	case runeLen(title) < minTitle:
		errs[Title] = "Title must be at least 3 characters"
	}
	desc := strings.TrimSpace(in.Description)
	switch {
	case desc == "":
		errs[Description] = "Description is required"
	case runeLen(desc) < minDescription:
		errs[Description] = "Description must be at least 5 characters"
	}
	return errs
}

// NormalizeItem trims what the user typed before it is sent.
func NormalizeItem(in model.ItemInput) model.ItemInput {
	return model.ItemInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
	}
}

// ValidEmail reports whether s looks like an address (something@host.tld).
func ValidEmail(s string) bool { return emailPattern.MatchString(s) }

func checkEmail(errs Errors, email string) {
	switch {
	case strings.TrimSpace(email) == "":
		errs[Email] = "Email is required"
	case !ValidEmail(email):
		errs[Email] = "Email format is invalid"
	}
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
