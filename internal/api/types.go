package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// --- API Response Envelope ---

type apiResponse[T any] struct {
	Success  bool   `json:"success"`
	Value    T      `json:"value"`
	Message  string `json:"message,omitempty"`
	ErrorMsg string `json:"errormsg,omitempty"`
}

func (r apiResponse[T]) message() string {
	if r.Message != "" {
		return r.Message
	}
	return r.ErrorMsg
}

// Station handles station ids that the service sends as numbers or strings.
type Station string

func (s *Station) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = Station(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = Station(num.String())
	return nil
}

// --- Experiment ---

// Experiment is a logbook that entries can be posted to.
type Experiment struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Instrument  string  `json:"instrument"`
	Station     Station `json:"station"`
	Description string  `json:"description,omitempty"`
}

// --- Run ---

// Run is a data-taking run of an experiment.
type Run struct {
	Num       int     `json:"num"`
	Type      string  `json:"type,omitempty"`
	BeginTime string  `json:"begin_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
}

// --- Entry ---

// ErrInvalidEntry is returned by Entry.Validate.
var ErrInvalidEntry = errors.New("invalid entry")

// Entry is a new logbook message with its tags and attachments.
type Entry struct {
	Text        string
	Tags        []string
	Attachments []string
	Run         string
	Parent      string
	Emails      []string
}

// SubmitResult is the entry the service created.
type SubmitResult struct {
	ID      string   `json:"_id"`
	Content string   `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// Posted records one logbook an entry was written to.
type Posted struct {
	Logbook string
	Result  *SubmitResult
}

// Normalize strips non-printable characters from the text and trims it,
// and trims run, parent, tags, and emails.
func (e Entry) Normalize() Entry {
	out := e
	out.Text = strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || unicode.IsPrint(r) {
			return r
		}
		return -1
	}, e.Text))
	out.Run = strings.TrimSpace(e.Run)
	out.Parent = strings.TrimSpace(e.Parent)
	out.Tags = compact(e.Tags)
	out.Emails = compact(e.Emails)
	return out
}

// Validate checks the entry can be posted.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Text) == "" && len(e.Attachments) == 0 {
		return fmt.Errorf("%w: message text or an attachment is required", ErrInvalidEntry)
	}
	if strings.TrimSpace(e.Run) != "" && strings.TrimSpace(e.Parent) != "" {
		return fmt.Errorf("%w: run number can't be used together with a parent message id", ErrInvalidEntry)
	}
	for _, tag := range e.Tags {
		if strings.IndexFunc(tag, unicode.IsSpace) >= 0 {
			return fmt.Errorf("%w: tag %q contains whitespace", ErrInvalidEntry, tag)
		}
	}
	return nil
}

func compact(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
