package api

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// SubmitEntry posts a new entry to the experiment's logbook.
func (c *Client) SubmitEntry(experiment string, entry Entry) (*SubmitResult, error) {
	entry = entry.Normalize()
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	body, contentType, err := encodeEntry(entry)
	if err != nil {
		return nil, err
	}

	data, err := c.postForm(experimentPath(experiment, "new_elog_entry"), body, contentType)
	if err != nil {
		return nil, err
	}
	result, err := decodeValue[SubmitResult](data)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitEntries posts entry to each logbook in order and stops at the first
// failure, returning what was posted so far. Only the first logbook gets the
// run number; the others don't share its runs.
func (c *Client) SubmitEntries(logbooks []string, entry Entry) ([]Posted, error) {
	entry = entry.Normalize()
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	posted := make([]Posted, 0, len(logbooks))
	for i, logbook := range logbooks {
		e := entry
		if i > 0 {
			e.Run = ""
		}
		result, err := c.SubmitEntry(logbook, e)
		if err != nil {
			return posted, fmt.Errorf("post to %s: %w", logbook, err)
		}
		posted = append(posted, Posted{Logbook: logbook, Result: result})
	}
	return posted, nil
}

// encodeEntry builds the multipart form the service expects.
func encodeEntry(entry Entry) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{{"log_text", entry.Text}}
	if len(entry.Tags) > 0 {
		fields = append(fields, [2]string{"log_tags", strings.Join(entry.Tags, " ")})
	}
	if entry.Run != "" {
		fields = append(fields, [2]string{"run_num", entry.Run})
	}
	if entry.Parent != "" {
		fields = append(fields, [2]string{"parent", entry.Parent})
	}
	if len(entry.Emails) > 0 {
		fields = append(fields, [2]string{"log_emails", strings.Join(entry.Emails, " ")})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f[0], err)
		}
	}

	for _, path := range entry.Attachments {
		if err := writeAttachment(w, path); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func writeAttachment(w *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open attachment: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, quoteEscaper.Replace(name)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create attachment part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy attachment %s: %w", name, err)
	}
	return nil
}
