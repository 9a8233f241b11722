// Package netx contains small outbound-HTTP helpers.
package netx

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// FormField is a single scalar multipart form field.
type FormField struct {
	Name  string
	Value string
}

// FilePart describes the binary part of a multipart payload. Content is
// streamed, not buffered, so arbitrarily large files can be posted.
type FilePart struct {
	FieldName   string
	FileName    string
	ContentType string
	Content     io.Reader
}

// PostMultipart issues a single POST with a multipart/form-data body built
// from the given fields and file part. The body is produced through a pipe so
// the file content is streamed directly into the request.
//
// The returned status code and body are the destination's; interpreting
// non-2xx responses is left to the caller. The response body is fully read
// and closed before returning.
func PostMultipart(ctx context.Context, client *http.Client, url string, fields []FormField, file *FilePart) (int, []byte, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeParts(mw, fields, file)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

func writeParts(mw *multipart.Writer, fields []FormField, file *FilePart) error {
	for _, f := range fields {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return err
		}
	}

	if file == nil {
		return nil
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`,
		escapeQuotes(file.FieldName), escapeQuotes(file.FileName)))
	h.Set("Content-Type", file.ContentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file.Content)
	return err
}

func escapeQuotes(s string) string {
	r := strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
	return r.Replace(s)
}
