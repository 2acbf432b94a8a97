package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/leofalp/aimux/providers/observability"
)

// HeaderOption is an extra request header, used for vendor-specific
// authentication (x-api-key, x-goog-api-key, xi-api-key) and API versions.
type HeaderOption struct {
	Key   string
	Value string
}

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, TruncateString(e.Body, DefaultMaxStringLength))
}

// FormFile is a file part of a multipart request.
type FormFile struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

// MultipartForm is the body of a multipart/form-data request.
type MultipartForm struct {
	Fields map[string]string
	Files  []FormFile
}

// DoPostSync performs a synchronous HTTP POST request with a JSON body and
// decodes the JSON response into OutputStruct.
//
// A non-empty apiKey is sent as a Bearer token; vendors that authenticate
// differently pass an empty apiKey and a HeaderOption instead. Non-2xx
// responses are returned as *StatusError. Transport events are recorded on
// the span carried by ctx, if any.
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	res, respBody, err := DoPostRaw(ctx, client, url, apiKey, body, headers...)
	if err != nil {
		return res, nil, err
	}
	return decode[OutputStruct](res, respBody)
}

// DoPostRaw is DoPostSync without response decoding. It is used for endpoints
// that return binary payloads such as synthesized audio.
func DoPostRaw(ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, []byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setHeaders(req, apiKey, headers)

	return do(ctx, client, req, len(jsonBody))
}

// DoPostMultipart sends form as multipart/form-data and decodes the JSON
// response into OutputStruct.
func DoPostMultipart[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, form MultipartForm, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range form.Fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, nil, fmt.Errorf("error writing form field %s: %w", key, err)
		}
	}
	for _, file := range form.Files {
		partHeader := make(textproto.MIMEHeader)
		partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.FileName))
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		partHeader.Set("Content-Type", contentType)

		part, err := writer.CreatePart(partHeader)
		if err != nil {
			return nil, nil, fmt.Errorf("error creating form file %s: %w", file.Field, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, nil, fmt.Errorf("error writing form file %s: %w", file.Field, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, nil, fmt.Errorf("error closing multipart writer: %w", err)
	}

	size := buf.Len()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	setHeaders(req, apiKey, headers)

	res, respBody, err := do(ctx, client, req, size)
	if err != nil {
		return res, nil, err
	}
	return decode[OutputStruct](res, respBody)
}

// DoGetSync performs a GET request and decodes the JSON response.
func DoGetSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	res, respBody, err := DoGetRaw(ctx, client, url, apiKey, headers...)
	if err != nil {
		return res, nil, err
	}
	return decode[OutputStruct](res, respBody)
}

// DoGetRaw performs a GET request and returns the raw body, e.g. to download
// a generated image from a URL.
func DoGetRaw(ctx context.Context, client *http.Client, url string, apiKey string, headers ...HeaderOption) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}
	setHeaders(req, apiKey, headers)
	return do(ctx, client, req, 0)
}

// CloseWithLog closes c and logs, rather than returns, any error.
func CloseWithLog(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}

func setHeaders(req *http.Request, apiKey string, headers []HeaderOption) {
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}
}

func do(ctx context.Context, client *http.Client, req *http.Request, bodySize int) (*http.Response, []byte, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if span != nil {
		span.AddEvent("http.request.prepared",
			observability.String(observability.AttrHTTPMethod, req.Method),
			observability.String(observability.AttrHTTPURL, req.URL.String()),
			observability.Int(observability.AttrHTTPRequestBodySize, bodySize),
		)
	}

	requestStart := time.Now()
	res, err := httpClient.Do(req)
	requestDuration := time.Since(requestStart)
	if err != nil {
		if span != nil {
			span.AddEvent("http.request.error",
				observability.Error(err),
				observability.Duration(observability.AttrHTTPDuration, requestDuration),
			)
		}
		return res, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer CloseWithLog(res.Body)

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return res, nil, fmt.Errorf("error reading response body: %w", err)
	}

	if span != nil {
		span.AddEvent("http.response.received",
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(respBody)),
			observability.Duration(observability.AttrHTTPDuration, requestDuration),
		)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, nil, &StatusError{StatusCode: res.StatusCode, Body: string(respBody)}
	}
	return res, respBody, nil
}

func decode[OutputStruct any](res *http.Response, body []byte) (*http.Response, *OutputStruct, error) {
	var out OutputStruct
	if err := json.Unmarshal(body, &out); err != nil {
		return res, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nResponse preview: %s", res.StatusCode, err, TruncateString(string(body), DefaultMaxStringLength))
	}
	return res, &out, nil
}
