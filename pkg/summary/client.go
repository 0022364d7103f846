package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultBaseURL = "http://127.0.0.1:5000"

var (
	ErrMissingFileID = errors.New("ml service returned no file id")
	ErrEmptySummary  = errors.New("ml service returned an empty summary")
)

// Backend is the two-call contract of the summarisation service.
type Backend interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
	Summarize(ctx context.Context, fileID string) (string, error)
}

// Client calls the ML service over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

var _ Backend = &Client{}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 5 * time.Minute},
	}
}

type uploadResponse struct {
	FileID string `json:"file_id"`
}

type summaryRequest struct {
	DocumentID string `json:"document_id"`
}

type summaryResponse struct {
	ChatResponse string `json:"chat_response"`
}

func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	ctx, span := otel.Tracer("legalai-be/summary").Start(ctx, "ml.upload")
	defer span.End()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fail(span, fmt.Errorf("create form file: %w", err))
	}
	n, err := io.Copy(part, r)
	if err != nil {
		return "", fail(span, fmt.Errorf("read upload: %w", err))
	}
	if err := mw.Close(); err != nil {
		return "", fail(span, fmt.Errorf("close multipart: %w", err))
	}
	span.SetAttributes(attribute.Int64("ml.upload.bytes", n))

	var out uploadResponse
	if err := c.post(ctx, "/api/ml/v1/upload", mw.FormDataContentType(), &body, &out); err != nil {
		return "", fail(span, err)
	}
	if out.FileID == "" {
		return "", fail(span, ErrMissingFileID)
	}
	return out.FileID, nil
}

func (c *Client) Summarize(ctx context.Context, fileID string) (string, error) {
	ctx, span := otel.Tracer("legalai-be/summary").Start(ctx, "ml.summarize")
	defer span.End()
	span.SetAttributes(attribute.String("ml.document_id", fileID))

	payload, err := json.Marshal(summaryRequest{DocumentID: fileID})
	if err != nil {
		return "", fail(span, err)
	}

	var out summaryResponse
	if err := c.post(ctx, "/api/ml/v1/summary", "application/json", bytes.NewReader(payload), &out); err != nil {
		return "", fail(span, err)
	}
	if strings.TrimSpace(out.ChatResponse) == "" {
		return "", fail(span, ErrEmptySummary)
	}
	return out.ChatResponse, nil
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ml service %s returned status %d: %s", path, resp.StatusCode, string(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
