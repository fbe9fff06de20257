package sentry

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sentry-itest/lib/htmlutil"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

func docsPath(projectSlug string) string {
	return fmt.Sprintf("/account/projects/%s/docs/", url.PathEscape(projectSlug))
}

func clearPath(projectId string) string {
	return fmt.Sprintf("/api/%s/clear/", url.PathEscape(projectId))
}

func rawJsonPath(projectSlug string, group int) string {
	return fmt.Sprintf("/%s/group/%d/events/json/", url.PathEscape(projectSlug), group)
}

// GetDsn reads the DSN shown on the project's integration docs.
func (c *Client) GetDsn(ctx context.Context, projectSlug string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:GetDsn")
	defer span.End()
	span.SetAttributes(attribute.String("project", projectSlug))

	path := docsPath(projectSlug)
	doc, err := c.getDocument(ctx, path)
	if err != nil {
		fail(span, err, "failed to fetch docs page")
		return "", err
	}

	code, err := htmlutil.First(doc.Selection, "#content code.clippy")
	if err != nil {
		err = extractionError(path, err)
		fail(span, err, "failed to find dsn")
		return "", err
	}
	contents, err := htmlutil.InnerHtml(code)
	if err != nil {
		err = extractionError(path, err)
		fail(span, err, "failed to render dsn")
		return "", err
	}
	return strings.TrimSpace(contents), nil
}

// Clear removes every event of the project.
func (c *Client) Clear(ctx context.Context, projectId string) (bool, error) {
	ctx, span := tracer.Start(ctx, "client:Clear")
	defer span.End()
	span.SetAttributes(attribute.String("project_id", projectId))

	// resty reads the body to the end and closes it, so the connection
	// goes back to the pool whatever the status.
	res, err := c.post(ctx, clearPath(projectId), nil)
	if err != nil {
		fail(span, err, "failed to make clear request")
		return false, err
	}
	span.SetAttributes(attribute.Int("status", res.StatusCode()))
	return res.StatusCode() == http.StatusOK, nil
}

// GetRawJson returns the events of a group exactly as the dashboard
// serializes them, or nil when the dashboard answers with an empty body.
func (c *Client) GetRawJson(ctx context.Context, projectSlug string, group int) (htmlutil.RawJsonArray, error) {
	ctx, span := tracer.Start(ctx, "client:GetRawJson")
	defer span.End()
	span.SetAttributes(
		attribute.String("project", projectSlug),
		attribute.Int("group", group),
	)

	path := rawJsonPath(projectSlug, group)
	res, err := c.get(ctx, path)
	if err != nil {
		fail(span, err, "failed to fetch events json")
		return nil, err
	}

	events, err := htmlutil.ParseJsonArray(res.Body())
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrParse, path, err)
		fail(span, err, "failed to parse events json")
		return nil, err
	}
	return events, nil
}
