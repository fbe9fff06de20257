package sentry

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sentry-itest/lib/htmlutil"

	"go.opentelemetry.io/otel/attribute"
)

// "Environment (env)" -> "env"
var tagLabelRegex = regexp.MustCompile(`^.*\((\w+)\)$`)

func tagsPath(projectSlug string) string {
	return fmt.Sprintf("/account/projects/%s/tags/", url.PathEscape(projectSlug))
}

// TagNameFromLabel returns the key in parentheses at the end of a filter
// label. Whitespace runs are collapsed first, the way the label renders.
func TagNameFromLabel(label string) (string, bool) {
	label = htmlutil.CollapseWhitespace(label)
	groups := tagLabelRegex.FindStringSubmatch(label)
	if len(groups) < 2 {
		return "", false
	}
	return groups[1], true
}

// GetAvailableTags lists the tag keys offered as filters on the project's
// tag settings, in page order.
func (c *Client) GetAvailableTags(ctx context.Context, projectSlug string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "client:GetAvailableTags")
	defer span.End()
	span.SetAttributes(attribute.String("project", projectSlug))

	doc, err := c.getDocument(ctx, tagsPath(projectSlug))
	if err != nil {
		fail(span, err, "failed to fetch tags page")
		return nil, err
	}

	var tagNames []string
	for _, label := range doc.Find("#div_id_filters label.checkbox").Nodes {
		name, ok := TagNameFromLabel(htmlutil.GetText(label))
		if !ok {
			continue
		}
		tagNames = append(tagNames, name)
	}
	return tagNames, nil
}
