package sentry

import (
	"context"
	"fmt"
	"net/url"
	"sentry-itest/lib/htmlutil"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

// LevelUnknown is the Level of an event whose level class is missing or
// not a number.
const LevelUnknown = -1

const levelPrefix = "level-"

// Event is one row of a project's event stream.
type Event struct {
	Group int
	Count int
	// numeric severity, LevelUnknown if LevelName is nil or not a number
	Level     int
	LevelName *string
	// relative link to the group
	Url     string
	Title   string
	Message string
	// empty when the event carries no logger tag
	Logger string
}

// ExtractLevel finds the first "level-*" class and returns it with every
// "level-" removed, or nil if there is none.
func ExtractLevel(classNames []string) *string {
	for _, name := range classNames {
		if strings.HasPrefix(name, levelPrefix) {
			level := strings.ReplaceAll(name, levelPrefix, "")
			return &level
		}
	}
	return nil
}

func parseLevel(levelName *string) int {
	if levelName == nil {
		return LevelUnknown
	}
	level, err := strconv.Atoi(*levelName)
	if err != nil || level < 0 {
		return LevelUnknown
	}
	return level
}

func requireIntAttr(item *goquery.Selection, name string) (int, error) {
	raw, err := htmlutil.RequireAttr(item, name)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}

// EventFromSelection reads an event out of a single `li.event` element.
func EventFromSelection(item *goquery.Selection) (Event, error) {
	group, err := requireIntAttr(item, "data-group")
	if err != nil {
		return Event{}, err
	}
	count, err := requireIntAttr(item, "data-count")
	if err != nil {
		return Event{}, err
	}

	levelName := ExtractLevel(htmlutil.ClassNames(item))

	anchor, err := htmlutil.First(item, "h3 a")
	if err != nil {
		return Event{}, err
	}
	message, err := htmlutil.First(item, "p.message")
	if err != nil {
		return Event{}, err
	}

	return Event{
		Group:     group,
		Count:     count,
		Level:     parseLevel(levelName),
		LevelName: levelName,
		Url:       anchor.AttrOr("href", ""),
		Title:     htmlutil.NormalizedText(anchor),
		Message:   strings.TrimSpace(message.AttrOr("title", "")),
		Logger:    htmlutil.NormalizedText(message.Find("span.tag-logger")),
	}, nil
}

func eventsPath(projectSlug string) string {
	return "/" + url.PathEscape(projectSlug)
}

// GetEvents lists the unresolved events of a project in the order the
// dashboard shows them.
func (c *Client) GetEvents(ctx context.Context, projectSlug string) ([]Event, error) {
	ctx, span := tracer.Start(ctx, "client:GetEvents")
	defer span.End()
	span.SetAttributes(attribute.String("project", projectSlug))

	path := eventsPath(projectSlug)
	doc, err := c.getDocument(ctx, path)
	if err != nil {
		fail(span, err, "failed to fetch event stream")
		return nil, err
	}

	var events []Event
	items := doc.Find("ul#event_list li.event")
	for i := range items.Nodes {
		item := items.Eq(i)
		if item.HasClass("resolved") {
			continue
		}
		event, err := EventFromSelection(item)
		if err != nil {
			err = extractionError(path, fmt.Errorf("event %d: %w", i, err))
			fail(span, err, "failed to read event")
			return nil, err
		}
		events = append(events, event)
	}

	span.SetAttributes(
		attribute.Int("listed", items.Length()),
		attribute.Int("unresolved", len(events)),
	)
	return events, nil
}
