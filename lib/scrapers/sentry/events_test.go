package sentry

import (
	"context"
	"errors"
	"net/http"
	"sentry-itest/lib/htmlutil"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func levelName(name string) *string {
	return &name
}

func TestExtractLevel(t *testing.T) {
	testCases := []struct {
		classNames []string
		expected   *string
	}{
		{classNames: []string{"event", "level-40", "resolved"}, expected: levelName("40")},
		{classNames: []string{"resolved", "event", "level-40"}, expected: levelName("40")},
		{classNames: []string{"level-40", "resolved", "event"}, expected: levelName("40")},
		{classNames: []string{"event", "level-error", "level-40"}, expected: levelName("error")},
		{classNames: []string{"level-"}, expected: levelName("")},
		{classNames: []string{"level-level-40"}, expected: levelName("40")},
		{classNames: []string{"level-40-level-"}, expected: levelName("40-")},
		{classNames: []string{"event", "resolved"}, expected: nil},
		{classNames: []string{"event", "mylevel-40"}, expected: nil},
		{classNames: nil, expected: nil},
	}

	for _, test := range testCases {
		diff := cmp.Diff(test.expected, ExtractLevel(test.classNames))
		if diff != "" {
			t.Fatalf("ExtractLevel(%v) (-want +got):\n%s", test.classNames, diff)
		}
	}
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name     *string
		expected int
	}{
		{name: levelName("40"), expected: 40},
		{name: levelName("0"), expected: 0},
		{name: levelName("error"), expected: LevelUnknown},
		{name: levelName("-5"), expected: LevelUnknown},
		{name: levelName(""), expected: LevelUnknown},
		{name: nil, expected: LevelUnknown},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, parseLevel(test.name))
	}
}

func TestEventFromSelection(t *testing.T) {
	doc, err := htmlutil.ParseDocument([]byte(`<ul><li class="event level-30" data-group="12" data-count="345">
		<h3><a href="/default/group/12/">  ZeroDivisionError: division by zero </a></h3>
		<p class="message" title=" integer division or modulo by zero ">
			<span class="tag tag-logger">  root </span>
		</p>
	</li></ul>`))
	require.NoError(t, err)

	event, err := EventFromSelection(doc.Find("li.event"))
	require.NoError(t, err)

	expected := Event{
		Group:     12,
		Count:     345,
		Level:     30,
		LevelName: levelName("30"),
		Url:       "/default/group/12/",
		Title:     "ZeroDivisionError: division by zero",
		Message:   "integer division or modulo by zero",
		Logger:    "root",
	}
	if diff := cmp.Diff(expected, event); diff != "" {
		t.Fatalf("EventFromSelection (-want +got):\n%s", diff)
	}
}

func TestEventFromSelectionCollapsesText(t *testing.T) {
	doc, err := htmlutil.ParseDocument([]byte(`<ul><li class="event level-40" data-group="7" data-count="1">
		<h3><a href="/default/group/7/">
			ValueError:
			bad value
		</a></h3>
		<p class="message" title="bad value">
			<span class="tag-logger">a</span>
			<span class="tag-logger"> b </span>
		</p>
	</li></ul>`))
	require.NoError(t, err)

	event, err := EventFromSelection(doc.Find("li.event"))
	require.NoError(t, err)
	require.Equal(t, "ValueError: bad value", event.Title)
	require.Equal(t, "a b", event.Logger)
}

func TestEventFromSelectionStructure(t *testing.T) {
	testCases := []struct {
		name string
		html string
	}{
		{
			name: "missing group",
			html: `<li class="event" data-count="1"><h3><a href="/">t</a></h3><p class="message" title="m"></p></li>`,
		},
		{
			name: "missing count",
			html: `<li class="event" data-group="1"><h3><a href="/">t</a></h3><p class="message" title="m"></p></li>`,
		},
		{
			name: "missing anchor",
			html: `<li class="event" data-group="1" data-count="1"><h3>t</h3><p class="message" title="m"></p></li>`,
		},
		{
			name: "missing message",
			html: `<li class="event" data-group="1" data-count="1"><h3><a href="/">t</a></h3></li>`,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			doc, err := htmlutil.ParseDocument([]byte("<ul>" + test.html + "</ul>"))
			require.NoError(t, err)
			_, err = EventFromSelection(doc.Find("li.event"))
			require.Error(t, err)
			require.True(t,
				errors.Is(err, htmlutil.ErrElementNotFound) || errors.Is(err, htmlutil.ErrAttributeNotFound),
				"unexpected error %v", err,
			)
		})
	}

	doc, err := htmlutil.ParseDocument([]byte(`<ul><li class="event" data-group="1" data-count="many">
		<h3><a href="/">t</a></h3><p class="message" title="m"></p></li></ul>`))
	require.NoError(t, err)
	_, err = EventFromSelection(doc.Find("li.event"))
	var numErr *strconv.NumError
	require.True(t, errors.As(err, &numErr))
}

const eventStreamHtml = `<html><body>
<div id="content">
<ul id="event_list">
	<li class="event level-40" data-group="1" data-count="3">
		<h3><a href="/default/group/1/">First</a></h3>
		<p class="message" title="first message"><span class="tag-logger">app</span></p>
	</li>
	<li class="event level-40 resolved" data-group="2" data-count="1">
		<h3><a href="/default/group/2/">Second</a></h3>
		<p class="message" title="second message"></p>
	</li>
	<li class="level-fatal event" data-group="3" data-count="7">
		<h3><a href="/default/group/3/">Third</a></h3>
		<p class="message" title="third message"></p>
	</li>
</ul>
<ul id="other"><li class="event" data-group="x"></li></ul>
</div>
</body></html>`

func TestGetEvents(t *testing.T) {
	dashboard := newFakeDashboard(t)
	dashboard.Page("/default", http.StatusOK, eventStreamHtml)
	client := newTestClient(t, dashboard.Server.URL)

	events, err := client.GetEvents(context.Background(), "default")
	require.NoError(t, err)

	expected := []Event{
		{
			Group:     1,
			Count:     3,
			Level:     40,
			LevelName: levelName("40"),
			Url:       "/default/group/1/",
			Title:     "First",
			Message:   "first message",
			Logger:    "app",
		},
		{
			Group:     3,
			Count:     7,
			Level:     LevelUnknown,
			LevelName: levelName("fatal"),
			Url:       "/default/group/3/",
			Title:     "Third",
			Message:   "third message",
			Logger:    "",
		},
	}
	if diff := cmp.Diff(expected, events); diff != "" {
		t.Fatalf("GetEvents (-want +got):\n%s", diff)
	}
}

func TestGetEventsEmpty(t *testing.T) {
	dashboard := newFakeDashboard(t)
	dashboard.Page("/default", http.StatusOK, `<ul id="event_list"></ul>`)
	client := newTestClient(t, dashboard.Server.URL)

	events, err := client.GetEvents(context.Background(), "default")
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestGetEventsBrokenItem(t *testing.T) {
	dashboard := newFakeDashboard(t)
	dashboard.Page("/default", http.StatusOK, `<ul id="event_list">
		<li class="event" data-group="1" data-count="1"><h3><a href="/">t</a></h3><p class="message"></p></li>
		<li class="event" data-count="1"><h3><a href="/">t</a></h3><p class="message"></p></li>
	</ul>`)
	client := newTestClient(t, dashboard.Server.URL)

	events, err := client.GetEvents(context.Background(), "default")
	require.Nil(t, events)
	require.True(t, errors.Is(err, ErrExtraction))
	require.True(t, errors.Is(err, htmlutil.ErrAttributeNotFound))
}

func TestTagNameFromLabel(t *testing.T) {
	testCases := []struct {
		label    string
		expected string
		ok       bool
	}{
		{label: "Environment (env)", expected: "env", ok: true},
		{label: "  Release\n\t (release) ", expected: "release", ok: true},
		{label: "Server (a) (server_name)", expected: "server_name", ok: true},
		{label: "(logger)", expected: "logger", ok: true},
		{label: "no match", ok: false},
		{label: "Site (site name)", ok: false},
		{label: "Trailing (text) here", ok: false},
	}
	for _, test := range testCases {
		name, ok := TagNameFromLabel(test.label)
		require.Equal(t, test.ok, ok, test.label)
		require.Equal(t, test.expected, name, test.label)
	}
}

func TestGetAvailableTags(t *testing.T) {
	dashboard := newFakeDashboard(t)
	dashboard.Page("/account/projects/default/tags/", http.StatusOK, `<html><body>
	<form>
		<div id="div_id_filters" class="control-group">
			<div class="controls">
				<label class="checkbox"><input type="checkbox" name="filters" value="env"> Environment (env)</label>
				<label class="checkbox"><input type="checkbox" name="filters" value="release"> Release (release)</label>
				<label class="checkbox"><input type="checkbox" name="filters"> no match</label>
				<label class="radio">Ignored (ignored)</label>
			</div>
		</div>
		<label class="checkbox">Outside (outside)</label>
	</form>
	</body></html>`)
	client := newTestClient(t, dashboard.Server.URL)

	tags, err := client.GetAvailableTags(context.Background(), "default")
	require.NoError(t, err)
	require.Equal(t, []string{"env", "release"}, tags)
}
