package wiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WikiAnswers/internal/config"
	"WikiAnswers/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.WikiConfig{
		APIURL:         srv.URL,
		UserAgent:      "wikianswers-test/1.0",
		TimeoutSeconds: 5,
	})
}

func TestSearchReturnsTopHit(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "search", r.URL.Query().Get("list"))
		assert.Equal(t, "einstein", r.URL.Query().Get("srsearch"))
		assert.Equal(t, "1", r.URL.Query().Get("srlimit"))
		assert.Equal(t, "2", r.URL.Query().Get("formatversion"))
		assert.Equal(t, "wikianswers-test/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"query":{"search":[{"title":"Albert Einstein"}]}}`))
	})

	title, err := client.Search(context.Background(), "einstein")
	require.NoError(t, err)
	assert.Equal(t, "Albert Einstein", title)
}

func TestSearchNoHitsIsEmptyNotError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query":{"search":[]}}`))
	})

	title, err := client.Search(context.Background(), "zzzzz")
	require.NoError(t, err)
	assert.Empty(t, title)
}

func TestExtractReturnsBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "extracts", r.URL.Query().Get("prop"))
		assert.Equal(t, "Albert Einstein", r.URL.Query().Get("titles"))
		w.Write([]byte(`{"query":{"pages":[{"title":"Albert Einstein","extract":"He was a physicist."}]}}`))
	})

	body, err := client.Extract(context.Background(), "Albert Einstein")
	require.NoError(t, err)
	assert.Equal(t, "He was a physicist.", body)
}

func TestExtractMissingPageIsNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query":{"pages":[{"title":"Xenoglyph","missing":true}]}}`))
	})

	_, err := client.Extract(context.Background(), "Xenoglyph")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExtractAbsentFieldIsFetchFailure(t *testing.T) {
	t.Parallel()

	// Page exists but the API returned no extract at all.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query":{"pages":[{"title":"Albert Einstein"}]}}`))
	})

	_, err := client.Extract(context.Background(), "Albert Einstein")
	require.ErrorIs(t, err, domain.ErrFetchFailure)
}

func TestExtractEmptyBodyIsNotAnError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query":{"pages":[{"title":"Stub","extract":""}]}}`))
	})

	body, err := client.Extract(context.Background(), "Stub")
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestListImagesFiltersUnsupportedFormats(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "images", r.URL.Query().Get("prop"))
		w.Write([]byte(`{"query":{"pages":[{"title":"Albert Einstein","images":[
			{"title":"File:Einstein_1921.jpg"},
			{"title":"File:Commons-logo.SVG"},
			{"title":"File:Signature.PNG"},
			{"title":"File:Lecture.ogv"},
			{"title":"File:Paper.pdf"},
			{"title":"File:Portrait.jpeg"}
		]}]}}`))
	})

	titles, err := client.ListImages(context.Background(), "Albert Einstein")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"File:Einstein_1921.jpg",
		"File:Commons-logo.SVG",
		"File:Signature.PNG",
		"File:Portrait.jpeg",
	}, titles)
}

func TestImageInfoResolvesMetadata(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "imageinfo", r.URL.Query().Get("prop"))
		assert.Equal(t, "url|extmetadata", r.URL.Query().Get("iiprop"))
		w.Write([]byte(`{"query":{"pages":[{"title":"File:Einstein_1921.jpg","imageinfo":[{
			"url":"https://upload.example/Einstein_1921.jpg",
			"extmetadata":{
				"ObjectName":{"value":"Einstein 1921"},
				"ImageDescription":{"value":"<p>Portrait taken in <b>1921</b>.</p>"}
			}
		}]}]}}`))
	})

	candidate, err := client.ImageInfo(context.Background(), "File:Einstein_1921.jpg")
	require.NoError(t, err)
	assert.Equal(t, "File:Einstein_1921.jpg", candidate.Identifier)
	assert.Equal(t, "https://upload.example/Einstein_1921.jpg", candidate.SourceURL)
	assert.Equal(t, "Einstein 1921", candidate.Caption)
	assert.Equal(t, "Portrait taken in 1921.", candidate.Description)
}

func TestImageInfoMarkupCaptionFallsBack(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query":{"pages":[{"title":"File:X.jpg","imageinfo":[{
			"url":"https://upload.example/X.jpg",
			"extmetadata":{"ObjectName":{"value":"<i>styled</i> caption"}}
		}]}]}}`))
	})

	candidate, err := client.ImageInfo(context.Background(), "File:X.jpg")
	require.NoError(t, err)
	assert.Equal(t, captionPlaceholder, candidate.Caption)
}

func TestImageInfoMissingURLIsError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query":{"pages":[{"title":"File:X.jpg"}]}}`))
	})

	_, err := client.ImageInfo(context.Background(), "File:X.jpg")
	require.Error(t, err)
}

func TestServerErrorSurfaces(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	})

	_, err := client.Search(context.Background(), "anything")
	require.Error(t, err)
}

func TestPlainCaption(t *testing.T) {
	t.Parallel()

	client := NewClient(config.WikiConfig{})

	cases := []struct {
		in   string
		want string
	}{
		{"Einstein 1921", "Einstein 1921"},
		{"  Einstein 1921  ", "Einstein 1921"},
		{"Tom & Jerry", "Tom & Jerry"},
		{"", captionPlaceholder},
		{"   ", captionPlaceholder},
		{"<b>bold</b> caption", captionPlaceholder},
		{`<a href="x">link</a>`, captionPlaceholder},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, client.plainCaption(tc.in), "input %q", tc.in)
	}
}

func TestHTMLToText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Portrait taken in 1921.", htmlToText("<p>Portrait taken\n in <b>1921</b>.</p>"))
	assert.Equal(t, "plain already", htmlToText("plain already"))
	assert.Empty(t, htmlToText("   "))
}
