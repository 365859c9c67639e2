package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nDmitry/homepage/internal/entity"
	"github.com/nDmitry/homepage/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const atomFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Tech Blog</title>
  <link href="https://blog.example.com/" rel="alternate"/>
  <updated>2024-05-02T10:00:00+00:00</updated>
  <id>https://blog.example.com/feed.xml</id>
  <entry>
    <title>Scaling transformers</title>
    <link href="https://blog.example.com/2024/05/scaling.html" rel="alternate"/>
    <published>2024-05-02T10:00:00+02:00</published>
    <updated>2024-05-02T10:00:00+02:00</updated>
    <id>https://blog.example.com/2024/05/scaling</id>
    <content type="html">&lt;p&gt;We trained a &lt;b&gt;large&lt;/b&gt; model.&lt;/p&gt;</content>
    <category term="mlr"/>
    <category term="nlp"/>
    <author><name>Jane Doe</name></author>
    <authors>
      <author>
        <name>Jane Doe</name>
        <url>https://blog.example.com/authors/jane.doe/</url>
        <photo>https://blog.example.com/img/authors/jane.doe.jpg</photo>
      </author>
      <author>
        <name>John Roe</name>
        <url>https://blog.example.com/authors/john.roe/</url>
        <photo>https://blog.example.com/img/authors/john.roe.jpg</photo>
      </author>
    </authors>
  </entry>
  <entry>
    <title>Search ranking</title>
    <link href="https://blog.example.com/2024/04/ranking.html" rel="alternate"/>
    <updated>2024-04-20T08:00:00Z</updated>
    <id>https://blog.example.com/2024/04/ranking</id>
    <summary>Ranking at scale</summary>
    <author><name>Ann Smith</name></author>
  </entry>
</feed>`

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Tech Blog</title>
    <link>https://blog.example.com/</link>
    <description>Engineering blog</description>
    <item>
      <title>Vector search</title>
      <link>https://blog.example.com/vector.html</link>
      <guid>vector-search</guid>
      <pubDate>Thu, 02 May 2024 10:00:00 GMT</pubDate>
      <description>&lt;p&gt;Nearest neighbours&lt;/p&gt;</description>
      <category>search</category>
      <authors>[{"name":"Jane Doe","url":"https://blog.example.com/authors/jane/","photo":"https://blog.example.com/jane.jpg"}]</authors>
    </item>
  </channel>
</rss>`

func serve(t *testing.T, status int, contentType, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))

	t.Cleanup(server.Close)

	return server
}

func TestFeedProvider_FetchPosts_Atom(t *testing.T) {
	server := serve(t, http.StatusOK, "application/atom+xml", atomFeed)
	p := &provider.FeedProvider{URL: server.URL, Client: provider.NewHTTPClient(5 * time.Second), UserAgent: "test"}

	posts, err := p.FetchPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)

	first := posts[0]
	assert.Equal(t, entity.SourceFeed, first.Kind)
	assert.Equal(t, "Scaling transformers", first.Title)
	assert.Equal(t, "https://blog.example.com/2024/05/scaling.html", first.Link)
	assert.Equal(t, "https://blog.example.com/2024/05/scaling", first.GUID)
	assert.Equal(t, "2024-05-02T10:00:00+02:00", first.Published)
	assert.Equal(t, []string{"mlr", "nlp"}, first.Categories)
	assert.Equal(t, "We trained a large model.", first.Content)
	assert.Equal(t, []entity.Author{
		{Name: "Jane Doe", URL: "https://blog.example.com/authors/jane.doe/", Photo: "https://blog.example.com/img/authors/jane.doe.jpg"},
		{Name: "John Roe", URL: "https://blog.example.com/authors/john.roe/", Photo: "https://blog.example.com/img/authors/john.roe.jpg"},
	}, first.Authors)

	second := posts[1]
	assert.Equal(t, "2024-04-20T08:00:00Z", second.Published, "updated is used when published is missing")
	assert.Equal(t, "Ranking at scale", second.Content)
	assert.Equal(t, []entity.Author{{Name: "Ann Smith"}}, second.Authors, "entries without the extension keep their standard authors")
}

func TestFeedProvider_FetchPosts_RSSWithJSONAuthors(t *testing.T) {
	server := serve(t, http.StatusOK, "application/rss+xml", rssFeed)
	p := &provider.FeedProvider{URL: server.URL, Client: provider.NewHTTPClient(5 * time.Second)}

	posts, err := p.FetchPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)

	assert.Equal(t, "vector-search", posts[0].GUID)
	assert.Equal(t, "Nearest neighbours", posts[0].Content)
	assert.Equal(t, []entity.Author{
		{Name: "Jane Doe", URL: "https://blog.example.com/authors/jane/", Photo: "https://blog.example.com/jane.jpg"},
	}, posts[0].Authors)
}

// latin1Feed is ISO-8859-1 encoded: "\xe9" is é.
const latin1Feed = "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
	"<rss version=\"2.0\"><channel><title>Blog</title><link>https://blog.example.com/</link>" +
	"<item><title>Caf\xe9 ranking</title><link>https://blog.example.com/cafe.html</link>" +
	"<pubDate>Thu, 02 May 2024 10:00:00 GMT</pubDate>" +
	"<authors><author><name>Jos\xe9 Garc\xeda</name>" +
	"<url>https://blog.example.com/authors/jose/</url>" +
	"<photo>https://blog.example.com/jose.jpg</photo></author></authors>" +
	"</item></channel></rss>"

func TestFeedProvider_FetchPosts_NonUTF8AuthorsExtension(t *testing.T) {
	server := serve(t, http.StatusOK, "application/rss+xml", latin1Feed)
	p := &provider.FeedProvider{URL: server.URL, Client: provider.NewHTTPClient(5 * time.Second)}

	posts, err := p.FetchPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)

	assert.Equal(t, "Café ranking", posts[0].Title)
	assert.Equal(t, []entity.Author{
		{Name: "José García", URL: "https://blog.example.com/authors/jose/", Photo: "https://blog.example.com/jose.jpg"},
	}, posts[0].Authors)
}

func TestFeedProvider_FetchPosts_StandardAuthorsFallback(t *testing.T) {
	feed := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Tech Blog</title>
  <entry>
    <title>Plain</title>
    <link href="https://blog.example.com/plain.html"/>
    <id>plain</id>
    <updated>2024-04-20T08:00:00Z</updated>
    <author><name>Ann Smith</name></author>
    <author><name>Bob Stone</name></author>
  </entry>
</feed>`

	server := serve(t, http.StatusOK, "application/atom+xml", feed)
	p := &provider.FeedProvider{URL: server.URL, Client: provider.NewHTTPClient(5 * time.Second)}

	posts, err := p.FetchPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)

	assert.Equal(t, []entity.Author{{Name: "Ann Smith"}, {Name: "Bob Stone"}}, posts[0].Authors)
}

func TestFeedProvider_FetchPosts_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		checkErr    func(err error) bool
		retryable   bool
		expectedMsg string
	}{
		{
			name:      "Server error",
			status:    http.StatusBadGateway,
			body:      "bad gateway",
			checkErr:  entity.IsFetchError,
			retryable: true,
		},
		{
			name:     "Not found",
			status:   http.StatusNotFound,
			body:     "missing",
			checkErr: entity.IsFetchError,
		},
		{
			name:     "Not a feed",
			status:   http.StatusOK,
			body:     "<html><body>hello</body></html>",
			checkErr: entity.IsParseError,
		},
		{
			name:   "Malformed authors",
			status: http.StatusOK,
			body: `<?xml version="1.0"?><rss version="2.0"><channel><title>T</title>
<item><title>A</title><link>https://blog.example.com/a</link><authors>[{"name":</authors></item>
</channel></rss>`,
			checkErr:    entity.IsParseError,
			expectedMsg: "could not parse authors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := serve(t, tt.status, "text/xml", tt.body)
			p := &provider.FeedProvider{URL: server.URL, Client: provider.NewHTTPClient(5 * time.Second)}

			posts, err := p.FetchPosts(context.Background())

			require.Error(t, err)
			assert.Nil(t, posts)
			assert.True(t, tt.checkErr(err), "unexpected error type: %v", err)

			if tt.expectedMsg != "" {
				assert.Contains(t, err.Error(), tt.expectedMsg)
			}

			var fetchErr *entity.FetchError

			if errors.As(err, &fetchErr) {
				assert.Equal(t, tt.status, fetchErr.StatusCode)
				assert.Equal(t, tt.retryable, fetchErr.Retryable())
			}
		})
	}
}

func TestFeedProvider_FetchPosts_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	p := &provider.FeedProvider{URL: url, Client: provider.NewHTTPClient(time.Second)}

	_, err := p.FetchPosts(context.Background())

	require.Error(t, err)
	assert.True(t, entity.IsFetchError(err))
}
