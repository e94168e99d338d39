package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clarity-ai/clarity/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractReadableText(t *testing.T) {
	page := `<html>
		<head><title>Release Notes</title><script>alert("noise")</script></head>
		<body>
			<nav><li>Home</li></nav>
			<article>
				<h1>Version 2.0</h1>
				<p>Faster startup.</p>
				<li>Bug fixes</li>
			</article>
			<footer><p>Copyright</p></footer>
		</body>
	</html>`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer ts.Close()

	text, err := service.NewWebpageService().Extract(context.Background(), ts.URL)
	require.NoError(t, err)

	assert.Contains(t, text, "Release Notes")
	assert.Contains(t, text, "Version 2.0")
	assert.Contains(t, text, "Faster startup.")
	assert.Contains(t, text, "Bug fixes")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "Home")
	assert.NotContains(t, text, "Copyright")
}

func TestExtractNonOKStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := service.NewWebpageService().Extract(context.Background(), ts.URL)
	assert.Error(t, err)
}

func TestExtractEmptyPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body></body></html>"))
	}))
	defer ts.Close()

	_, err := service.NewWebpageService().Extract(context.Background(), ts.URL)
	assert.Error(t, err)
}
