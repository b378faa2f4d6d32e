package node

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avmtools/avm/internal/httputil"
	"github.com/avmtools/avm/internal/log"
	"github.com/avmtools/avm/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indexJSON = `[
  {"version":"v20.11.1","lts":"Iron","files":["linux-x64","win-x64-zip"]},
  {"version":"v18.20.4","lts":"Hydrogen","files":["linux-x64"]},
  {"version":"v21.7.3","lts":false,"files":["linux-x64"]}
]`

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	mirror := httputil.NewMirrorClient(srv.Client(), []httputil.MirrorRule{
		{From: baseURL, To: srv.URL + "/"},
	}, log.NewNoop())
	return New(mirror, log.NewNoop())
}

func TestFetchVersionsFiltersByFileKeyAndLTS(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(indexJSON))
	})

	all, err := a.FetchVersions(context.Background(), "x64-linux", "", version.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	lts, err := a.FetchVersions(context.Background(), "x64-linux", "", version.Filter{LTSOnly: true})
	require.NoError(t, err)
	assert.Len(t, lts, 2)
}

func TestFetchVersionsExcludesReleasesMissingFileKey(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(indexJSON))
	})

	versions, err := a.FetchVersions(context.Background(), "x64-win", "", version.Filter{})
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "v20.11.1", versions[0].Raw)
}

func TestGetDownInfoBuildsURLAndLooksUpChecksum(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/index.json":
			w.Write([]byte(indexJSON))
		case r.URL.Path == "/v21.7.3/SHASUMS256.txt":
			w.Write([]byte("deadbeef  node-v21.7.3-linux-x64.tar.xz\ncafef00d  node-v21.7.3-win-x64.zip\n"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	info, err := a.GetDownInfo(context.Background(), "x64-linux", "", version.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "v21.7.3", info.Version.Raw)
	assert.Equal(t, "deadbeef", info.Hash.SHA256)
	assert.Equal(t, "https://nodejs.org/dist/v21.7.3/node-v21.7.3-linux-x64.tar.xz", info.URL)
}
