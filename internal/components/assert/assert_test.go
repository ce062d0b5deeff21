package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type downloader interface{ Download() }

type fakeDownloader struct{}

func (*fakeDownloader) Download() {}

func TestNotNil(t *testing.T) {
	require.NotPanics(t, func() { NotNil(&fakeDownloader{}) })
	require.NotPanics(t, func() { NotNil(3) })
	require.Panics(t, func() { NotNil(nil) })

	var typed *fakeDownloader
	var iface downloader = typed
	require.Panics(t, func() { NotNil(iface) })
}

func TestNotEmptyStr(t *testing.T) {
	require.NotPanics(t, func() { NotEmptyStr("downloaded_threads") })
	require.Panics(t, func() { NotEmptyStr("") })
}
