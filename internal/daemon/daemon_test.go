package daemon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPublisher_NoURL_Disabled(t *testing.T) {
	publisher, err := NewPublisher("", "typdocs.builds")
	require.NoError(t, err)
	require.Nil(t, publisher)
}

func TestPublisher_NilReceiver_Safe(t *testing.T) {
	var publisher *Publisher

	// Must not panic when events are disabled.
	publisher.PublishBuildCompleted(BuildEvent{Version: "v0.12.0"})
	publisher.Close()
}

func TestExportWatcher_IsExportFile(t *testing.T) {
	w, err := NewExportWatcher(t.TempDir(), "docs", func(context.Context) {})
	require.NoError(t, err)
	defer w.Stop()

	require.True(t, w.isExportFile("/data/docs_v0.12.0.json"))
	require.False(t, w.isExportFile("/data/docs_v0.12.0.json.tmp"))
	require.False(t, w.isExportFile("/data/readme.json"))
	require.False(t, w.isExportFile("/data/docs.json"))
}
