package logger

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ParseLevel(t *testing.T) {
	require.Equal(t, DEBUG, ParseLevel("debug"))
	require.Equal(t, WARNING, ParseLevel("WARN"))
	require.Equal(t, SILENCE, ParseLevel("silent"))

	// Unknown and empty names fall back to INFO.
	require.Equal(t, INFO, ParseLevel(""))
	require.Equal(t, INFO, ParseLevel("verbose"))
}

func Test_Logger_levelFiltering(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(orig)

	l := NewLogger(WARNING)
	l.Debugf("fetching %s", "zezima")
	l.Infof("fetched %s", "zezima")
	l.Warnf("flagged %s", "zezima")
	l.Errorf("lost %s", "zezima")

	out := buf.String()
	require.NotContains(t, out, "fetching")
	require.NotContains(t, out, "fetched")
	require.Contains(t, out, "WARN flagged zezima")
	require.Contains(t, out, "ERROR lost zezima")
}
