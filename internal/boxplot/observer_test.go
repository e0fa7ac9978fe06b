package boxplot

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"boxplot/internal"
)

func TestLogObserverPrefixesComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	}()

	LogObserver{Logger: internal.NewLogger(internal.LogLevelDebug).With("BoxPlot")}.ObserveSelection([]string{"west"})

	assert.Equal(t, "[DEBUG] [BoxPlot] selected values: [\"west\"]\n", buf.String())
}
