package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		text      bool
		wantDebug bool
	}{
		{"json info", false, false, false},
		{"json debug", true, false, true},
		{"text info", false, true, false},
		{"text debug", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(&buf, tt.verbose, tt.text)

			log.Debug("debug line", "lot", 1)
			log.Info("info line", "lot", 2)

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if !strings.Contains(out, "info line") {
				t.Error("info line missing")
			}

			if tt.text {
				return
			}
			for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
				var m map[string]interface{}
				if err := json.Unmarshal([]byte(line), &m); err != nil {
					t.Errorf("line is not JSON: %q", line)
				}
			}
		})
	}
}
