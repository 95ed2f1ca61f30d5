package logger

import "testing"

func TestNew(t *testing.T) {
	for _, encoding := range []string{"", "console", "json"} {
		var log, err = New("debug", encoding)
		if err != nil {
			t.Fatalf("encoding %q: %v", encoding, err)
		}
		log.Debugw("test", "encoding", encoding)
	}
	var _, err = New("loud", "console")
	if err == nil {
		t.Error("expected error for unknown level")
	}
}
