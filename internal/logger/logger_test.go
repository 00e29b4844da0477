package logger

import (
	"bytes"
	"errors"
	"log"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestFormatFields(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		want   string
	}{
		{"empty", nil, ""},
		{"sorted keys", Fields{"b": 2, "a": "x"}, "{a=x, b=2}"},
		{"floats", Fields{"energy": 0.456}, "{energy=0.46}"},
		{"other values", Fields{"ok": true, "n": int64(7)}, "{n=7, ok=true}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatFields(tt.fields))
		})
	}
}

func TestLevels(t *testing.T) {
	buf := captureLog(t)

	Info("composed", Fields{"genre": "EDM_DROP"})
	Warn("slow", nil)
	Error("failed", errors.New("boom"), Fields{"kind": "serialization"})
	Debug("detail", Fields{"bars": 36})

	out := buf.String()
	assert.Contains(t, out, "[INFO] composed {genre=EDM_DROP}")
	assert.Contains(t, out, "[WARN] slow")
	assert.Contains(t, out, "[ERROR] failed: boom {kind=serialization}")
	assert.Contains(t, out, "[DEBUG] detail {bars=36}")
}

func TestWithContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/api/v1/compositions", nil)
	c.Set("request_id", "req-1")
	c.Set("user_id", "u-9")

	fields := WithContext(c)
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/v1/compositions", fields["path"])
	assert.Equal(t, "u-9", fields["user_id"])
}
