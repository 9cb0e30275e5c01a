// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vtlog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestCreateLogger(t *testing.T) {
	stderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	Logger.CreateLogger(w, false, LevelTrace)

	msg1 := "trace message"
	Logger.Trace(msg1)

	levelDebug2 := slog.Level(-6)
	msg2 := "no name debug message"
	Logger.Log(context.Background(), levelDebug2, msg2)

	w.Close()
	out, _ := io.ReadAll(r)
	os.Stderr = stderr
	r.Close()

	expect := []string{"level=TRACE", "level=DEBUG-2", msg1, msg2}
	result := string(out)
	found := 0
	for i := range expect {
		if strings.Contains(result, expect[i]) {
			found++
		}
	}
	if found != len(expect) {
		t.Errorf("CreateLogger expect %q, got %q\n", expect, result)
	}
}
