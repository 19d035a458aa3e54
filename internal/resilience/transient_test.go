package resilience

import (
	"context"
	"errors"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "canceled", err: eris.Wrap(context.Canceled, "load"), want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "conn reset", err: eris.Wrap(syscall.ECONNRESET, "query"), want: true},
		{name: "conn refused", err: syscall.ECONNREFUSED, want: true},
		{name: "io timeout text", err: errors.New("read tcp: i/o timeout"), want: true},
		{name: "sqlite busy", err: errors.New("database is locked (5) (SQLITE_BUSY)"), want: true},
		{name: "permanent", err: errors.New("syntax error at or near SELECT"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
