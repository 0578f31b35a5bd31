package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{59 * time.Second, "0:59"},
		{65 * time.Second, "1:05"},
		{59*time.Minute + 59*time.Second, "59:59"},
		{time.Hour, "1:00:00"},
		{2*time.Hour + 3*time.Minute + 4*time.Second + 900*time.Millisecond, "2:03:04"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatElapsed(tt.in))
		})
	}
}

func TestBroadcaster_KeepsLatest(t *testing.T) {
	b := newBroadcaster()
	ch, cancel := b.subscribe(View{ActiveApp: "first"})
	defer cancel()

	b.publish(View{ActiveApp: "second"})
	b.publish(View{ActiveApp: "third"})

	assert.Equal(t, "third", (<-ch).ActiveApp)
	select {
	case v := <-ch:
		t.Fatalf("unexpected extra value %+v", v)
	default:
	}
}
