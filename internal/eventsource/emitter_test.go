package eventsource

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestEmitter_ForwardsOnlyChanges(t *testing.T) {
	rec := &recorder{}
	em := newEmitter(rec, zerolog.Nop())
	editor := AppIdentity{PID: 1, Name: "Editor"}
	browser := AppIdentity{PID: 2, Name: "Browser"}

	em.focus(editor, "a.go")
	em.focus(editor, "a.go")
	em.focus(editor, "b.go")
	em.focus(browser, "b.go")
	em.windowTitle("b.go")
	em.windowTitle("news")

	assert.Equal(t, []string{
		"app:Editor:a.go",
		"window:b.go",
		"app:Browser:b.go",
		"window:news",
	}, rec.snapshot())
}

func TestEmitter_SamePIDNewNameIsAppChange(t *testing.T) {
	rec := &recorder{}
	em := newEmitter(rec, zerolog.Nop())

	em.focus(AppIdentity{PID: 1, Name: "sh"}, "")
	em.focus(AppIdentity{PID: 1, Name: "vim"}, "")

	assert.Equal(t, []string{"app:sh:", "app:vim:"}, rec.snapshot())
}

func TestEmitter_TitleBeforeAppIgnored(t *testing.T) {
	rec := &recorder{}
	em := newEmitter(rec, zerolog.Nop())

	em.windowTitle("orphan")
	assert.Empty(t, rec.snapshot())
}

func TestEmitter_IdleSuppressesTicks(t *testing.T) {
	rec := &recorder{}
	em := newEmitter(rec, zerolog.Nop())

	em.tick()
	em.setIdle(true)
	em.setIdle(true)
	em.tick()
	em.setIdle(false)
	em.tick()

	assert.Equal(t, []string{"tick", "idle:true", "idle:false", "tick"}, rec.snapshot())
}
